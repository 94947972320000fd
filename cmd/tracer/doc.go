// Package main hosts the tracer CLI entrypoint and command graph.
//
// The Cobra-based command tree loads a tracer export, applies the standard
// and date filters, and renders the dashboard views as tables or JSON. The
// AI-backed commands (analyze, chat, transcribe) reach the configured model
// provider, and generated analyses are kept in the local history archive.
//
// Keep this package lean: parsing, filtering, and model access live in the
// internal packages; commands here only resolve configuration and present
// results.
package main
