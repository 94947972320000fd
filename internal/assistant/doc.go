// Package assistant implements the AI conveniences layered on top of the
// dashboard views: a one-shot narrative analysis of the filtered findings, a
// multi-turn chat grounded in the dataset, and transcription of recorded
// audio notes.
//
// Model access goes through the Provider interface. GeminiProvider talks to
// the Gemini API through google.golang.org/genai; OpenRouterProvider reuses the
// OpenRouter client in internal/services/llm. NewProvider picks one from the
// [ai] configuration section.
//
// Provider errors are tagged with services.ErrExternal so the CLI can map them
// to exit codes, and a missing API key surfaces as services.ErrConfiguration.
package assistant
