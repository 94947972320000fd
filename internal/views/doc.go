// Package views derives the dashboard aggregates from a parsed tracer export.
//
// Every operation is a pure function of (records, filter): nothing is cached,
// inputs are never mutated, and no input shape produces an error. Callers keep
// the full record set for the session and re-derive a Bundle whenever the
// selected standard or date range changes.
//
// Status counts keep first-encounter order so chart legends stay stable;
// department counts only consider "Not Met" findings and are stably sorted by
// descending count.
package views
