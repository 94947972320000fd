// Package textutil provides small text helpers for terminal output: collapsing
// multi-line cell values, display-width-aware truncation, and a generic
// conditional.
package textutil
