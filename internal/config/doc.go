// Package config loads tracer's TOML configuration.
//
// Load starts from Default, decodes the file over it, then normalizes
// (tilde expansion, lower-cased enums, API key environment fallbacks) and
// validates. GEMINI_API_KEY, API_KEY, and OPENROUTER_API_KEY are consulted
// only when the file leaves ai.api_key blank.
package config
