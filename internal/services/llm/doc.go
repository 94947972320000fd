// Package llm is a small client for OpenRouter's OpenAI-compatible chat
// completions API. The assistant package uses it when ai.provider is
// "openrouter".
//
// Complete returns a whole reply, Stream delivers server-sent deltas, and
// CompleteJSON plus DecodeLLMJSON cover structured answers such as the
// HealthCheck ping.
//
// Requests are retried on 408, 429, 5xx, network timeouts, and empty replies,
// doubling the delay from 1s up to 10s over at most 5 attempts. Retry-After
// is honored. A stream is never retried after its first delta.
package llm
