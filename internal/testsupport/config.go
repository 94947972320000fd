// Package testsupport builds isolated configs and fixtures for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"tracer/internal/config"
)

// ConfigOption edits the config returned by NewConfig.
type ConfigOption func(*config.Config)

// NewConfig returns the default config with its archive and logs moved under
// t.TempDir() and a placeholder API key set.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.AI.APIKey = "test"
	cfg.Archive.Path = filepath.Join(dir, "data", "history.db")
	cfg.Logging.Dir = filepath.Join(dir, "logs")
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAIEndpoint sends AI traffic for provider to baseURL, usually an
// httptest server.
func WithAIEndpoint(provider, baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AI.Provider = provider
		cfg.AI.BaseURL = baseURL
	}
}

// WithAPIKey replaces the placeholder key. Pass "" to test missing credentials.
func WithAPIKey(key string) ConfigOption {
	return func(cfg *config.Config) { cfg.AI.APIKey = key }
}
