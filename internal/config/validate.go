package config

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"tracer/internal/source"
)

// Validate ensures the configuration is usable. A missing API key is not an
// error here because only the AI commands need one; see RequireAPIKey.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	sep := c.Dataset.Separator
	if utf8.RuneCountInString(sep) != 1 {
		return fmt.Errorf("dataset.separator must be a single character, got %q", sep)
	}
	if sep == `"` || sep == "\n" || sep == "\r" {
		return fmt.Errorf("dataset.separator cannot be %q", sep)
	}
	if _, err := source.ParseEncoding(c.Dataset.Encoding); err != nil {
		return fmt.Errorf("dataset.encoding: %w", err)
	}
	return nil
}

func (c *Config) validateAI() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("ai.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenRouter, c.AI.Provider)
	}
	if c.AI.TimeoutSeconds < 0 {
		return errors.New("ai.timeout_seconds must be positive")
	}
	if c.AI.ChatContextRows < 0 {
		return errors.New("ai.chat_context_rows must not be negative")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.Enabled && c.Archive.Path == "" {
		return errors.New("archive.path must be set when archive.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}

// RequireAPIKey reports a configuration error when no AI credentials are set.
func (c *Config) RequireAPIKey() error {
	if c.AI.APIKey != "" {
		return nil
	}
	env := "GEMINI_API_KEY"
	if c.AI.Provider == ProviderOpenRouter {
		env = "OPENROUTER_API_KEY"
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("ai.api_key is required. Set %s env var or edit %s (create with 'tracer config init')", env, defaultPath)
}
