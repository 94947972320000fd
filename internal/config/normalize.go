package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeDataset()
	c.normalizeAI()
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeDataset() {
	if c.Dataset.Separator == "" {
		c.Dataset.Separator = defaultSeparator
	}
	if c.Dataset.Separator == `\t` {
		c.Dataset.Separator = "\t"
	}
	c.Dataset.Encoding = strings.ToLower(strings.TrimSpace(c.Dataset.Encoding))
	if c.Dataset.Encoding == "" {
		c.Dataset.Encoding = defaultEncoding
	}
	for _, field := range []*string{
		&c.Dataset.StatusField,
		&c.Dataset.DeptField,
		&c.Dataset.StandardField,
		&c.Dataset.DateField,
		&c.Dataset.FindingField,
		&c.Dataset.DetailField,
		&c.Dataset.ImproveField,
		&c.Dataset.IDField,
	} {
		*field = strings.TrimSpace(*field)
	}
}

func (c *Config) normalizeAI() {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = defaultProvider
	}
	c.AI.APIKey = strings.TrimSpace(c.AI.APIKey)
	if c.AI.APIKey == "" {
		c.AI.APIKey = apiKeyFromEnv(c.AI.Provider)
	}
	c.AI.BaseURL = strings.TrimSpace(c.AI.BaseURL)
	if c.AI.BaseURL == "" && c.AI.Provider == ProviderOpenRouter {
		c.AI.BaseURL = defaultOpenRouterBaseURL
	}
	c.AI.ChatModel = normalizeModel(c.AI.Provider, c.AI.ChatModel, defaultChatModel)
	c.AI.AnalysisModel = normalizeModel(c.AI.Provider, c.AI.AnalysisModel, defaultAnalysisModel)
	c.AI.TranscribeModel = normalizeModel(c.AI.Provider, c.AI.TranscribeModel, defaultTranscribeModel)
	c.AI.Referer = strings.TrimSpace(c.AI.Referer)
	c.AI.Title = strings.TrimSpace(c.AI.Title)
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = defaultTimeoutSeconds
	}
}

// OpenRouter addresses Gemini models by vendor-prefixed slugs.
func normalizeModel(provider, model, fallback string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = fallback
	}
	if provider == ProviderOpenRouter && !strings.Contains(model, "/") {
		model = defaultOpenRouterPrefix + model
	}
	return model
}

func apiKeyFromEnv(provider string) string {
	keys := []string{"GEMINI_API_KEY", "API_KEY"}
	if provider == ProviderOpenRouter {
		keys = []string{"OPENROUTER_API_KEY"}
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (c *Config) normalizeArchive() error {
	if strings.TrimSpace(c.Archive.Path) == "" {
		c.Archive.Path = defaultArchivePath
	}
	var err error
	if c.Archive.Path, err = ExpandPath(c.Archive.Path); err != nil {
		return fmt.Errorf("archive.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level

	var err error
	if c.Logging.Dir, err = ExpandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
