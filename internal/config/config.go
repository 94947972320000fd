package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"tracer/internal/findings"
	"tracer/internal/source"
)

//go:embed sample_config.toml
var sampleConfig string

// Dataset describes how tracer exports are read.
type Dataset struct {
	Separator     string `toml:"separator"`
	Encoding      string `toml:"encoding"`
	StatusField   string `toml:"status_field"`
	DeptField     string `toml:"department_field"`
	StandardField string `toml:"standard_field"`
	DateField     string `toml:"date_field"`
	FindingField  string `toml:"finding_field"`
	DetailField   string `toml:"finding_detail_field"`
	ImproveField  string `toml:"improvement_field"`
	IDField       string `toml:"id_field"`
}

// AI contains connection settings for the analysis, chat, and transcription features.
type AI struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	ChatModel       string `toml:"chat_model"`
	AnalysisModel   string `toml:"analysis_model"`
	TranscribeModel string `toml:"transcribe_model"`
	Referer         string `toml:"referer"`
	Title           string `toml:"title"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	ChatContextRows int    `toml:"chat_context_rows"`
}

// Archive controls the local analysis history database.
type Archive struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tracer.
//
// Configuration sections by subsystem:
//   - Dataset: separator, character encoding, and well-known column names
//   - AI: model provider, credentials, and per-feature model names
//   - Archive: SQLite history of generated analyses
//   - Logging: log format, level, and optional log directory
type Config struct {
	Dataset Dataset `toml:"dataset"`
	AI      AI      `toml:"ai"`
	Archive Archive `toml:"archive"`
	Logging Logging `toml:"logging"`
}

// Load reads the config file at path, or the first existing default
// location when path is blank, on top of Default. It returns the config, the
// file it looked at, and whether that file existed. A missing file is not an
// error.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}
	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// EnsureDirectories creates the directories the enabled features write to.
func (c *Config) EnsureDirectories() error {
	if c.Archive.Enabled && c.Archive.Path != "" {
		if err := os.MkdirAll(filepath.Dir(c.Archive.Path), 0o755); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}
	}
	if c.Logging.Dir != "" {
		if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Logging.Dir, err)
		}
	}
	return nil
}

// Separator returns the configured field separator rune.
func (c *Config) Separator() rune {
	r, _ := utf8.DecodeRuneInString(c.Dataset.Separator)
	if r == utf8.RuneError {
		return findings.DefaultSeparator
	}
	return r
}

// Encoding returns the configured input encoding.
func (c *Config) Encoding() source.Encoding {
	enc, err := source.ParseEncoding(c.Dataset.Encoding)
	if err != nil {
		return source.EncodingAuto
	}
	return enc
}

// Fields returns the well-known column names used by the dashboard views.
func (c *Config) Fields() findings.Fields {
	return findings.Fields{
		Status:        c.Dataset.StatusField,
		Department:    c.Dataset.DeptField,
		Standard:      c.Dataset.StandardField,
		Date:          c.Dataset.DateField,
		Finding:       c.Dataset.FindingField,
		FindingDetail: c.Dataset.DetailField,
		Improvement:   c.Dataset.ImproveField,
		ID:            c.Dataset.IDField,
	}.WithDefaults()
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// Model returns the model configured for a feature.
func (a AI) Model(feature Feature) string {
	switch feature {
	case FeatureAnalysis:
		return a.AnalysisModel
	case FeatureTranscribe:
		return a.TranscribeModel
	default:
		return a.ChatModel
	}
}

// Feature names an AI-backed command.
type Feature string

const (
	FeatureChat       Feature = "chat"
	FeatureAnalysis   Feature = "analysis"
	FeatureTranscribe Feature = "transcribe"
)
