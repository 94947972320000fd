package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tracer/internal/config"
	"tracer/internal/findings"
	"tracer/internal/source"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantArchive := filepath.Join(tempHome, ".local", "share", "tracer", "history.db")
	if cfg.Archive.Path != wantArchive {
		t.Fatalf("unexpected archive path: got %q want %q", cfg.Archive.Path, wantArchive)
	}
	if !cfg.Archive.Enabled {
		t.Fatal("expected archive enabled by default")
	}
	if cfg.AI.APIKey != "gemini-key" {
		t.Fatalf("expected key from env, got %q", cfg.AI.APIKey)
	}
	if cfg.AI.Provider != config.ProviderGemini {
		t.Fatalf("unexpected provider %q", cfg.AI.Provider)
	}
	if cfg.AI.ChatModel != "gemini-2.5-flash" || cfg.AI.AnalysisModel != "gemini-2.5-pro" {
		t.Fatalf("unexpected models: chat=%q analysis=%q", cfg.AI.ChatModel, cfg.AI.AnalysisModel)
	}
	if cfg.AI.ChatContextRows != findings.DefaultChatContextRows {
		t.Fatalf("unexpected chat context rows %d", cfg.AI.ChatContextRows)
	}
	if cfg.Separator() != ',' {
		t.Fatalf("unexpected separator %q", cfg.Separator())
	}
	if cfg.Encoding() != source.EncodingAuto {
		t.Fatalf("unexpected encoding %q", cfg.Encoding())
	}
	if cfg.Fields() != findings.DefaultFields() {
		t.Fatalf("expected default fields, got %+v", cfg.Fields())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestAPIKeyFallsBackToGenericEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("API_KEY", "generic")
	t.Setenv("HOME", t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AI.APIKey != "generic" {
		t.Fatalf("expected API_KEY fallback, got %q", cfg.AI.APIKey)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearKeyEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tracer.toml")

	type payload struct {
		Dataset struct {
			Separator   string `toml:"separator"`
			Encoding    string `toml:"encoding"`
			StatusField string `toml:"status_field"`
		} `toml:"dataset"`
		AI struct {
			Provider  string `toml:"provider"`
			APIKey    string `toml:"api_key"`
			ChatModel string `toml:"chat_model"`
		} `toml:"ai"`
		Archive struct {
			Enabled bool `toml:"enabled"`
		} `toml:"archive"`
	}
	custom := payload{}
	custom.Dataset.Separator = `\t`
	custom.Dataset.Encoding = "TIS-620"
	custom.Dataset.StatusField = "  Result "
	custom.AI.Provider = "OpenRouter"
	custom.AI.APIKey = "abc123"
	custom.AI.ChatModel = "gemini-2.5-flash"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Separator() != '\t' {
		t.Fatalf("expected tab separator, got %q", cfg.Separator())
	}
	if cfg.Encoding() != source.EncodingWindows874 {
		t.Fatalf("expected windows-874, got %q", cfg.Encoding())
	}
	if cfg.Fields().Status != "Result" {
		t.Fatalf("expected trimmed status field, got %q", cfg.Fields().Status)
	}
	if cfg.AI.Provider != config.ProviderOpenRouter {
		t.Fatalf("expected openrouter provider, got %q", cfg.AI.Provider)
	}
	if cfg.AI.ChatModel != "google/gemini-2.5-flash" {
		t.Fatalf("expected vendor-prefixed model, got %q", cfg.AI.ChatModel)
	}
	if !strings.Contains(cfg.AI.BaseURL, "openrouter.ai") {
		t.Fatalf("expected openrouter base url, got %q", cfg.AI.BaseURL)
	}
	if cfg.Archive.Enabled {
		t.Fatal("expected archive disabled by file")
	}
}

func TestConfigFileKeyWinsOverEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "from-env")
	configPath := filepath.Join(t.TempDir(), "tracer.toml")
	if err := os.WriteFile(configPath, []byte("[ai]\napi_key = \"from-file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AI.APIKey != "from-file" {
		t.Fatalf("expected file key, got %q", cfg.AI.APIKey)
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireAPIKey(); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing key error naming GEMINI_API_KEY, got %v", err)
	}
	cfg.AI.Provider = config.ProviderOpenRouter
	if err := cfg.RequireAPIKey(); err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("expected missing key error naming OPENROUTER_API_KEY, got %v", err)
	}
	cfg.AI.APIKey = "set"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[ai]") {
		t.Fatalf("sample config missing ai section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.AI.Provider != config.ProviderGemini {
		t.Fatalf("expected gemini provider in sample, got %q", cfg.AI.Provider)
	}
	if !strings.Contains(cfg.Archive.Path, "tracer") {
		t.Fatalf("expected archive path to contain tracer, got %q", cfg.Archive.Path)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset.Separator = ";;"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for multi-character separator")
	}

	cfg = config.Default()
	cfg.Dataset.Separator = `"`
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for quote separator")
	}

	cfg = config.Default()
	cfg.Dataset.Encoding = "ebcdic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}

	cfg = config.Default()
	cfg.AI.Provider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	cfg = config.Default()
	cfg.AI.ChatContextRows = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative chat context rows")
	}

	cfg = config.Default()
	cfg.Archive.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when archive enabled without path")
	}

	cfg = config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Archive.Path = filepath.Join(dir, "db", "history.db")
	cfg.Logging.Dir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, want := range []string{filepath.Join(dir, "db"), cfg.Logging.Dir} {
		if info, err := os.Stat(want); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", want, err)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/tracer/history.db")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "tracer", "history.db"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("expected blank to stay blank, got %q", got)
	}
	if got, _ := config.ExpandPath("relative/dir"); !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %q", got)
	}
}

func TestLoadFallsBackToProjectConfig(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)
	if err := os.WriteFile("tracer.toml", []byte("[dataset]\nseparator = \";\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "tracer.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Separator() != ';' {
		t.Fatalf("expected ';' separator, got %q", cfg.Separator())
	}
}
