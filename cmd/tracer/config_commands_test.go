package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tracer/internal/services"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target, "")
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Warning: ai.api_key is required")
}

func TestInvalidConfigExitsWithConfigCode(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[ai]\nprovider = \"bard\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	path := env.writeExport(t, sampleExport)

	_, _, err := runCLI(t, []string{"summary", path}, env.configPath, "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitConfig {
		t.Fatalf("exit code = %d, want %d", code, services.ExitConfig)
	}
}

func TestConfigValidateChecksAI(t *testing.T) {
	fake := &fakeOpenRouter{reply: `{"ok":true}`}
	env := setupAIEnv(t, fake)

	out, _, err := runCLI(t, []string{"config", "validate", "--check-ai"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate --check-ai: %v", err)
	}
	requireContains(t, out, "AI check: openrouter responded with google/gemini-2.5-flash")
	if len(fake.requests) != 1 {
		t.Fatalf("expected one health request, got %d", len(fake.requests))
	}
	if format, _ := fake.requests[0]["response_format"].(map[string]any); format["type"] != "json_object" {
		t.Fatalf("expected JSON response format, got %v", fake.requests[0]["response_format"])
	}
}
