package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tracer/internal/config"
	"tracer/internal/testsupport"
)

const sampleExport = `Department,Standard,Status,Finding,Finding detail,Type of Improvment,Date Tracer
ER,IPSG,Not Met,HH,Hand hygiene not done,Training,1/15/2024
OPD,ACC,Met,Consent,Consent form signed,Process,1/20/2024
ER,IPSG,Met,ID,Patient ID verified,Process,2/01/2024
ICU,MMU,Not Met,Fridge,Fridge log missing,Equipment,2/10/2024
ICU,IPSG,Not Met,Alarm,Alarm check overdue,Training,3/05/2024
OPD,ACC,N/A,Signage,,Facility,3/07/2024
ER,MMU,Not Met,Label,Unlabelled syringe,Training,3/09/2024
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	dataDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"GEMINI_API_KEY", "API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		dataDir:    filepath.Join(base, "data"),
	}
}

func (e *cliTestEnv) writeExport(t *testing.T, contents string) string {
	t.Helper()
	return testsupport.WriteCSV(t, e.dataDir, "tracer.csv", contents)
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[ai]\nprovider = %q\napi_key = %q\nbase_url = %q\n\n[archive]\nenabled = %t\npath = %q\n\n[logging]\nlevel = \"error\"\ndir = %q\n",
		cfg.AI.Provider,
		cfg.AI.APIKey,
		cfg.AI.BaseURL,
		cfg.Archive.Enabled,
		cfg.Archive.Path,
		cfg.Logging.Dir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
