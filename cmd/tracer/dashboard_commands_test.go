package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tracer/internal/findings"
	"tracer/internal/services"
	"tracer/internal/source"
	"tracer/internal/views"
)

func TestSummaryRendersTilesAndTables(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeExport(t, sampleExport)

	out, _, err := runCLI(t, []string{"summary", path}, env.configPath, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{
		"All",
		"Total Findings",
		"Met / N/A",
		"Status Overview",
		"Not Met",
		"57%",
		"'Not Met' Findings by Department",
		"ICU",
	} {
		requireContains(t, out, want)
	}
}

func TestSummaryJSONWithFilters(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeExport(t, sampleExport)

	out, _, err := runCLI(t, []string{"--json", "summary", path, "--standard", "IPSG", "--from", "2024-01-01", "--to", "2024-02-28"}, env.configPath, "")
	if err != nil {
		t.Fatalf("summary --json: %v", err)
	}
	var got summaryOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if diff := cmp.Diff(filterSummary{Standard: "IPSG", From: "2024-01-01", To: "2024-02-28"}, got.Filter); diff != "" {
		t.Fatalf("unexpected filter (-want +got):\n%s", diff)
	}
	wantTotals := views.Totals{Total: 2, NotMet: 1, MetOrNA: 1, Standards: 3}
	if diff := cmp.Diff(wantTotals, got.Totals); diff != "" {
		t.Fatalf("unexpected totals (-want +got):\n%s", diff)
	}
	wantStatuses := []statusShare{
		{Status: "Not Met", Count: 1, Percent: 50},
		{Status: "Met", Count: 1, Percent: 50},
	}
	if diff := cmp.Diff(wantStatuses, got.Statuses); diff != "" {
		t.Fatalf("unexpected statuses (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]views.DepartmentCount{{Department: "ER", NotMet: 1}}, got.Departments); diff != "" {
		t.Fatalf("unexpected departments (-want +got):\n%s", diff)
	}
}

func TestFindingsLimitAndColumns(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeExport(t, sampleExport)

	out, _, err := runCLI(t, []string{"findings", path, "--standard", "IPSG", "--limit", "2"}, env.configPath, "")
	if err != nil {
		t.Fatalf("findings: %v", err)
	}
	for _, want := range []string{"Department", "Finding Detail", "Date Tracer", "Hand hygiene not done", "Patient ID verified", "Showing 2 of 3 findings"} {
		requireContains(t, out, want)
	}
	if strings.Contains(out, "Alarm check overdue") {
		t.Fatalf("expected limit to drop third finding:\n%s", out)
	}
}

func TestFindingsJSONFallsBackToFindingColumn(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeExport(t, sampleExport)

	out, _, err := runCLI(t, []string{"--json", "findings", path, "--standard", "ACC"}, env.configPath, "")
	if err != nil {
		t.Fatalf("findings --json: %v", err)
	}
	var rows []findingRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode findings: %v", err)
	}
	var details []string
	for _, r := range rows {
		details = append(details, r.FindingDetail)
	}
	if diff := cmp.Diff([]string{"Consent form signed", "Signage"}, details); diff != "" {
		t.Fatalf("unexpected details (-want +got):\n%s", diff)
	}
}

func TestStandardsListsSentinelFirst(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeExport(t, sampleExport)

	out, _, err := runCLI(t, []string{"standards", path}, env.configPath, "")
	if err != nil {
		t.Fatalf("standards: %v", err)
	}
	if diff := cmp.Diff([]string{"All", "IPSG", "ACC", "MMU"}, strings.Fields(out)); diff != "" {
		t.Fatalf("unexpected standards (-want +got):\n%s", diff)
	}
}

func TestSeparatorFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeExport(t, "Department\tStandard\tStatus\nER\tIPSG\tNot Met\n")

	out, _, err := runCLI(t, []string{"standards", path, "--separator", `\t`}, env.configPath, "")
	if err != nil {
		t.Fatalf("standards: %v", err)
	}
	if diff := cmp.Diff([]string{"All", "IPSG"}, strings.Fields(out)); diff != "" {
		t.Fatalf("unexpected standards (-want +got):\n%s", diff)
	}
}

func TestUnreadableExports(t *testing.T) {
	cases := map[string]struct {
		contents string
		cause    error
	}{
		"header only": {contents: "Department,Status\n", cause: findings.ErrNoRows},
		"blank":       {contents: "   \n\n", cause: findings.ErrNoHeader},
		"empty file":  {contents: "", cause: source.ErrEmptyFile},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env := setupCLITestEnv(t)
			path := env.writeExport(t, tc.contents)

			_, _, err := runCLI(t, []string{"summary", path}, env.configPath, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != unreadableMessage {
				t.Fatalf("unexpected message %q", err.Error())
			}
			if !errors.Is(err, tc.cause) {
				t.Fatalf("expected cause %v, got %v", tc.cause, err)
			}
			if code := services.ExitCode(err); code != services.ExitFailed {
				t.Fatalf("exit code = %d, want %d", code, services.ExitFailed)
			}
		})
	}
}

func TestInvalidFilterFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeExport(t, sampleExport)

	for _, args := range [][]string{
		{"summary", path, "--from", "15/01/2024"},
		{"summary", path, "--from", "2024-03-01", "--to", "2024-01-01"},
		{"summary", path, "--separator", "ab"},
		{"summary", path, "--encoding", "ebcdic"},
	} {
		_, _, err := runCLI(t, args, env.configPath, "")
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%v: expected validation error, got %v", args[2:], err)
		}
	}
}
