package findings_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tracer/internal/findings"
)

const projectionCSV = `Department,Standard,Status,Finding,Finding detail,Type of Improvment
ER,IPSG,Not Met,Short,Long detail,Process
OPD,ACC,Met,Only short,,Training
`

func TestChatContextLimitsAndFallsBack(t *testing.T) {
	records := findings.Parse(projectionCSV)
	rows := findings.ChatContext(records, findings.DefaultFields(), 1)
	want := []findings.ChatRow{{Department: "ER", Standard: "IPSG", Status: "Not Met", Finding: "Long detail"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("unexpected chat rows (-want +got):\n%s", diff)
	}

	all := findings.ChatContext(records, findings.DefaultFields(), 0)
	if len(all) != 2 {
		t.Fatalf("expected default limit to include both records, got %d", len(all))
	}
	if all[1].Finding != "Only short" {
		t.Fatalf("expected finding fallback, got %q", all[1].Finding)
	}
}

func TestAnalysisContextIncludesImprovement(t *testing.T) {
	records := findings.Parse(projectionCSV)
	rows := findings.AnalysisContext(records, findings.DefaultFields())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Improvement != "Process" || rows[1].Improvement != "Training" {
		t.Fatalf("unexpected improvement values: %+v", rows)
	}
}

func TestFieldsWithDefaults(t *testing.T) {
	f := findings.Fields{Status: "Result"}.WithDefaults()
	if f.Status != "Result" {
		t.Fatalf("expected explicit status field to survive, got %q", f.Status)
	}
	if f.Date != "Date Tracer" || f.Department != "Department" {
		t.Fatalf("expected defaults to fill gaps, got %+v", f)
	}
}
