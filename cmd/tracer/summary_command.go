package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tracer/internal/views"
)

type statusShare struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type summaryOutput struct {
	Source      string                  `json:"source"`
	Filter      filterSummary           `json:"filter"`
	Totals      views.Totals            `json:"totals"`
	Statuses    []statusShare           `json:"statuses"`
	Departments []views.DepartmentCount `json:"departments"`
}

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var flags dataFlags
	cmd := &cobra.Command{
		Use:   "summary <csv>",
		Short: "Show summary tiles, status overview, and Not Met findings by department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := ctx.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			out := buildSummary(view)
			if ctx.jsonOutput() {
				return writeJSON(cmd, out)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(cmd, out))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func buildSummary(view *dataView) summaryOutput {
	b := view.bundle
	shares := make([]statusShare, 0, len(b.Statuses))
	for _, sc := range b.Statuses {
		shares = append(shares, statusShare{
			Status:  sc.Status,
			Count:   sc.Count,
			Percent: percent(sc.Count, b.Totals.Total),
		})
	}
	departments := b.Departments
	if departments == nil {
		departments = []views.DepartmentCount{}
	}
	return summaryOutput{
		Source:      view.path,
		Filter:      summarizeFilter(b.Filter),
		Totals:      b.Totals,
		Statuses:    shares,
		Departments: departments,
	}
}

func renderSummary(cmd *cobra.Command, out summaryOutput) string {
	w := cmd.OutOrStdout()
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", out.Filter.Standard)
	if out.Filter.From != "" || out.Filter.To != "" {
		fmt.Fprintf(&sb, "Dates: %s to %s\n", orOpen(out.Filter.From), orOpen(out.Filter.To))
	}
	sb.WriteString("\n")

	sb.WriteString(renderTable(w,
		[]column{numCol("Total Findings"), numCol("Standards"), numCol("Not Met"), numCol("Met / N/A")},
		[][]string{{
			strconv.Itoa(out.Totals.Total),
			strconv.Itoa(out.Totals.Standards),
			strconv.Itoa(out.Totals.NotMet),
			strconv.Itoa(out.Totals.MetOrNA),
		}},
	))
	sb.WriteString("\n\nStatus Overview\n")

	if len(out.Statuses) == 0 {
		sb.WriteString("No findings match the current filter.\n")
		return sb.String()
	}
	statusRows := make([][]string, 0, len(out.Statuses))
	for _, s := range out.Statuses {
		statusRows = append(statusRows, []string{s.Status, strconv.Itoa(s.Count), formatPercent(s.Percent)})
	}
	sb.WriteString(renderTable(w, []column{textCol("Status"), numCol("Count"), numCol("Share")}, statusRows))
	sb.WriteString("\n\n'Not Met' Findings by Department\n")

	if len(out.Departments) == 0 {
		sb.WriteString("No 'Not Met' findings.\n")
		return sb.String()
	}
	deptRows := make([][]string, 0, len(out.Departments))
	for _, d := range out.Departments {
		deptRows = append(deptRows, []string{d.Department, strconv.Itoa(d.NotMet)})
	}
	sb.WriteString(renderTable(w, []column{textCol("Department"), numCol("Not Met")}, deptRows))
	sb.WriteString("\n")
	return sb.String()
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 0, 64) + "%"
}

func orOpen(value string) string {
	if value == "" {
		return "open"
	}
	return value
}
