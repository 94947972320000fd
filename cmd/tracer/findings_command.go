package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tracer/internal/findings"
	"tracer/internal/textutil"
)

const detailColumnWidth = 60

type findingRow struct {
	ID            string `json:"id,omitempty"`
	Department    string `json:"department"`
	Standard      string `json:"standard"`
	Status        string `json:"status"`
	FindingDetail string `json:"finding_detail"`
	Improvement   string `json:"improvement,omitempty"`
	Date          string `json:"date"`
}

func newFindingsCommand(ctx *commandContext) *cobra.Command {
	var flags dataFlags
	var limit int
	var wide bool
	cmd := &cobra.Command{
		Use:   "findings <csv>",
		Short: "List findings matching the current filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := ctx.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			fields := view.engine.Fields()
			records := view.bundle.Records
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			rows := make([]findingRow, 0, len(records))
			for _, r := range records {
				rows = append(rows, newFindingRow(r, fields))
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No findings match the current filter.")
				return nil
			}
			width := detailColumnWidth
			if wide {
				width = 0
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					textutil.OrDefault(row.Department, "-"),
					textutil.OrDefault(row.Status, "-"),
					textutil.Cell(row.FindingDetail, width),
					textutil.OrDefault(row.Date, "-"),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]column{textCol("Department"), textCol("Status"), textCol("Finding Detail"), textCol("Date Tracer")},
				tableRows,
			))
			if shown, total := len(rows), view.bundle.Totals.Total; shown < total {
				fmt.Fprintf(out, "Showing %d of %d findings\n", shown, total)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many findings (0 for all)")
	cmd.Flags().BoolVar(&wide, "wide", false, "Do not truncate finding details")
	return cmd
}

func newFindingRow(r findings.Record, f findings.Fields) findingRow {
	return findingRow{
		ID:            r.Get(f.ID),
		Department:    r.Get(f.Department),
		Standard:      r.Get(f.Standard),
		Status:        r.Get(f.Status),
		FindingDetail: strings.TrimSpace(f.Detail(r)),
		Improvement:   r.Get(f.Improvement),
		Date:          r.Get(f.Date),
	}
}
