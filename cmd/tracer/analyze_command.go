package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tracer/internal/archive"
	"tracer/internal/assistant"
	"tracer/internal/config"
	"tracer/internal/logging"
	"tracer/internal/services"
)

type analysisOutput struct {
	ArchiveID string        `json:"archive_id,omitempty"`
	Source    string        `json:"source"`
	Filter    filterSummary `json:"filter"`
	Records   int           `json:"records"`
	NotMet    int           `json:"not_met"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Report    string        `json:"report"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags dataFlags
	var noSave bool
	cmd := &cobra.Command{
		Use:   "analyze <csv>",
		Short: "Generate a narrative analysis of the filtered findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := ctx.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if view.bundle.Totals.Total == 0 {
				return services.Wrap(services.ErrValidation, "analyze", "", "no findings match the current filter", assistant.ErrNoFindings)
			}
			runCtx := runContext(cmd, view.path)
			provider, cfg, logger, err := ctx.provider(runCtx, cmd)
			if err != nil {
				return err
			}

			model := cfg.AI.Model(config.FeatureAnalysis)
			analyst := assistant.NewAnalyst(provider, model, view.engine.Fields(), logging.WithContext(runCtx, logger))
			started := time.Now()
			report, err := analyst.Analyze(runCtx, view.bundle.Records)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), assistant.AnalysisFallback)
				return err
			}
			logger.InfoContext(runCtx, "analysis complete",
				logging.String(logging.FieldEventType, "analysis_complete"),
				logging.Duration("elapsed", time.Since(started)),
				logging.Int("chars", len(report)),
			)

			out := analysisOutput{
				Source:   view.path,
				Filter:   summarizeFilter(view.bundle.Filter),
				Records:  view.bundle.Totals.Total,
				NotMet:   view.bundle.Totals.NotMet,
				Provider: provider.Name(),
				Model:    model,
				Report:   report,
			}
			if !noSave && cfg.Archive.Enabled {
				err := ctx.withArchive(func(store *archive.Store) error {
					entry, err := store.Save(runCtx, archive.Entry{
						Source:   out.Source,
						Standard: out.Filter.Standard,
						From:     out.Filter.From,
						To:       out.Filter.To,
						Records:  out.Records,
						NotMet:   out.NotMet,
						Provider: out.Provider,
						Model:    out.Model,
						Text:     out.Report,
					})
					if err != nil {
						return err
					}
					out.ArchiveID = entry.ID
					return nil
				})
				if err != nil {
					logging.WarnWithContext(runCtx, logger, "analysis not archived", "archive_save_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "report will not appear in tracer history"),
						logging.String(logging.FieldErrorHint, "check [archive] path permissions"),
					)
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, report)
			if out.ArchiveID != "" {
				fmt.Fprintf(w, "\nSaved to history as %s\n", shortID(out.ArchiveID))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the report in the history archive")
	return cmd
}
