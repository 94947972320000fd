package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var (
		configFlag string
		jsonFlag   bool
	)
	ctx := newCommandContext(&configFlag, &jsonFlag)

	root := &cobra.Command{
		Use:   "tracer",
		Short: "Explore hospital tracer audit exports and ask AI about them",
		Long: `tracer reads a CSV export of accreditation tracer findings and shows the
dashboard views (status overview, Not Met findings by department, finding
details) for a chosen standard and date range. The analyze, chat, and
transcribe commands send the filtered findings to Gemini.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.BoolVar(&jsonFlag, "json", false, "Print machine-readable JSON instead of tables")

	root.AddCommand(
		newSummaryCommand(ctx),
		newFindingsCommand(ctx),
		newStandardsCommand(ctx),
		newAnalyzeCommand(ctx),
		newChatCommand(ctx),
		newTranscribeCommand(ctx),
		newHistoryCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
