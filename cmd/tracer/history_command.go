package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tracer/internal/archive"
	"tracer/internal/textutil"
)

const shortIDLength = 8

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived analyses",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withArchive(func(store *archive.Store) error {
				entries, err := store.List(runContext(cmd, ""), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if entries == nil {
						entries = []archive.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No archived analyses.")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						shortID(e.ID),
						e.CreatedAt.Local().Format("2006-01-02 15:04"),
						textutil.Cell(e.Source, 40),
						textutil.OrDefault(e.Standard, "All"),
						strconv.Itoa(e.Records),
						strconv.Itoa(e.NotMet),
						e.Model,
					})
				}
				fmt.Fprintln(out, renderTable(out, []column{
					textCol("ID"), textCol("Created"), textCol("Source"), textCol("Standard"),
					numCol("Findings"), numCol("Not Met"), textCol("Model"),
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", archive.DefaultListLimit, "Maximum number of entries to show")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withArchive(func(store *archive.Store) error {
				entry, err := store.Get(runContext(cmd, ""), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entry)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %s\n", entry.ID)
				fmt.Fprintf(out, "Created:  %s\n", entry.CreatedAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Source:   %s\n", entry.Source)
				fmt.Fprintf(out, "Standard: %s\n", textutil.OrDefault(entry.Standard, "All"))
				if entry.From != "" || entry.To != "" {
					fmt.Fprintf(out, "Dates:    %s to %s\n", orOpen(entry.From), orOpen(entry.To))
				}
				fmt.Fprintf(out, "Findings: %d (%d Not Met)\n", entry.Records, entry.NotMet)
				fmt.Fprintf(out, "Model:    %s (%s)\n\n", entry.Model, entry.Provider)
				fmt.Fprintln(out, entry.Text)
				return nil
			})
		},
	}
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete an archived analysis",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withArchive(func(store *archive.Store) error {
				if err := store.Delete(runContext(cmd, ""), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}
