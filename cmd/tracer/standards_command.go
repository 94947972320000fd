package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStandardsCommand(ctx *commandContext) *cobra.Command {
	var flags dataFlags
	cmd := &cobra.Command{
		Use:   "standards <csv>",
		Short: "List the selectable standards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := ctx.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			standards := view.bundle.Standards
			if ctx.jsonOutput() {
				return writeJSON(cmd, standards)
			}
			out := cmd.OutOrStdout()
			for _, s := range standards {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
