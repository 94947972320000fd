package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tracer/internal/assistant"
	"tracer/internal/config"
	"tracer/internal/logging"
)

const chatGreeting = "Ask about the data. Type /reset to start over or /exit to quit."

func newChatCommand(ctx *commandContext) *cobra.Command {
	var flags dataFlags
	cmd := &cobra.Command{
		Use:   "chat <csv>",
		Short: "Ask questions about the loaded findings",
		Long: "Starts an interactive conversation about the whole export. Filter flags do not\n" +
			"narrow what the assistant sees. Questions are read line by line from stdin and\n" +
			"replies are streamed as they arrive.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := ctx.loadView(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			runCtx := runContext(cmd, view.path)
			provider, cfg, logger, err := ctx.provider(runCtx, cmd)
			if err != nil {
				return err
			}
			chat := assistant.NewChat(provider, cfg.AI.Model(config.FeatureChat), view.engine.Fields(),
				cfg.AI.ChatContextRows, logging.WithContext(runCtx, logger))
			logger.InfoContext(runCtx, "chat started",
				logging.String("chat_id", chat.ID()),
				logging.Int("records", len(view.dataset.Records)),
			)

			in := cmd.InOrStdin()
			out := cmd.OutOrStdout()
			interactive := isTerminal(in)
			if interactive {
				fmt.Fprintln(out, chatGreeting)
			}

			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			for {
				if interactive {
					fmt.Fprint(out, "> ")
				}
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "/exit", "/quit":
					return nil
				case "/reset":
					chat.Reset()
					fmt.Fprintln(out, "Conversation cleared.")
					continue
				}

				streamed := false
				_, err := chat.Send(runCtx, view.dataset.Records, line, func(chunk string) error {
					streamed = true
					_, werr := io.WriteString(out, chunk)
					return werr
				})
				if err != nil {
					if ctxErr := runCtx.Err(); ctxErr != nil {
						return ctxErr
					}
					if streamed {
						fmt.Fprintln(out)
					}
					fmt.Fprintln(out, assistant.ChatApology)
					continue
				}
				fmt.Fprintln(out)
			}
			return scanner.Err()
		},
	}
	flags.register(cmd)
	return cmd
}
