package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracer/internal/assistant"
	"tracer/internal/config"
	"tracer/internal/logging"
)

type transcriptOutput struct {
	Source     string `json:"source"`
	Model      string `json:"model"`
	Transcript string `json:"transcript"`
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio>",
		Short: "Transcribe a recorded audio note",
		Long:  "Transcribes a wav, mp3, flac, ogg, m4a, aac, aiff, or raw 16 kHz pcm recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx := runContext(cmd, args[0])
			provider, cfg, logger, err := ctx.provider(runCtx, cmd)
			if err != nil {
				return err
			}
			model := cfg.AI.Model(config.FeatureTranscribe)
			transcriber := assistant.NewTranscriber(provider, model, logging.WithContext(runCtx, logger))
			text, err := transcriber.Transcribe(runCtx, args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, transcriptOutput{Source: args[0], Model: model, Transcript: text})
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
