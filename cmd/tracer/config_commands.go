package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tracer/internal/assistant"
	"tracer/internal/config"
	"tracer/internal/logging"
	"tracer/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		pathFlag  string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(pathFlag)
			if err != nil {
				return err
			}
			if err := writeSampleConfig(target, overwrite); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set ai.api_key there, or export GEMINI_API_KEY, before running analyze, chat, or transcribe.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Where to write the file (default: ~/.config/tracer/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(pathFlag string) (string, error) {
	if p := strings.TrimSpace(pathFlag); p != "" {
		expanded, err := config.ExpandPath(p)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	p, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("default config path: %w", err)
	}
	return p, nil
}

func writeSampleConfig(target string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if !overwrite {
		_, err := os.Stat(target)
		switch {
		case err == nil:
			return services.Wrap(services.ErrValidation, "config", "init",
				fmt.Sprintf("%s already exists; pass --overwrite to replace it", target), nil)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("check config path: %w", err)
		}
	}
	if err := config.CreateSample(target); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var checkAI bool
	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report problems",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "AI provider: %s\n", cfg.AI.Provider)

			keyErr := cfg.RequireAPIKey()
			switch {
			case keyErr != nil && checkAI:
				return services.Wrap(services.ErrConfiguration, "config", "ai", "", keyErr)
			case keyErr != nil:
				fmt.Fprintf(out, "Warning: %v\n", keyErr)
			case checkAI:
				if err := checkProvider(cmd, cfg, out); err != nil {
					return err
				}
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkAI, "check-ai", false, "Send one short request to confirm the AI key and model work")
	return cmd
}

// checkProvider pings the configured provider with the chat model.
func checkProvider(cmd *cobra.Command, cfg *config.Config, out io.Writer) error {
	runCtx := runContext(cmd, "")
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	provider, err := assistant.NewProvider(runCtx, cfg.AI, logger)
	if err != nil {
		return err
	}
	model := cfg.AI.Model(config.FeatureChat)
	if err := assistant.Check(runCtx, provider, model); err != nil {
		return err
	}
	fmt.Fprintf(out, "AI check: %s responded with %s\n", provider.Name(), model)
	return nil
}
