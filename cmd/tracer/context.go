package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tracer/internal/archive"
	"tracer/internal/assistant"
	"tracer/internal/config"
	"tracer/internal/logging"
	"tracer/internal/services"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the command logger on first use. Records go to the
// command's stderr so stdout carries only command output.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// runContext tags the command context with the invoked command and, when set,
// the input file so every log record carries them.
func runContext(cmd *cobra.Command, source string) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithCommand(ctx, cmd.CommandPath())
	if source != "" {
		ctx = services.WithSource(ctx, source)
	}
	return ctx
}

// provider builds the configured model provider.
func (c *commandContext) provider(ctx context.Context, cmd *cobra.Command) (assistant.Provider, *config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, nil, nil, services.Wrap(services.ErrConfiguration, "config", "ai", "", err)
	}
	provider, err := assistant.NewProvider(ctx, cfg.AI, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return provider, cfg, logger, nil
}

// withArchive opens the analysis archive for the duration of fn.
func (c *commandContext) withArchive(fn func(*archive.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Archive.Enabled {
		return services.Wrap(services.ErrConfiguration, "archive", "open", "archive is disabled (set [archive] enabled = true)", nil)
	}
	store, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
