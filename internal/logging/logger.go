package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tracer/internal/config"
)

// Options configures New.
type Options struct {
	// Level is debug, info, warn, or error. Anything else means info.
	Level string
	// Format is "console" (default) or "json".
	Format string
	// Writer defaults to stderr so stdout stays free for command output.
	Writer io.Writer
	// FilePath, when set, also appends every record as JSON at debug level
	// regardless of Level.
	FilePath string
	// Development adds source locations at every level.
	Development bool
}

// New builds a logger from opts.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	withSource := opts.Development || level <= slog.LevelDebug

	var terminal slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		terminal = newConsoleHandler(w, level, withSource)
	case "json":
		terminal = newJSONHandler(w, level, withSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	if strings.TrimSpace(opts.FilePath) == "" {
		return slog.New(terminal), nil
	}

	file, err := openLogFile(opts.FilePath)
	if err != nil {
		return nil, err
	}
	return slog.New(newTeeHandler(terminal, newJSONHandler(file, slog.LevelDebug, true))), nil
}

// NewFromConfig builds the command logger. With logging.dir set, records are
// also appended to today's file there and files past logging.retention_days
// are pruned.
func NewFromConfig(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Writer: w})
	}
	now := time.Now()
	opts := Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Writer: w}
	if cfg.Logging.Dir != "" {
		opts.FilePath = filepath.Join(cfg.Logging.Dir, LogFileName(now))
	}
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}
	PruneLogs(logger, cfg.Logging.Dir, cfg.Logging.RetentionDays, now)
	return logger, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if s = strings.TrimSpace(s); strings.EqualFold(s, "warning") {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newJSONHandler writes one JSON object per line with ts, level, msg, and
// source keys; ts is RFC 3339 in UTC and level is lower case.
func newJSONHandler(w io.Writer, level slog.Leveler, withSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: withSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
			case slog.LevelKey:
				return slog.String("level", strings.ToLower(a.Value.String()))
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
					return slog.String("source", filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
				}
			}
			return a
		},
	})
}
