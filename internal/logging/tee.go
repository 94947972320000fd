package logging

import (
	"context"
	"log/slog"
)

// teeHandler writes every record to the terminal handler and to the log file
// handler. Each side applies its own level check.
type teeHandler struct {
	terminal slog.Handler
	file     slog.Handler
}

func newTeeHandler(terminal, file slog.Handler) slog.Handler {
	if file == nil {
		return terminal
	}
	return &teeHandler{terminal: terminal, file: file}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.terminal.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var terminalErr error
	if h.terminal.Enabled(ctx, record.Level) {
		terminalErr = h.terminal.Handle(ctx, record.Clone())
	}
	if h.file.Enabled(ctx, record.Level) {
		if err := h.file.Handle(ctx, record); err != nil {
			return err
		}
	}
	return terminalErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{terminal: h.terminal.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{terminal: h.terminal.WithGroup(name), file: h.file.WithGroup(name)}
}
