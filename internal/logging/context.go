package logging

import (
	"context"
	"log/slog"

	"tracer/internal/services"
)

// Structured field keys shared by every package.
const (
	FieldComponent     = "component"
	FieldCommand       = "command"
	FieldSource        = "source"
	FieldCorrelationID = "correlation_id"
	// FieldEventType names the kind of event, e.g. "archive_save_failed".
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	// FieldImpact says what the user loses because of a warning.
	FieldImpact = "impact"
)

// ContextFields returns the command, input file, and correlation ID stored on
// ctx by the services package, skipping any that are unset.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if v, ok := services.CommandFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCommand, v))
	}
	if v, ok := services.SourceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSource, v))
	}
	if v, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, v))
	}
	return fields
}

// WithContext binds the fields from ContextFields to logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
