package services

import "context"

// ctxKey keys the string values this package stores on a context.
type ctxKey int

const (
	keyCommand ctxKey = iota
	keySource
	keyRequestID
)

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	v, _ := ctx.Value(key).(string)
	return v, v != ""
}

// WithCommand records the CLI command path, e.g. "tracer summary".
func WithCommand(ctx context.Context, command string) context.Context {
	return withString(ctx, keyCommand, command)
}

func CommandFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, keyCommand)
}

// WithSource records the export or audio file a command is working on.
func WithSource(ctx context.Context, path string) context.Context {
	return withString(ctx, keySource, path)
}

func SourceFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, keySource)
}

// WithRequestID records a correlation ID, such as a chat session ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, keyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, keyRequestID)
}
