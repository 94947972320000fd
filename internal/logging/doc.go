// Package logging builds the slog loggers tracer commands use.
//
// The terminal stream is either a compact console format or JSON. When a log
// directory is configured, every record is also appended as JSON to a daily
// file (tracer-YYYY-MM-DD.log) and files older than the retention window are
// removed. Context helpers add the command, source file, and correlation ID
// stored by the services package.
package logging
