package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFilePrefix = "tracer-"
	logFileSuffix = ".log"
	logFileDate   = "2006-01-02"
)

// LogFileName returns the name of the JSON log written on day t. One file is
// kept per calendar day.
func LogFileName(t time.Time) string {
	return logFilePrefix + t.Format(logFileDate) + logFileSuffix
}

// logFileDay extracts the calendar day from a name produced by LogFileName.
func logFileDay(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileSuffix) {
		return time.Time{}, false
	}
	day := strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), logFileSuffix)
	t, err := time.ParseInLocation(logFileDate, day, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func openLogFile(path string) (io.Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// PruneLogs deletes daily log files in dir whose day is more than
// retentionDays before now. Files not named by LogFileName are left alone.
// A retentionDays value of 0 keeps everything.
func PruneLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time) int {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.Local).AddDate(0, 0, -retentionDays)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		day, ok := logFileDay(entry.Name())
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			WarnWithContext(context.Background(), logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions on logging.dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Debug("old logs pruned",
			Int("files", removed),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}
