package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Wrap tags an error with one of these so callers can test
// it with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrExternal      = errors.New("external service error")
)

// Process exit statuses.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitConfig = 2
)

// Wrap returns "<class>: <component>: <operation>: <message>: <err>" with
// blank parts left out. Both class and err stay matchable with errors.Is. A
// nil class means ErrExternal.
func Wrap(class error, component, operation, message string, err error) error {
	if class == nil {
		class = ErrExternal
	}
	var parts []string
	for _, p := range []string{component, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "unspecified failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", class, detail)
	}
	return fmt.Errorf("%w: %s: %w", class, detail, err)
}

// ExitCode maps a command error to a process exit status. Configuration
// problems get their own code so scripts can tell them apart.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, ErrConfiguration) {
		return ExitConfig
	}
	return ExitFailed
}
