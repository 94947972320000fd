// Package services holds the pieces every command shares: error classes with
// their exit codes, and context values (command, source file, request ID)
// that the logging package turns into structured fields.
package services
