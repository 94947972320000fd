package textutil

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

const ellipsis = "..."

// CollapseSpace joins every run of whitespace, including newlines inside
// quoted cells, into a single space.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Truncate shortens value to at most width display columns, marking the cut
// with an ellipsis. Wide runes (Thai combining marks, CJK) are measured by
// display width rather than byte length. A width <= 0 disables truncation.
func Truncate(value string, width int) string {
	if width <= 0 || text.RuneWidthWithoutEscSequences(value) <= width {
		return value
	}
	if width <= len(ellipsis) {
		return text.Trim(value, width)
	}
	return strings.TrimRight(text.Trim(value, width-len(ellipsis)), " ") + ellipsis
}

// Cell prepares a free-text value for a single table cell.
func Cell(value string, width int) string {
	return Truncate(CollapseSpace(value), width)
}

// OrDefault returns fallback when value is blank.
func OrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
