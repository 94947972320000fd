package findings

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultSeparator is the field separator used when Options leaves it unset.
	DefaultSeparator = ','

	quoteChar = '"'
	byteOrder = "\uFEFF"
)

var (
	// ErrUnreadable marks any input that cannot yield a header plus one data row.
	ErrUnreadable = errors.New("could not load data")
	// ErrNoHeader is returned for empty or whitespace-only input.
	ErrNoHeader = fmt.Errorf("%w: input has no header line", ErrUnreadable)
	// ErrNoRows is returned when a header is present but no data rows follow it.
	ErrNoRows = fmt.Errorf("%w: header has no data rows", ErrUnreadable)
)

// Options tunes the tokenizer.
type Options struct {
	// Separator splits fields. Zero means DefaultSeparator.
	Separator rune
}

func (o Options) separator() string {
	if o.Separator == 0 {
		return string(DefaultSeparator)
	}
	return string(o.Separator)
}

// Parse converts raw delimited text into records using default options. An
// empty result signals that the input could not be loaded.
func Parse(text string) []Record {
	return ParseWith(text, Options{})
}

// ParseWith is Parse with explicit tokenizer options.
func ParseWith(text string, opts Options) []Record {
	ds, err := LoadWith(text, opts)
	if err != nil {
		return nil
	}
	return ds.Records
}

// Load converts raw delimited text into a Dataset. It fails only with
// ErrNoHeader or ErrNoRows; row-level problems never surface as errors.
func Load(text string) (Dataset, error) {
	return LoadWith(text, Options{})
}

// LoadWith is Load with explicit tokenizer options.
func LoadWith(text string, opts Options) (Dataset, error) {
	text = strings.TrimSpace(strings.TrimPrefix(text, byteOrder))
	if text == "" {
		return Dataset{}, ErrNoHeader
	}

	headerLine, body, _ := strings.Cut(text, "\n")
	sep := opts.separator()
	cols := NewColumns(splitHeader(headerLine, sep)...)

	sc := &scanner{input: body, sep: sep}
	var records []Record
	for !sc.done() {
		records = append(records, NewRecord(cols, sc.row(cols.Len())...))
	}
	if len(records) == 0 {
		return Dataset{Columns: cols}, ErrNoRows
	}
	return Dataset{Columns: cols, Records: records}, nil
}

// splitHeader splits the header on the separator without quote handling and
// trims every name. A byte-order mark on the first name is dropped.
func splitHeader(line, sep string) []string {
	line = strings.TrimSuffix(line, "\r")
	names := strings.Split(line, sep)
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(strings.TrimSpace(name), byteOrder)
		}
		names[i] = strings.TrimSpace(name)
	}
	return names
}

type fieldEnd int

const (
	endSeparator fieldEnd = iota
	endRow
)

// scanner walks the body of an export one row at a time. Rows end at "\n" or
// "\r\n" outside quotes; a quoted value may therefore span physical lines.
type scanner struct {
	input string
	sep   string
	pos   int
}

func (s *scanner) done() bool {
	return s.pos >= len(s.input)
}

// row tokenizes one data row, keeping at most limit values. The scanner is
// always left at the start of the next row.
func (s *scanner) row(limit int) []string {
	values := make([]string, 0, limit)
	for {
		value, end := s.field()
		if len(values) < limit {
			values = append(values, value)
		}
		if end == endRow {
			return values
		}
		// A trailing separator does not open another (empty) value.
		if s.atRowEnd() {
			s.consumeRowEnd()
			return values
		}
	}
}

func (s *scanner) field() (string, fieldEnd) {
	if value, next, ok := s.quoted(); ok {
		s.pos = next
		return value, s.terminate()
	}
	start := s.pos
	for s.pos < len(s.input) && !s.atSeparator() && !s.atRowEnd() {
		s.pos++
	}
	return strings.TrimSpace(s.input[start:s.pos]), s.terminate()
}

// quoted attempts to read a quoted value starting at the current position,
// allowing blanks before the opening and after the closing quote. It reports
// false when the value is unterminated or the closing quote is followed by
// anything other than a separator or row end; the caller then rereads the
// text as an unquoted value.
func (s *scanner) quoted() (string, int, bool) {
	i := s.skipBlanks(s.pos)
	if i >= len(s.input) || s.input[i] != quoteChar {
		return "", 0, false
	}
	var b strings.Builder
	for i++; i < len(s.input); i++ {
		c := s.input[i]
		if c != quoteChar {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s.input) && s.input[i+1] == quoteChar {
			b.WriteByte(quoteChar)
			i++
			continue
		}
		next := s.skipBlanks(i + 1)
		if next >= len(s.input) || strings.HasPrefix(s.input[next:], s.sep) || isRowEnd(s.input, next) {
			return strings.TrimSpace(b.String()), next, true
		}
		return "", 0, false
	}
	return "", 0, false
}

// terminate consumes the separator or row end at the current position.
func (s *scanner) terminate() fieldEnd {
	if s.atSeparator() {
		s.pos += len(s.sep)
		return endSeparator
	}
	s.consumeRowEnd()
	return endRow
}

func (s *scanner) atSeparator() bool {
	return strings.HasPrefix(s.input[s.pos:], s.sep)
}

func (s *scanner) atRowEnd() bool {
	return s.pos >= len(s.input) || isRowEnd(s.input, s.pos)
}

func (s *scanner) consumeRowEnd() {
	switch {
	case s.pos >= len(s.input):
	case s.input[s.pos] == '\n':
		s.pos++
	case s.input[s.pos] == '\r':
		s.pos += 2
	}
}

func isRowEnd(input string, i int) bool {
	if input[i] == '\n' {
		return true
	}
	return input[i] == '\r' && i+1 < len(input) && input[i+1] == '\n'
}

// skipBlanks steps over spaces and tabs around a quoted value. It stops at
// the separator even when the separator is itself a space or tab.
func (s *scanner) skipBlanks(i int) int {
	for i < len(s.input) && (s.input[i] == ' ' || s.input[i] == '\t') && !strings.HasPrefix(s.input[i:], s.sep) {
		i++
	}
	return i
}
