package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvertedRange is returned by DateRange.Validate when start is after end.
var ErrInvertedRange = errors.New("date range start is after end")

// recordDateLayouts are tried in order. Exports write month/day/year; the
// remaining layouts cover hand-edited sheets.
var recordDateLayouts = []string{
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/06",
	"1-2-2006",
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseDate interprets a record's date field as a calendar date. Any time of
// day is discarded.
func ParseDate(value string) (civil.Date, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return civil.Date{}, false
	}
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// ParseBound parses a YYYY-MM-DD range bound. Blank input means "no bound".
func ParseBound(value string) (*civil.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("parse date bound %q: %w", value, err)
	}
	return &d, nil
}

// DateRange is an inclusive calendar-day range; either bound may be absent.
type DateRange struct {
	Start *civil.Date
	End   *civil.Date
}

// Active reports whether any bound is set.
func (r DateRange) Active() bool {
	return r.Start != nil || r.End != nil
}

// Contains reports whether d falls inside the range. The start bound covers
// its whole day and so does the end bound.
func (r DateRange) Contains(d civil.Date) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

// Validate rejects a range whose start falls after its end.
func (r DateRange) Validate() error {
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return fmt.Errorf("%w: %s > %s", ErrInvertedRange, r.Start, r.End)
	}
	return nil
}

func (r DateRange) String() string {
	if !r.Active() {
		return "any date"
	}
	from, to := "open", "open"
	if r.Start != nil {
		from = r.Start.String()
	}
	if r.End != nil {
		to = r.End.String()
	}
	return from + " to " + to
}
