package views_test

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"tracer/internal/views"
)

func TestParseDateLayouts(t *testing.T) {
	want := civil.Date{Year: 2024, Month: time.March, Day: 5}
	for _, input := range []string{
		"3/5/2024",
		"03/05/2024",
		" 3/5/2024 ",
		"3/5/2024 14:30",
		"3/5/2024 2:30 PM",
		"2024-03-05",
		"2024-03-05T08:00:00Z",
		"Mar 5, 2024",
		"March 5, 2024",
	} {
		got, ok := views.ParseDate(input)
		if !ok {
			t.Fatalf("ParseDate(%q) failed", input)
		}
		if got != want {
			t.Fatalf("ParseDate(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "13/45/2024", "2024-13-01"} {
		if _, ok := views.ParseDate(input); ok {
			t.Fatalf("expected ParseDate(%q) to fail", input)
		}
	}
}

func TestParseBound(t *testing.T) {
	d, err := views.ParseBound("")
	if err != nil || d != nil {
		t.Fatalf("expected nil bound for blank input, got %v %v", d, err)
	}
	d, err = views.ParseBound("2024-02-29")
	if err != nil {
		t.Fatalf("ParseBound returned error: %v", err)
	}
	if d.Year != 2024 || d.Month != time.February || d.Day != 29 {
		t.Fatalf("unexpected bound %v", d)
	}
	if _, err := views.ParseBound("02/29/2024"); err == nil {
		t.Fatal("expected non-ISO bound to be rejected")
	}
}

func TestDateRangeValidate(t *testing.T) {
	start := civil.Date{Year: 2024, Month: time.May, Day: 2}
	end := civil.Date{Year: 2024, Month: time.May, Day: 1}
	err := views.DateRange{Start: &start, End: &end}.Validate()
	if !errors.Is(err, views.ErrInvertedRange) {
		t.Fatalf("expected ErrInvertedRange, got %v", err)
	}
	if err := (views.DateRange{Start: &end, End: &start}).Validate(); err != nil {
		t.Fatalf("expected ordered range to validate, got %v", err)
	}
	if (views.DateRange{}).Active() {
		t.Fatal("expected empty range to be inactive")
	}
}
