package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"tracer/internal/config"
	"tracer/internal/findings"
	"tracer/internal/logging"
	"tracer/internal/services"
	"tracer/internal/source"
	"tracer/internal/views"
)

const unreadableMessage = "Failed to parse CSV or the file is empty. Please check the file format and content."

// unreadableError reports an export that yielded no records. It prints the
// user-facing message and keeps the cause for errors.Is.
type unreadableError struct {
	cause error
}

func (e *unreadableError) Error() string { return unreadableMessage }

func (e *unreadableError) Unwrap() error { return e.cause }

type dataFlags struct {
	standard  string
	from      string
	to        string
	encoding  string
	separator string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.standard, "standard", views.AllStandards, "Only include findings for this standard")
	flags.StringVar(&f.from, "from", "", "Earliest tracer date to include (YYYY-MM-DD)")
	flags.StringVar(&f.to, "to", "", "Latest tracer date to include (YYYY-MM-DD)")
	flags.StringVar(&f.encoding, "encoding", "", "Input encoding (auto, utf-8, utf-16, windows-874, windows-1252)")
	flags.StringVar(&f.separator, "separator", "", `Field separator (one character, \t for tab)`)
}

func (f *dataFlags) filter() (views.Filter, error) {
	start, err := views.ParseBound(f.from)
	if err != nil {
		return views.Filter{}, services.Wrap(services.ErrValidation, "filter", "--from", "", err)
	}
	end, err := views.ParseBound(f.to)
	if err != nil {
		return views.Filter{}, services.Wrap(services.ErrValidation, "filter", "--to", "", err)
	}
	dates := views.DateRange{Start: start, End: end}
	if err := dates.Validate(); err != nil {
		return views.Filter{}, services.Wrap(services.ErrValidation, "filter", "dates", "", err)
	}
	return views.Filter{Standard: strings.TrimSpace(f.standard), Dates: dates}, nil
}

func (f *dataFlags) readOptions(cfg *config.Config) (source.Encoding, rune, error) {
	enc := cfg.Encoding()
	if strings.TrimSpace(f.encoding) != "" {
		parsed, err := source.ParseEncoding(f.encoding)
		if err != nil {
			return "", 0, services.Wrap(services.ErrValidation, "input", "--encoding", "", err)
		}
		enc = parsed
	}
	sep := cfg.Separator()
	if f.separator != "" {
		parsed, err := parseSeparator(f.separator)
		if err != nil {
			return "", 0, services.Wrap(services.ErrValidation, "input", "--separator", "", err)
		}
		sep = parsed
	}
	return enc, sep, nil
}

func parseSeparator(value string) (rune, error) {
	if value == `\t` || strings.EqualFold(value, "tab") {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError || size != len(value) {
		return 0, fmt.Errorf("separator must be a single character, got %q", value)
	}
	switch r {
	case '"', '\n', '\r':
		return 0, fmt.Errorf("separator %q is not allowed", value)
	}
	return r, nil
}

// dataView is a loaded export together with the filtered views.
type dataView struct {
	path    string
	dataset findings.Dataset
	engine  *views.Engine
	bundle  views.Bundle
}

func (c *commandContext) loadView(cmd *cobra.Command, path string, flags *dataFlags) (*dataView, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger(cmd)
	if err != nil {
		return nil, err
	}
	ctx := runContext(cmd, path)
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "dataset"))

	filter, err := flags.filter()
	if err != nil {
		return nil, err
	}
	enc, sep, err := flags.readOptions(cfg)
	if err != nil {
		return nil, err
	}

	text, err := source.ReadFile(path, enc)
	if err != nil {
		if errors.Is(err, source.ErrEmptyFile) {
			return nil, &unreadableError{cause: err}
		}
		return nil, err
	}
	ds, err := findings.LoadWith(text, findings.Options{Separator: sep})
	if err != nil {
		logging.WarnWithContext(ctx, logger, "export could not be loaded", "dataset_unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no findings to display"),
			logging.String(logging.FieldErrorHint, "check the separator and that the file has a header and data rows"),
		)
		return nil, &unreadableError{cause: err}
	}

	engine := views.New(cfg.Fields())
	bundle := engine.Derive(ds.Records, filter)
	logger.Debug("dataset loaded",
		logging.Int("records", ds.Len()),
		logging.Int("columns", ds.Columns.Len()),
		logging.Int("filtered", bundle.Totals.Total),
		logging.String("standard", filter.Standard),
		logging.String("dates", filter.Dates.String()),
	)
	return &dataView{path: path, dataset: ds, engine: engine, bundle: bundle}, nil
}

// filterSummary describes the active filter for JSON output and archive rows.
type filterSummary struct {
	Standard string `json:"standard"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

func summarizeFilter(f views.Filter) filterSummary {
	out := filterSummary{Standard: f.Standard}
	if out.Standard == "" {
		out.Standard = views.AllStandards
	}
	if f.Dates.Start != nil {
		out.From = f.Dates.Start.String()
	}
	if f.Dates.End != nil {
		out.To = f.Dates.End.String()
	}
	return out
}
