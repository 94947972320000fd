package assistant

import (
	"context"
	"errors"
	"log/slog"

	"tracer/internal/findings"
	"tracer/internal/logging"
	"tracer/internal/services"
)

// ErrNoFindings is returned when there is nothing to analyze.
var ErrNoFindings = errors.New("no findings to analyze")

// Analyst produces a narrative quality assurance report for a set of findings.
type Analyst struct {
	provider Provider
	model    string
	fields   findings.Fields
	logger   *slog.Logger
}

// NewAnalyst returns an analyst using model on provider.
func NewAnalyst(provider Provider, model string, fields findings.Fields, logger *slog.Logger) *Analyst {
	return &Analyst{
		provider: provider,
		model:    model,
		fields:   fields.WithDefaults(),
		logger:   logging.NewComponentLogger(logger, "analyst"),
	}
}

// Model returns the model the analyst calls.
func (a *Analyst) Model() string { return a.model }

// Analyze asks the model for a markdown report on records. On failure the
// caller is expected to show AnalysisFallback.
func (a *Analyst) Analyze(ctx context.Context, records []findings.Record) (string, error) {
	if len(records) == 0 {
		return "", services.Wrap(services.ErrValidation, "analyst", "analyze", "", ErrNoFindings)
	}
	prompt, err := AnalysisPrompt(records, a.fields)
	if err != nil {
		return "", err
	}
	a.logger.InfoContext(ctx, "analysis requested",
		logging.String("provider", a.provider.Name()),
		logging.String("model", a.model),
		logging.Int("records", len(records)),
	)
	report, err := a.provider.Generate(ctx, Request{
		Model:    a.model,
		Messages: []Message{{Role: RoleUser, Text: prompt}},
	})
	if err != nil {
		logging.ErrorWithContext(ctx, a.logger, "analysis failed", "analysis_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ai.api_key and network access"),
		)
		return "", err
	}
	return report, nil
}
