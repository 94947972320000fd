package assistant

import (
	"context"
	"log/slog"

	"tracer/internal/logging"
	"tracer/internal/services"
	"tracer/internal/services/llm"
)

// OpenRouterConfig holds the OpenRouter connection settings.
type OpenRouterConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// OpenRouterProvider calls Gemini (or any other model) through OpenRouter.
// Audio attachments are not supported.
type OpenRouterProvider struct {
	client *llm.Client
	logger *slog.Logger
}

// NewOpenRouterProvider builds a provider backed by the OpenRouter client.
func NewOpenRouterProvider(cfg OpenRouterConfig, logger *slog.Logger, opts ...llm.Option) *OpenRouterProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, opts...)
	return &OpenRouterProvider{client: client, logger: logger}
}

// Name implements Provider.
func (p *OpenRouterProvider) Name() string { return "openrouter" }

// Generate implements Provider.
func (p *OpenRouterProvider) Generate(ctx context.Context, req Request) (string, error) {
	messages, err := openRouterMessages(req)
	if err != nil {
		return "", err
	}
	reply, err := p.client.Complete(ctx, req.Model, messages)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "openrouter", "generate", req.Model, err)
	}
	return reply, nil
}

// Stream implements Provider.
func (p *OpenRouterProvider) Stream(ctx context.Context, req Request, onChunk func(string) error) error {
	messages, err := openRouterMessages(req)
	if err != nil {
		return err
	}
	reply, err := p.client.Stream(ctx, req.Model, messages, onChunk)
	if err != nil {
		return services.Wrap(services.ErrExternal, "openrouter", "stream", req.Model, err)
	}
	p.logger.DebugContext(ctx, "openrouter stream finished",
		logging.String("model", req.Model),
		logging.Int("chars", len(reply)),
	)
	return nil
}

// HealthCheck implements HealthChecker using a JSON-mode ping on the
// configured chat model.
func (p *OpenRouterProvider) HealthCheck(ctx context.Context) error {
	return p.client.HealthCheck(ctx)
}

func openRouterMessages(req Request) ([]llm.Message, error) {
	if req.Audio != nil {
		return nil, services.Wrap(services.ErrValidation, "openrouter", "request",
			"audio input requires ai.provider = \"gemini\"", nil)
	}
	messages := make([]llm.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: req.System})
	}
	for _, msg := range req.Messages {
		role := llm.RoleUser
		if msg.Role == RoleModel {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Text})
	}
	return messages, nil
}
