package assistant

import (
	"context"
	"log/slog"
	"strings"

	"tracer/internal/config"
	"tracer/internal/logging"
	"tracer/internal/services"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one conversation turn.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Audio is an inline audio attachment sent with the final user turn.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Request is a provider-neutral generation request.
type Request struct {
	Model    string
	System   string
	Messages []Message
	Audio    *Audio
}

// Provider generates model output for a request.
type Provider interface {
	// Name identifies the backend in logs and archived entries.
	Name() string
	// Generate returns the complete reply.
	Generate(ctx context.Context, req Request) (string, error)
	// Stream delivers the reply in fragments. Returning an error from
	// onChunk aborts the stream with that error.
	Stream(ctx context.Context, req Request, onChunk func(string) error) error
}

// NewProvider constructs the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.AI, logger *slog.Logger) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "assistant", "provider",
			"ai.api_key is not set (use GEMINI_API_KEY or OPENROUTER_API_KEY)", nil)
	}
	logger = logging.NewComponentLogger(logger, "assistant")
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, logger)
	case config.ProviderOpenRouter:
		return NewOpenRouterProvider(OpenRouterConfig{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.ChatModel,
			Referer:        cfg.Referer,
			Title:          cfg.Title,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "assistant", "provider",
			"unsupported ai.provider "+cfg.Provider, nil)
	}
}

// HealthChecker is implemented by providers with a dedicated credentials check.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Check verifies that provider accepts the configured credentials and can
// answer with model. Providers without a dedicated check get a one-line
// generation request.
func Check(ctx context.Context, provider Provider, model string) error {
	if hc, ok := provider.(HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return services.Wrap(services.ErrExternal, provider.Name(), "health check", "", err)
		}
		return nil
	}
	_, err := provider.Generate(ctx, Request{
		Model:    model,
		Messages: []Message{{Role: RoleUser, Text: "Reply with OK."}},
	})
	return err
}

func lastUserIndex(messages []Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return i
		}
	}
	return -1
}
