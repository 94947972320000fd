package assistant

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"tracer/internal/logging"
	"tracer/internal/services"
)

// GeminiConfig holds the Gemini API connection settings.
type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// contentGenerator is the subset of *genai.Models the provider calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// GeminiProvider calls the Gemini API.
type GeminiProvider struct {
	models contentGenerator
	logger *slog.Logger
}

// NewGeminiProvider creates a Gemini API client.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.TimeoutSeconds > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "", err)
	}
	return newGeminiProvider(client.Models, logger), nil
}

func newGeminiProvider(models contentGenerator, logger *slog.Logger) *GeminiProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GeminiProvider{models: models, logger: logger}
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Generate implements Provider.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	contents, cfg, err := geminiRequest(req)
	if err != nil {
		return "", err
	}
	started := time.Now()
	resp, err := p.models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "gemini", "generate", req.Model, err)
	}
	text := resp.Text()
	p.logger.DebugContext(ctx, "gemini reply received",
		logging.String("model", req.Model),
		logging.Int("chars", len(text)),
		logging.Duration("elapsed", time.Since(started)),
	)
	if text == "" {
		return "", services.Wrap(services.ErrExternal, "gemini", "generate", "empty response", nil)
	}
	return text, nil
}

// Stream implements Provider.
func (p *GeminiProvider) Stream(ctx context.Context, req Request, onChunk func(string) error) error {
	contents, cfg, err := geminiRequest(req)
	if err != nil {
		return err
	}
	chunks := 0
	for resp, err := range p.models.GenerateContentStream(ctx, req.Model, contents, cfg) {
		if err != nil {
			return services.Wrap(services.ErrExternal, "gemini", "stream", req.Model, err)
		}
		text := resp.Text()
		if text == "" {
			continue
		}
		chunks++
		if err := onChunk(text); err != nil {
			return err
		}
	}
	p.logger.DebugContext(ctx, "gemini stream finished",
		logging.String("model", req.Model),
		logging.Int("chunks", chunks),
	)
	return nil
}

func geminiRequest(req Request) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	if req.Model == "" {
		return nil, nil, services.Wrap(services.ErrValidation, "gemini", "request", "model required", nil)
	}
	if len(req.Messages) == 0 {
		return nil, nil, services.Wrap(services.ErrValidation, "gemini", "request", "at least one message required", nil)
	}
	audioAt := -1
	if req.Audio != nil {
		audioAt = lastUserIndex(req.Messages)
		if audioAt < 0 {
			return nil, nil, errors.New("gemini request: audio requires a user message")
		}
	}
	contents := make([]*genai.Content, 0, len(req.Messages))
	for i, msg := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == RoleModel {
			role = genai.RoleModel
		}
		if i == audioAt {
			parts := []*genai.Part{
				genai.NewPartFromBytes(req.Audio.Data, req.Audio.MIMEType),
				genai.NewPartFromText(msg.Text),
			}
			contents = append(contents, genai.NewContentFromParts(parts, role))
			continue
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	var cfg *genai.GenerateContentConfig
	if req.System != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		}
	}
	return contents, cfg, nil
}
