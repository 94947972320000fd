package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the OpenRouter chat completions URL.
const DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

const defaultTimeout = 120 * time.Second

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config holds the connection settings for one OpenRouter account.
type Config struct {
	APIKey  string
	BaseURL string
	// Model is used when a call passes an empty model name.
	Model string
	// Referer and Title identify the app on openrouter.ai rankings.
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	referer  string
	title    string
	http     *http.Client
	retry    retryPolicy
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetryMaxAttempts sets how many times a request is tried in total.
func WithRetryMaxAttempts(n int) Option {
	return func(c *Client) { c.retry.attempts = n }
}

// WithRetryBackoff sets the first retry delay and the ceiling for later ones.
func WithRetryBackoff(first, ceiling time.Duration) Option {
	return func(c *Client) {
		c.retry.first = first
		c.retry.ceiling = ceiling
	}
}

// WithSleeper replaces the wait between retries.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleep = sleep }
}

// NewClient returns a client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: strings.TrimSpace(cfg.BaseURL),
		model:    strings.TrimSpace(cfg.Model),
		referer:  strings.TrimSpace(cfg.Referer),
		title:    strings.TrimSpace(cfg.Title),
		http:     &http.Client{Timeout: timeout},
		retry:    defaultRetryPolicy(),
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the fallback model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends messages and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	body, err := c.newBody("llm complete", model, messages)
	if err != nil {
		return "", err
	}
	return c.send(ctx, "llm complete", body)
}

// CompleteJSON asks for a JSON object at temperature zero and returns the raw
// reply. Use DecodeLLMJSON to read it.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "llm complete json"
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", fmt.Errorf("%s: system prompt required", op)
	case userPrompt == "":
		return "", fmt.Errorf("%s: user prompt required", op)
	}
	body, err := c.newBody(op, "", []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userPrompt},
	})
	if err != nil {
		return "", err
	}
	body.Temperature = new(float64)
	body.ResponseFormat = &responseFormat{Type: "json_object"}
	return c.send(ctx, op, body)
}

// HealthCheck confirms the key and default model answer a trivial JSON prompt.
func (c *Client) HealthCheck(ctx context.Context) error {
	reply, err := c.CompleteJSON(ctx, "Answer with a JSON object only.", `Reply with {"ok":true}`)
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	var status struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(reply, &status); err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	if !status.OK {
		return errors.New("llm health: model did not confirm")
	}
	return nil
}

func (c *Client) newBody(op, model string, messages []Message) (requestBody, error) {
	if c.apiKey == "" {
		return requestBody{}, fmt.Errorf("%s: api key required", op)
	}
	if len(messages) == 0 {
		return requestBody{}, fmt.Errorf("%s: no messages", op)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = c.model
	}
	if model == "" {
		return requestBody{}, fmt.Errorf("%s: model required", op)
	}
	return requestBody{Model: model, Messages: messages}, nil
}

// send posts body until a non-empty reply arrives or the retry policy gives up.
func (c *Client) send(ctx context.Context, op string, body requestBody) (string, error) {
	var reply string
	err := c.retry.do(ctx, op, func() error {
		resp, raw, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		text, finish := resp.text()
		if text == "" {
			return &noContentError{op: op, finish: finish, refusal: resp.refusal(), body: snippet(string(raw))}
		}
		reply = text
		return nil
	})
	return reply, err
}
