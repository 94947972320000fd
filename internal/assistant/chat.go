package assistant

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tracer/internal/findings"
	"tracer/internal/logging"
	"tracer/internal/services"
)

// ErrEmptyMessage is returned by Send for blank input.
var ErrEmptyMessage = errors.New("empty chat message")

// Chat is a multi-turn conversation about a dataset. It is safe for
// concurrent use, although turns are serialized.
type Chat struct {
	mu       sync.Mutex
	id       string
	provider Provider
	model    string
	fields   findings.Fields
	limit    int
	history  []Message
	logger   *slog.Logger
}

// NewChat starts an empty conversation. A non-positive limit uses
// findings.DefaultChatContextRows.
func NewChat(provider Provider, model string, fields findings.Fields, limit int, logger *slog.Logger) *Chat {
	return &Chat{
		id:       uuid.NewString(),
		provider: provider,
		model:    model,
		fields:   fields.WithDefaults(),
		limit:    limit,
		logger:   logging.NewComponentLogger(logger, "chat"),
	}
}

// ID identifies the conversation in logs.
func (c *Chat) ID() string { return c.id }

// Send appends text as a user turn, streams the reply through onChunk, and
// records it as a model turn. The system instruction is rebuilt from records
// on every turn so it always reflects the current filter. If the provider
// fails, the model turn holds ChatApology and the error is returned.
func (c *Chat) Send(ctx context.Context, records []findings.Record, text string, onChunk func(string) error) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx = services.WithRequestID(ctx, c.id)
	system, err := ChatSystemInstruction(records, c.fields, c.limit)
	if err != nil {
		return "", err
	}

	c.history = append(c.history, Message{Role: RoleUser, Text: text})
	req := Request{
		Model:    c.model,
		System:   system,
		Messages: slices.Clone(c.history),
	}
	c.history = append(c.history, Message{Role: RoleModel})
	placeholder := len(c.history) - 1

	var reply strings.Builder
	err = c.provider.Stream(ctx, req, func(chunk string) error {
		reply.WriteString(chunk)
		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	})
	if err != nil {
		c.history[placeholder].Text = ChatApology
		logging.WarnWithContext(ctx, c.logger, "chat reply failed", "chat_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "apology shown instead of an answer"),
			logging.String(logging.FieldErrorHint, "retry the question or check ai settings"),
		)
		return ChatApology, err
	}
	c.history[placeholder].Text = reply.String()
	c.logger.DebugContext(ctx, "chat turn complete",
		logging.Int("turns", len(c.history)),
		logging.Int("chars", reply.Len()),
	)
	return reply.String(), nil
}

// History returns a copy of the conversation so far.
func (c *Chat) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// Reset clears the conversation.
func (c *Chat) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}
