package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type responseFormat struct {
	Type string `json:"type"`
}

type requestBody struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

type replyMessage struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

type choice struct {
	Message replyMessage `json:"message"`
	// Delta is set by streaming chunks and by some providers even when
	// stream is false.
	Delta        replyMessage `json:"delta"`
	Text         string       `json:"text"`
	FinishReason string       `json:"finish_reason"`
}

func (ch choice) content() string {
	for _, v := range []string{ch.Message.Content, ch.Delta.Content, ch.Text} {
		if v != "" {
			return v
		}
	}
	return ""
}

type responseBody struct {
	Choices []choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// text returns the first non-blank choice and the first finish reason seen.
func (r responseBody) text() (string, string) {
	finish := ""
	for _, ch := range r.Choices {
		if finish == "" {
			finish = strings.TrimSpace(ch.FinishReason)
		}
		if v := strings.TrimSpace(ch.content()); v != "" {
			return v, finish
		}
	}
	return "", finish
}

func (r responseBody) refusal() string {
	for _, ch := range r.Choices {
		if v := strings.TrimSpace(ch.Message.Refusal); v != "" {
			return v
		}
		if v := strings.TrimSpace(ch.Delta.Refusal); v != "" {
			return v
		}
	}
	return ""
}

// statusError is a non-2xx HTTP answer.
type statusError struct {
	code       int
	body       string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.code, e.body)
}

func newStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	wait, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
	return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw)), retryAfter: wait}
}

// noContentError is a successful HTTP answer that carried no reply text.
type noContentError struct {
	op      string
	finish  string
	refusal string
	body    string
}

func (e *noContentError) Error() string {
	return fmt.Sprintf("%s: empty reply (finish_reason=%q refusal=%q body=%s)", e.op, e.finish, e.refusal, e.body)
}

func (c *Client) open(ctx context.Context, body requestBody) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llm request: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request (timeout %s): %w", c.http.Timeout, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newStatusError(resp)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, body requestBody) (responseBody, []byte, error) {
	var out responseBody
	resp, err := c.open(ctx, body)
	if err != nil {
		return out, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, nil, fmt.Errorf("llm response: read: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, raw, fmt.Errorf("llm response: decode: %w", err)
	}
	if out.Error != nil {
		return out, raw, fmt.Errorf("llm response: %s", strings.TrimSpace(out.Error.Message))
	}
	return out, raw, nil
}
