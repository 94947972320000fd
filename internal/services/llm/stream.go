package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Stream sends messages with stream=true and calls onDelta for each content
// fragment. It returns everything received. Once a fragment has been
// delivered the request is never retried.
func (c *Client) Stream(ctx context.Context, model string, messages []Message, onDelta func(string) error) (string, error) {
	const op = "llm stream"
	body, err := c.newBody(op, model, messages)
	if err != nil {
		return "", err
	}
	body.Stream = true

	var reply strings.Builder
	err = c.retry.do(ctx, op, func() error {
		reply.Reset()
		resp, err := c.open(ctx, body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := readEvents(resp.Body, &reply, onDelta); err != nil {
			err = fmt.Errorf("%s: %w", op, err)
			if reply.Len() > 0 {
				return finalError{err}
			}
			return err
		}
		if strings.TrimSpace(reply.String()) == "" {
			return &noContentError{op: op, body: "<empty>"}
		}
		return nil
	})
	return reply.String(), err
}

// readEvents consumes server-sent events until [DONE] or EOF. Only data lines
// are read; comments such as ": OPENROUTER PROCESSING" are ignored.
func readEvents(r io.Reader, reply *strings.Builder, onDelta func(string) error) error {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for lines.Scan() {
		data, ok := strings.CutPrefix(lines.Text(), "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil
		}
		var chunk responseBody
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("api error: %s", strings.TrimSpace(chunk.Error.Message))
		}
		for _, ch := range chunk.Choices {
			delta := ch.content()
			if delta == "" {
				continue
			}
			reply.WriteString(delta)
			if onDelta != nil {
				if err := onDelta(delta); err != nil {
					return finalError{err}
				}
			}
		}
	}
	if err := lines.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	return nil
}
