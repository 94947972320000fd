package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeLLMJSON unmarshals a model reply into target. Replies wrapped in a
// markdown fence or surrounded by prose are unwrapped first.
func DecodeLLMJSON(content string, target any) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("decode llm json: empty reply")
	}
	var firstErr error
	for _, candidate := range jsonCandidates(content) {
		err := json.Unmarshal([]byte(candidate), target)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return fmt.Errorf("decode llm json: %w (reply: %s)", firstErr, snippet(content))
}

// jsonCandidates lists progressively looser readings of content.
func jsonCandidates(content string) []string {
	out := []string{content}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	unfenced := unfence(content)
	add(unfenced)
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(unfenced, pair[0])
		end := strings.LastIndex(unfenced, pair[1])
		if start >= 0 && end > start {
			add(unfenced[start : end+1])
		}
	}
	return out
}

// unfence returns the body of the first ``` block, or s unchanged.
func unfence(s string) string {
	_, rest, ok := strings.Cut(s, "```")
	if !ok {
		return s
	}
	if lang, body, found := strings.Cut(rest, "\n"); found && !strings.ContainsAny(strings.TrimSpace(lang), "{[") {
		rest = body
	}
	body, _, _ := strings.Cut(rest, "```")
	return body
}

// snippet flattens whitespace and caps s for error messages.
func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "<empty>"
	}
	if r := []rune(s); len(r) > 160 {
		return string(r[:160]) + "..."
	}
	return s
}
