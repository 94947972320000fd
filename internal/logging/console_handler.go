package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one human-readable line per record:
//
//	2024-03-05 14:30:00 INFO archive: entry saved id=0b6f... records=42
//
// The component attribute becomes the line prefix instead of a key=value
// pair. Attributes added with WithAttrs are rendered once and reused.
type consoleHandler struct {
	out       *syncWriter
	level     slog.Leveler
	addSource bool

	group     string
	component string
	bound     string
	boundKeys []string
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(line)
	return err
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{out: &syncWriter{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var pairs strings.Builder
	component := h.component
	keys := slices.Clone(h.boundKeys)
	r.Attrs(func(a slog.Attr) bool {
		component = h.appendAttr(&pairs, &keys, h.group, a, component)
		return true
	})
	for _, a := range ContextFields(ctx) {
		if !slices.Contains(keys, a.Key) {
			component = h.appendAttr(&pairs, &keys, "", a, component)
		}
	}

	var line strings.Builder
	line.WriteString(ts.Local().Format("2006-01-02 15:04:05"))
	line.WriteByte(' ')
	line.WriteString(levelName(r.Level))
	line.WriteByte(' ')
	if component != "" {
		line.WriteString(component)
		line.WriteString(": ")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	line.WriteString(msg)
	if h.addSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	line.WriteString(h.bound)
	line.WriteString(pairs.String())
	line.WriteByte('\n')
	return h.out.write([]byte(line.String()))
}

// appendAttr writes " key=value" for a, flattening groups into dotted keys.
// It returns the component to use for the line.
func (h *consoleHandler) appendAttr(b *strings.Builder, keys *[]string, prefix string, a slog.Attr, component string) string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return component
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			component = h.appendAttr(b, keys, prefix, ga, component)
		}
		return component
	}
	if prefix == "" && a.Key == FieldComponent {
		if component == "" {
			return plainValue(a.Value)
		}
		return component
	}
	key := prefix + a.Key
	*keys = append(*keys, key)
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(quoteIfNeeded(plainValue(a.Value)))
	return component
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.boundKeys = slices.Clone(h.boundKeys)
	var b strings.Builder
	b.WriteString(h.bound)
	for _, a := range attrs {
		next.component = next.appendAttr(&b, &next.boundKeys, h.group, a, next.component)
	}
	next.bound = b.String()
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

func plainValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
