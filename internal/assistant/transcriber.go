package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tracer/internal/logging"
	"tracer/internal/services"
)

// maxInlineAudio is the request size limit for inline audio data.
const maxInlineAudio = 20 << 20

var audioMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".aiff": "audio/aiff",
	".pcm":  "audio/pcm;rate=16000",
}

// AudioMIMEType returns the MIME type for an audio file path by extension.
func AudioMIMEType(path string) (string, bool) {
	mime, ok := audioMIMETypes[strings.ToLower(filepath.Ext(path))]
	return mime, ok
}

// Transcriber converts recorded audio notes to text.
type Transcriber struct {
	provider Provider
	model    string
	logger   *slog.Logger
}

// NewTranscriber returns a transcriber using model on provider.
func NewTranscriber(provider Provider, model string, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		provider: provider,
		model:    model,
		logger:   logging.NewComponentLogger(logger, "transcriber"),
	}
}

// Transcribe reads the audio file at path and returns its transcript.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	mime, ok := AudioMIMEType(path)
	if !ok {
		return "", services.Wrap(services.ErrValidation, "transcriber", "detect format",
			fmt.Sprintf("unsupported audio extension %q", filepath.Ext(path)), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	if len(data) == 0 {
		return "", services.Wrap(services.ErrValidation, "transcriber", "read audio", "file is empty", nil)
	}
	if len(data) > maxInlineAudio {
		return "", services.Wrap(services.ErrValidation, "transcriber", "read audio",
			fmt.Sprintf("file is %d bytes; inline audio is limited to %d", len(data), maxInlineAudio), nil)
	}
	t.logger.InfoContext(ctx, "transcription requested",
		logging.String("model", t.model),
		logging.String("mime_type", mime),
		logging.Int("bytes", len(data)),
	)
	text, err := t.provider.Generate(ctx, Request{
		Model:    t.model,
		Messages: []Message{{Role: RoleUser, Text: transcribePrompt}},
		Audio:    &Audio{Data: data, MIMEType: mime},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
