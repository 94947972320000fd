package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tracer/internal/config"
	"tracer/internal/services"
	"tracer/internal/testsupport"
)

type fakeOpenRouter struct {
	mu       sync.Mutex
	requests []map[string]any
	reply    string
	chunks   []string
}

func (f *fakeOpenRouter) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		f.mu.Lock()
		f.requests = append(f.requests, body)
		f.mu.Unlock()

		if stream, _ := body["stream"].(bool); stream {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, chunk := range f.chunks {
				payload, _ := json.Marshal(map[string]any{
					"choices": []any{map[string]any{"delta": map[string]any{"content": chunk}}},
				})
				fmt.Fprintf(w, "data: %s\n\n", payload)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": f.reply}}},
		})
	})
}

func setupAIEnv(t *testing.T, fake *fakeOpenRouter) *cliTestEnv {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	return setupCLITestEnv(t, testsupport.WithAIEndpoint(config.ProviderOpenRouter, server.URL))
}

func TestAnalyzeArchivesReport(t *testing.T) {
	fake := &fakeOpenRouter{reply: "## Overall Summary\nHand hygiene dominates."}
	env := setupAIEnv(t, fake)
	path := env.writeExport(t, sampleExport)

	out, _, err := runCLI(t, []string{"analyze", path, "--standard", "IPSG"}, env.configPath, "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "Hand hygiene dominates.")
	requireContains(t, out, "Saved to history as ")

	if len(fake.requests) != 1 {
		t.Fatalf("expected one model request, got %d", len(fake.requests))
	}
	if model := fake.requests[0]["model"]; model != "google/gemini-2.5-pro" {
		t.Fatalf("unexpected analysis model %v", model)
	}
	messages, _ := fake.requests[0]["messages"].([]any)
	prompt, _ := messages[0].(map[string]any)["content"].(string)
	requireContains(t, prompt, `"Finding": "Alarm check overdue"`)
	if strings.Contains(prompt, "Fridge log missing") {
		t.Fatal("expected standard filter to exclude MMU findings from the prompt")
	}

	store := testsupport.MustOpenArchive(t, env.cfg)
	entries, err := store.List(t.Context(), 10)
	if err != nil {
		t.Fatalf("list archive: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one archived entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Standard != "IPSG" || entry.Records != 3 || entry.NotMet != 2 || entry.Provider != "openrouter" {
		t.Fatalf("unexpected archived entry %+v", entry)
	}

	list, _, err := runCLI(t, []string{"history", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, list, shortID(entry.ID))

	show, _, err := runCLI(t, []string{"history", "show", shortID(entry.ID)}, env.configPath, "")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, show, "Hand hygiene dominates.")
	requireContains(t, show, "Findings: 3 (2 Not Met)")

	if _, _, err := runCLI(t, []string{"history", "rm", entry.ID}, env.configPath, ""); err != nil {
		t.Fatalf("history rm: %v", err)
	}
	_, _, err = runCLI(t, []string{"history", "show", entry.ID}, env.configPath, "")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after rm, got %v", err)
	}
}

func TestAnalyzeNoSaveJSON(t *testing.T) {
	fake := &fakeOpenRouter{reply: "report"}
	env := setupAIEnv(t, fake)
	path := env.writeExport(t, sampleExport)

	out, _, err := runCLI(t, []string{"--json", "analyze", path, "--no-save"}, env.configPath, "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got analysisOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if got.ArchiveID != "" || got.Report != "report" || got.Records != 7 || got.NotMet != 4 {
		t.Fatalf("unexpected analysis output %+v", got)
	}

	list, _, err := runCLI(t, []string{"history", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, list, "No archived analyses.")
}

func TestAnalyzeRejectsEmptySelection(t *testing.T) {
	fake := &fakeOpenRouter{reply: "unused"}
	env := setupAIEnv(t, fake)
	path := env.writeExport(t, sampleExport)

	_, _, err := runCLI(t, []string{"analyze", path, "--standard", "NOPE"}, env.configPath, "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatal("expected no model request for an empty selection")
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAPIKey(""))
	path := env.writeExport(t, sampleExport)

	_, _, err := runCLI(t, []string{"analyze", path}, env.configPath, "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, err.Error(), "GEMINI_API_KEY")
	if code := services.ExitCode(err); code != services.ExitConfig {
		t.Fatalf("exit code = %d, want %d", code, services.ExitConfig)
	}
}

func TestChatStreamsRepliesAndResets(t *testing.T) {
	fake := &fakeOpenRouter{chunks: []string{"ICU has ", "2 Not Met."}}
	env := setupAIEnv(t, fake)
	path := env.writeExport(t, sampleExport)

	stdin := "Which department?\n\nFollow up\n/reset\nAfter reset\n/exit\nignored\n"
	out, _, err := runCLI(t, []string{"chat", path}, env.configPath, stdin)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if strings.Count(out, "ICU has 2 Not Met.\n") != 3 {
		t.Fatalf("expected three streamed replies:\n%s", out)
	}
	requireContains(t, out, "Conversation cleared.")

	if len(fake.requests) != 3 {
		t.Fatalf("expected three model requests, got %d", len(fake.requests))
	}
	messageCount := func(i int) int {
		messages, _ := fake.requests[i]["messages"].([]any)
		return len(messages)
	}
	// system + user, then system + user + assistant + user, then reset.
	if messageCount(0) != 2 || messageCount(1) != 4 || messageCount(2) != 2 {
		t.Fatalf("unexpected message counts %d %d %d", messageCount(0), messageCount(1), messageCount(2))
	}
	if model := fake.requests[0]["model"]; model != "google/gemini-2.5-flash" {
		t.Fatalf("unexpected chat model %v", model)
	}
}

func TestChatContextIgnoresFilters(t *testing.T) {
	fake := &fakeOpenRouter{chunks: []string{"ok"}}
	env := setupAIEnv(t, fake)
	path := env.writeExport(t, sampleExport)

	args := []string{"chat", path, "--standard", "IPSG"}
	if _, _, err := runCLI(t, args, env.configPath, "Which department?\n/exit\n"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected one model request, got %d", len(fake.requests))
	}
	messages, _ := fake.requests[0]["messages"].([]any)
	if len(messages) == 0 {
		t.Fatal("request carried no messages")
	}
	system, _ := messages[0].(map[string]any)
	prompt, _ := system["content"].(string)
	// MMU and ACC rows sit outside the standard filter.
	for _, finding := range []string{"HH", "Alarm", "Fridge", "Consent", "Label"} {
		requireContains(t, prompt, finding)
	}
}

func TestTranscribeRejectsUnsupportedInput(t *testing.T) {
	fake := &fakeOpenRouter{}
	env := setupAIEnv(t, fake)

	notes := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notes, []byte("text"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	if _, _, err := runCLI(t, []string{"transcribe", notes}, env.configPath, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for .txt, got %v", err)
	}

	audio := filepath.Join(t.TempDir(), "round.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if _, _, err := runCLI(t, []string{"transcribe", audio}, env.configPath, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected openrouter to reject audio, got %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatal("expected no model request")
	}
}
