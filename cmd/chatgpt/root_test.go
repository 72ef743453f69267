package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ChatGPT/internal/backend"
	"ChatGPT/internal/config"
)

var validKey = "sk-" + strings.Repeat("k", 48)

type harness struct {
	app    *app
	dir    string
	stdout *bytes.Buffer
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	t.Setenv("CHATGPT_OPENAI_API_KEY", "")
	os.Unsetenv("CHATGPT_OPENAI_API_KEY")

	dir := filepath.Join(t.TempDir(), "chatgpt")
	var stdout bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, io.Discard)
	a.configDir = func() (string, error) { return dir, nil }
	return &harness{app: a, dir: dir, stdout: &stdout}
}

func (h *harness) execute(args ...string) error {
	cmd := h.app.rootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestSetAPIKey(t *testing.T) {
	h := newHarness(t, "sk-123\n"+validKey+"\n")

	if err := h.execute("--set-openai-api-key"); err != nil {
		t.Fatalf("execute() returned unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(h.dir, "config.toml"))
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if !strings.Contains(string(data), validKey) {
		t.Errorf("config = %q, want it to contain the key", data)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "should start with 'sk-'") {
		t.Errorf("output = %q, want validation message for the short key", out)
	}
	if !strings.Contains(out, "info: stored openai api key in") {
		t.Errorf("output = %q, want stored message", out)
	}
}

func TestDeleteConfig(t *testing.T) {
	h := newHarness(t, "")
	cfg, err := config.New(h.dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SaveAPIKey(validKey); err != nil {
		t.Fatal(err)
	}

	if err := h.execute("-d"); err != nil {
		t.Fatalf("execute() returned unexpected error: %v", err)
	}
	if _, err := os.Stat(cfg.Path); !os.IsNotExist(err) {
		t.Errorf("config still present: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "info: deleted config") {
		t.Errorf("output = %q, want deleted message", h.stdout.String())
	}
}

func TestDeleteConfig_Missing(t *testing.T) {
	h := newHarness(t, "")

	err := h.execute("--delete-config")
	if !errors.Is(err, config.ErrConfigIO) {
		t.Fatalf("execute() = %v, want ErrConfigIO", err)
	}
}

func TestTooManyArgs(t *testing.T) {
	h := newHarness(t, "")

	if err := h.execute("one", "two"); err == nil {
		t.Fatal("execute() accepted two positional arguments")
	}
}

func TestChat(t *testing.T) {
	var mu sync.Mutex
	var requests []backend.OpenAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req backend.OpenAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		mu.Lock()
		requests = append(requests, req)
		mu.Unlock()
		last := req.Messages[len(req.Messages)-1].Content
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]string{"role": "assistant", "content": "re: " + last}},
			},
			"usage": map[string]any{"total_tokens": 3},
		})
	}))
	defer srv.Close()

	h := newHarness(t, "second\n")
	h.app.endpoint = srv.URL
	t.Setenv("CHATGPT_OPENAI_API_KEY", validKey)

	if err := h.execute("first"); err != nil {
		t.Fatalf("execute() returned unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	if n := len(requests[1].Messages); n != 3 {
		t.Errorf("second request carried %d messages, want 3", n)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "re: first") || !strings.Contains(out, "re: second") {
		t.Errorf("output = %q, want both replies", out)
	}
}

func TestChat_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"boom"}`)
	}))
	defer srv.Close()

	h := newHarness(t, "")
	h.app.endpoint = srv.URL
	t.Setenv("CHATGPT_OPENAI_API_KEY", validKey)

	err := h.execute("hello")
	var reqErr *backend.RequestFailedError
	if !errors.As(err, &reqErr) {
		t.Fatalf("execute() = %v, want *RequestFailedError", err)
	}
}

func TestChat_PromptsForMissingKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+validKey {
			t.Errorf("Authorization = %q", got)
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	h := newHarness(t, validKey+"\nhi\n")
	h.app.endpoint = srv.URL

	if err := h.execute(); err != nil {
		t.Fatalf("execute() returned unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.dir, "config.toml")); err != nil {
		t.Errorf("config not written: %v", err)
	}
}
