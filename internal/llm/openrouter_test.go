package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("model passed through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "gpt-4o",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// No friendly-name mapping, even for names OpenAI would resolve.
		if p.ModelID() != "gpt-4o" {
			t.Errorf("model = %q", p.ModelID())
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.5-flash"}); err == nil {
			t.Fatal("expected error for empty API key")
		}
	})
}

func TestOpenRouterProvider_SendsAttribution(t *testing.T) {
	var title, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"response":"ok"}`, "stop"))
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.5-flash",
		BaseURL: server.URL + "/api/v1",
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		Schema:    replySchema,
		MaxTokens: 32,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"response":"ok"}` {
		t.Errorf("content = %s", resp.Content)
	}
	if title != openRouterTitle {
		t.Errorf("X-Title = %q", title)
	}
	if path != "/api/v1/chat/completions" {
		t.Errorf("path = %q", path)
	}
}

func TestOpenRouterProvider_NoTranscription(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "x"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = p.Transcribe(context.Background(), []byte("RIFF"), "a.wav")
	if !errors.Is(err, ErrTranscriptionUnsupported) {
		t.Fatalf("expected ErrTranscriptionUnsupported, got %v", err)
	}
}
