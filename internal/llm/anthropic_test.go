package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

var replySchema = &Schema{
	Name:        "test-reply",
	Description: "A chat reply",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{"type": "string"},
		},
		"required":             []any{"response"},
		"additionalProperties": false,
	},
}

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(
		AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	})
}

func TestAnthropicProvider_StructuredReply(t *testing.T) {
	var body map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage("```json\n{\"response\":\"The glow.\"}\n```", "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a reading companion.",
		Messages:  []Message{{Role: RoleUser, Content: "What fades?"}},
		Schema:    replySchema,
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"response":"The glow."}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 80 || resp.StopReason != "end" {
		t.Errorf("usage = %+v, stop = %q", resp.Usage, resp.StopReason)
	}
	if body["model"] != "claude-haiku-4-5-20251001" {
		t.Errorf("model sent = %v", body["model"])
	}
	if body["max_tokens"] != float64(256) {
		t.Errorf("max_tokens sent = %v", body["max_tokens"])
	}
	if _, ok := body["output_config"]; !ok {
		t.Error("schema request should set output_config")
	}
}

func TestAnthropicProvider_PlainText(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage("just words", "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != "just words" {
		t.Errorf("content = %s", resp.Content)
	}
}

func TestAnthropicProvider_TruncatedStructuredReply(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"response":"The gl`, "max_tokens"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "What fades?"}},
		Schema:    replySchema,
		MaxTokens: 8,
	})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T: %v", err, err)
	}
}

func TestAnthropicProvider_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   string
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, "api_error", func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
		{"bad key", http.StatusUnauthorized, "authentication_error", func(err error) bool {
			var e *ErrRequestRejected
			return errors.As(err, &e) && e.StatusCode == http.StatusUnauthorized
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				anthropicError(w, tt.status, tt.kind)
			})

			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "hi"}},
				MaxTokens: 64,
			})
			if !tt.check(err) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			if calls.Load() != 1 {
				t.Errorf("SDK retried: %d calls", calls.Load())
			}
		})
	}
}

func TestAnthropicProvider_CancelledContext(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicError(w, http.StatusInternalServerError, "api_error")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}, MaxTokens: 8})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnthropicParams(t *testing.T) {
	params := anthropicParams("claude-x", Request{
		System: "sys",
		Messages: []Message{
			{Role: RoleUser, Content: "q1"},
			{Role: RoleAssistant, Content: "a1"},
			{Role: RoleUser, Content: "q2"},
		},
		Temperature: 0.4,
		MaxTokens:   100,
	})

	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, want := range []string{`"role":"assistant"`, `"text":"a1"`, `"temperature":0.4`, `"text":"sys"`} {
		if !strings.Contains(s, want) {
			t.Errorf("params %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "output_config") {
		t.Error("no schema means no output_config")
	}
}

func TestAnthropicProvider_NoTranscription(t *testing.T) {
	var p Provider = &AnthropicProvider{model: "claude-haiku-4-5-20251001"}
	if _, ok := p.(Transcriber); ok {
		t.Fatal("Anthropic provider should not claim transcription support")
	}
	_, err := transcribe(context.Background(), p, []byte("RIFF"), "a.wav")
	if !errors.Is(err, ErrTranscriptionUnsupported) {
		t.Fatalf("expected ErrTranscriptionUnsupported, got %v", err)
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus", "claude-opus-4-1-20250805"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
