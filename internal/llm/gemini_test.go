package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := map[string]string{
		"gemini-flash":      "gemini-2.5-flash",
		"gemini-flash-lite": "gemini-2.5-flash-lite",
		"gemini-pro":        "gemini-2.5-pro",
		"gemini-2.0-flash":  "gemini-2.0-flash",
	}
	for in, want := range tests {
		if got := resolveModel(in, geminiModels); got != want {
			t.Errorf("resolveModel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(Request{
		System:      "You are a vocabulary tutor.",
		Schema:      replySchema,
		MaxTokens:   1024,
		Temperature: 0.4,
	})
	if cfg.MaxOutputTokens != 1024 || cfg.Temperature == nil || *cfg.Temperature != float32(0.4) {
		t.Errorf("limits = %d / %v", cfg.MaxOutputTokens, cfg.Temperature)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "You are a vocabulary tutor." {
		t.Errorf("system = %+v", cfg.SystemInstruction)
	}
	if cfg.ResponseMIMEType != "application/json" || cfg.ResponseJsonSchema == nil {
		t.Errorf("structured output not requested: %q %v", cfg.ResponseMIMEType, cfg.ResponseJsonSchema)
	}

	plain := geminiConfig(Request{})
	if plain.Temperature != nil || plain.SystemInstruction != nil || plain.ResponseJsonSchema != nil {
		t.Errorf("zero request should leave options unset: %+v", plain)
	}
}

func TestGeminiContents_Roles(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "What does ephemeral mean?"},
		{Role: RoleAssistant, Content: "Short-lived."},
	})
	if len(got) != 2 || got[0].Role != genai.RoleUser || got[1].Role != genai.RoleModel {
		t.Fatalf("contents = %+v", got)
	}
}

func geminiTestServer(t *testing.T, status int, body string, seen *string) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			*seen = r.URL.Path + " " + string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := newGeminiProvider(context.Background(), GeminiConfig{APIKey: "test", Model: "gemini-flash"},
		genai.HTTPOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func geminiReply(text, finish string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 40, "candidatesTokenCount": 7, "totalTokenCount": 47},
	})
	return string(b)
}

func TestGemini_GenerateStructured(t *testing.T) {
	var seen string
	p := geminiTestServer(t, http.StatusOK, geminiReply(`{"response":"It means short-lived."}`, "STOP"), &seen)

	resp, err := p.Generate(context.Background(), Request{
		System:    "Answer from the document.",
		Messages:  []Message{{Role: RoleUser, Content: "What does ephemeral mean?"}},
		Schema:    replySchema,
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"response":"It means short-lived."}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Model != "gemini-2.5-flash" || resp.StopReason != "end" || resp.Usage.TotalTokens != 47 {
		t.Errorf("resp = %+v", resp)
	}
	if !strings.Contains(seen, "gemini-2.5-flash:generateContent") || !strings.Contains(seen, "responseJsonSchema") {
		t.Errorf("request = %s", seen)
	}
}

func TestGemini_TruncatedStructuredOutput(t *testing.T) {
	p := geminiTestServer(t, http.StatusOK, geminiReply(`{"response":"It me`, "MAX_TOKENS"), nil)

	_, err := p.Generate(context.Background(), Request{Schema: replySchema})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}
}

func TestGemini_ErrorStatus(t *testing.T) {
	p := geminiTestServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, nil)

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T: %v", err, err)
	}
}

func TestGemini_Transcribe(t *testing.T) {
	var seen string
	p := geminiTestServer(t, http.StatusOK, geminiReply("  what does ephemeral mean\n", "STOP"), &seen)

	out, err := p.Transcribe(context.Background(), []byte("RIFF"), "question.ogg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "what does ephemeral mean" || out.Usage.InputTokens != 40 {
		t.Errorf("out = %+v", out)
	}
	if !strings.Contains(seen, "audio/ogg") {
		t.Errorf("audio part missing from request: %s", seen)
	}
}

func TestAudioMIMEType_Fallback(t *testing.T) {
	if got := audioMIMEType("clip"); got != "audio/wav" {
		t.Errorf("audioMIMEType(clip) = %q", got)
	}
	if got := audioMIMEType("clip.WEBM"); got != "audio/webm" {
		t.Errorf("audioMIMEType(clip.WEBM) = %q", got)
	}
}
