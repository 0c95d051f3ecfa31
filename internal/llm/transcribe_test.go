package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/store"
)

// recordingRepo keeps appended events in memory.
type recordingRepo struct {
	store.EventRepo // unused query methods

	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

// textOnlyProvider generates but cannot transcribe.
type textOnlyProvider struct{}

func (textOnlyProvider) Generate(context.Context, Request) (*Response, error) {
	return &Response{Content: json.RawMessage(`{}`)}, nil
}
func (textOnlyProvider) ModelID() string { return "text-only" }

func TestLogging_RecordsGenerate(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"response":"hi"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, repo, zap.NewNop())

	ctx := WithPurpose(context.Background(), "chat")
	_, err := p.Generate(ctx, Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Purpose != "chat" || !e.Success || e.InputTokens != 12 || e.OutputTokens != 3 {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.ResponseBody != `{"response":"hi"}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}
	if e.RequestBody == "" {
		t.Error("request body should be recorded")
	}
}

func TestLogging_StoreFailureDoesNotFailRequest(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, repo, zap.NewNop())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("logging failure leaked: %v", err)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, nil, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranscribe_ThroughDecorators(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider()
	mock.Transcript = "what fades?"
	p := WithRetry(WithLogging(mock, repo, zap.NewNop()), retryConfig())

	tr, ok := p.(Transcriber)
	if !ok {
		t.Fatal("decorated provider should expose Transcribe")
	}
	out, err := tr.Transcribe(WithPurpose(context.Background(), "transcribe"), []byte("RIFF"), "recording.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "what fades?" {
		t.Errorf("text = %q", out.Text)
	}
	if len(mock.Audio) != 1 || string(mock.Audio[0]) != "RIFF" {
		t.Errorf("audio = %v", mock.Audio)
	}
	if len(repo.events) != 1 || repo.events[0].Purpose != "transcribe" || repo.events[0].ResponseBody != "what fades?" {
		t.Errorf("events = %+v", repo.events)
	}
}

func TestTranscribe_RetriesTransientErrors(t *testing.T) {
	mock := NewMockProvider()
	mock.TranscribeErr = &ErrProviderUnavailable{Err: errors.New("down")}
	p := WithRetry(mock, retryConfig()).(Transcriber)

	_, err := p.Transcribe(context.Background(), []byte("RIFF"), "recording.wav")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(mock.Audio) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(mock.Audio))
	}
}

func TestTranscribe_UnsupportedProvider(t *testing.T) {
	p := WithRetry(WithLogging(textOnlyProvider{}, nil, nil), retryConfig()).(Transcriber)

	_, err := p.Transcribe(context.Background(), []byte("RIFF"), "recording.wav")
	if !errors.Is(err, ErrTranscriptionUnsupported) {
		t.Fatalf("expected ErrTranscriptionUnsupported, got %v", err)
	}
}

func TestAudioMIMEType(t *testing.T) {
	tests := map[string]string{
		"recording.wav": "audio/wav",
		"clip.MP3":      "audio/mp3",
		"voice.ogg":     "audio/ogg",
		"noext":         "audio/wav",
	}
	for name, want := range tests {
		if got := audioMIMEType(name); got != want {
			t.Errorf("audioMIMEType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock", Retry: retryConfig()}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("model = %q", p.ModelID())
	}
	if _, err := NewProvider(context.Background(), Config{Provider: "openai"}, nil, nil); err == nil {
		t.Error("expected validation error for missing key")
	}
}

func TestConfigFromEnv_Prefix(t *testing.T) {
	t.Setenv("MINDSYNC_LLM_PROVIDER", "openai")
	t.Setenv("MINDSYNC_OPENAI_API_KEY", "sk-test")
	t.Setenv("MINDSYNC_OPENAI_TRANSCRIPTION_MODEL", "gpt-4o-transcribe")
	t.Setenv("MINDSYNC_LLM_TIMEOUT", "90s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.OpenAI.TranscriptionModel != "gpt-4o-transcribe" {
		t.Errorf("transcription model = %q", cfg.OpenAI.TranscriptionModel)
	}
	if cfg.Timeout.Seconds() != 90 {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}
