package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted reply of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order. It backs the "mock"
// provider setting, so the server runs without an API key, and the tests.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse

	// Calls records every Generate request.
	Calls []Request

	// Transcript is what Transcribe hears; TranscribeErr makes it fail.
	// Audio records every recording passed in.
	Transcript    string
	TranscribeErr error
	Audio         [][]byte
}

var errScriptExhausted = errors.New("mock: no scripted replies left")

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

// AddResponse appends r to the script.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, r)
	m.mu.Unlock()
}

// Generate pops the next scripted reply. Once the script runs out every
// call fails as ErrProviderUnavailable.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{Err: errScriptExhausted}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Transcribe(_ context.Context, audio []byte, _ string) (*Transcription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Audio = append(m.Audio, audio)
	if m.TranscribeErr != nil {
		return nil, m.TranscribeErr
	}
	return &Transcription{Text: m.Transcript, Model: "mock"}, nil
}

// CallCount returns how many Generate calls were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
