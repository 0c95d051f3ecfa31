package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterTitle identifies the app in OpenRouter's usage dashboard.
const openRouterTitle = "MindSync"

// OpenRouterProvider talks to OpenRouter through its OpenAI-compatible
// chat API. OpenRouter has no audio endpoint, so transcription is
// unsupported.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Model IDs are passed through unchanged (e.g. "google/gemini-2.5-flash").
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, attributionDoer{next: http.DefaultClient})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// Transcribe always fails: OpenRouter cannot transcribe audio.
func (p *OpenRouterProvider) Transcribe(context.Context, []byte, string) (*Transcription, error) {
	return nil, fmt.Errorf("openrouter: %w", ErrTranscriptionUnsupported)
}

// attributionDoer adds OpenRouter's optional app attribution headers.
type attributionDoer struct {
	next openai.HTTPDoer
}

func (d attributionDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-Title", openRouterTitle)
	return d.next.Do(req)
}
