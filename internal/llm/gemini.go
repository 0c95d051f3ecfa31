package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash":      "gemini-2.5-flash",
	"gemini-flash-lite": "gemini-2.5-flash-lite",
	"gemini-pro":        "gemini-2.5-pro",
}

// GeminiProvider generates and transcribes with the Gemini API. Audio is
// sent inline to the same model, so voice chat needs no second vendor.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	return newGeminiProvider(ctx, cfg, genai.HTTPOptions{})
}

func newGeminiProvider(ctx context.Context, cfg GeminiConfig, httpOpts genai.HTTPOptions) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: resolveModel(cfg.Model, geminiModels)}, nil
}

// geminiConfig translates req into generation settings. Schemas are
// passed through as JSON Schema; the API accepts the subset we emit.
func geminiConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = req.Schema.Definition
	}
	return cfg
}

func geminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	result, err := p.client.Models.GenerateContent(ctx, p.model, geminiContents(req.Messages), geminiConfig(req))
	if err != nil {
		return nil, mapGeminiError(ctx, err)
	}

	stop := geminiStopReason(result)
	raw := json.RawMessage(result.Text())
	if req.Schema != nil && stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: raw}
	}
	content, err := decodeStructured(req.Schema, raw)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content:    content,
		Usage:      geminiUsage(result),
		Model:      p.model,
		StopReason: stop,
	}, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

const transcribePrompt = "Transcribe this audio verbatim. Reply with the spoken words only."

func (p *GeminiProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(transcribePrompt),
		genai.NewPartFromBytes(audio, audioMIMEType(filename)),
	}, genai.RoleUser)}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, mapGeminiError(ctx, err)
	}
	return &Transcription{
		Text:  strings.TrimSpace(result.Text()),
		Model: p.model,
		Usage: geminiUsage(result),
	}, nil
}

func audioMIMEType(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".mp3", ".ogg", ".flac", ".webm":
		return "audio/" + ext[1:]
	}
	return "audio/wav"
}

func geminiUsage(result *genai.GenerateContentResponse) Usage {
	m := result.UsageMetadata
	if m == nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  int(m.PromptTokenCount),
		OutputTokens: int(m.CandidatesTokenCount),
		TotalTokens:  int(m.TotalTokenCount),
	}
}

func geminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "max_tokens"
	}
	return "end"
}

// mapGeminiError classifies by HTTP status. The SDK returns APIError by
// value from some paths and by pointer from others.
func mapGeminiError(ctx context.Context, err error) error {
	var (
		apiErr  genai.APIError
		apiErrP *genai.APIError
		status  int
	)
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrP):
		status = apiErrP.Code
	}
	return classifyStatus(ctx, status, err)
}
