package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openaiModels holds the aliases accepted for MINDSYNC_OPENAI_MODEL. OpenAI
// IDs are already short, so these are identity mappings kept for the
// stats table and documentation.
var openaiModels = map[string]string{
	"gpt-4o":       "gpt-4o",
	"gpt-4o-mini":  "gpt-4o-mini",
	"gpt-4.1-mini": "gpt-4.1-mini",
}

// OpenAIProvider serves chat completions and Whisper transcription from
// OpenAI or any API that speaks its protocol.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	transcriber string
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	cfg.Model = resolveModel(cfg.Model, openaiModels)
	return newOpenAIProviderRaw(cfg, nil)
}

// newOpenAIProviderRaw uses cfg.Model as given. httpClient may be nil.
func newOpenAIProviderRaw(cfg OpenAIConfig, httpClient openai.HTTPDoer) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		conf.HTTPClient = httpClient
	}
	p := &OpenAIProvider{
		client:      openai.NewClientWithConfig(conf),
		model:       cfg.Model,
		transcriber: cfg.TranscriptionModel,
	}
	if p.transcriber == "" {
		p.transcriber = openai.Whisper1
	}
	return p, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// openAIRequest builds the chat completion for req. Our schemas list every
// property as required and forbid extras, so strict mode applies.
func openAIRequest(model string, req Request) (openai.ChatCompletionRequest, error) {
	out := openai.ChatCompletionRequest{
		Model:               model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return out, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
	}
	return out, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := openAIRequest(p.model, req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("completion has no choices")}
	}

	choice := resp.Choices[0]
	raw := json.RawMessage(choice.Message.Content)
	stop := "end"
	if choice.FinishReason == openai.FinishReasonLength {
		stop = "max_tokens"
		if req.Schema != nil {
			return nil, &ErrMaxTokensExceeded{Content: raw}
		}
	}
	content, err := decodeStructured(req.Schema, raw)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: stop,
	}, nil
}

// Transcribe sends audio to the speech-to-text endpoint. filename's
// extension tells the API the container format.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.transcriber,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return nil, mapOpenAIError(ctx, err)
	}
	return &Transcription{Text: resp.Text, Model: p.transcriber}, nil
}

// mapOpenAIError classifies by HTTP status. APIError carries error bodies
// in OpenAI's format; RequestError covers everything else.
func mapOpenAIError(ctx context.Context, err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		status int
	)
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return classifyStatus(ctx, status, err)
}
