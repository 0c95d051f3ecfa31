package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps the short names accepted in MINDSYNC_ANTHROPIC_MODEL
// to dated model IDs.
var anthropicModels = map[string]string{
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"claude-sonnet": "claude-sonnet-4-5-20250929",
	"claude-opus":   "claude-opus-4-1-20250805",
}

// AnthropicProvider serves Generate from the Messages API. It cannot
// transcribe; voice chat needs a provider with an audio endpoint.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider disables the SDK's own retries because WithRetry
// owns that policy. Extra opts are for tests.
func NewAnthropicProvider(cfg AnthropicConfig, opts ...option.RequestOption) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	return &AnthropicProvider{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  resolveModel(cfg.Model, anthropicModels),
	}, nil
}

func (p *AnthropicProvider) ModelID() string { return p.model }

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	msg, err := p.client.Messages.New(ctx, anthropicParams(p.model, req))
	if err != nil {
		return nil, mapAnthropicError(ctx, err)
	}

	text := anthropicText(msg)
	truncated := msg.StopReason == anthropic.StopReasonMaxTokens
	switch {
	case truncated && req.Schema != nil:
		return nil, &ErrMaxTokensExceeded{Content: text}
	case len(text) == 0:
		return nil, &ErrInvalidResponse{Err: errors.New("reply has no text blocks")}
	}
	if text, err = decodeStructured(req.Schema, text); err != nil {
		return nil, err
	}

	resp := &Response{
		Content:    text,
		Model:      string(msg.Model),
		StopReason: "end",
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
	resp.Usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	if truncated {
		resp.StopReason = "max_tokens"
	}
	return resp, nil
}

func anthropicParams(model string, req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  make([]anthropic.MessageParam, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{
				Schema: req.Schema.Definition,
			},
		}
	}
	return params
}

// anthropicText joins the text blocks of a reply.
func anthropicText(msg *anthropic.Message) json.RawMessage {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return json.RawMessage(b.String())
}

func mapAnthropicError(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	status := 0
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	return classifyStatus(ctx, status, err)
}
