package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/store"
)

// NewProvider builds the configured vendor provider and wraps it so that
// callers get retries and every attempt lands in the request log:
//
//	RetryProvider → LoggingProvider → vendor
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		vendor Provider
		err    error
	)
	switch cfg.Provider {
	case "anthropic":
		vendor, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		vendor, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		vendor, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		vendor, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		vendor = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", cfg.Provider, err)
	}
	return WithRetry(WithLogging(vendor, eventRepo, logger), cfg.Retry), nil
}
