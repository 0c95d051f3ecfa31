package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects and configures the model backend the tutor talks to.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter"
	// or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one tutor operation, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string // alias from anthropicModels or a full model ID
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // any OpenAI-compatible endpoint

	// TranscriptionModel serves the voice chat route.
	TranscriptionModel string
}

type GeminiConfig struct {
	APIKey string
	Model  string // alias from geminiModels or a full model ID
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string // "vendor/model" as listed by OpenRouter
	BaseURL string
}

// RetryConfig is the backoff schedule of RetryProvider.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses the cheapest model of each vendor that handles
// vocabulary extraction well.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini", TranscriptionModel: "whisper-1"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from MINDSYNC_* variables over the
// defaults. An unparsable MINDSYNC_LLM_TIMEOUT keeps the default.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	for key, dst := range map[string]*string{
		"MINDSYNC_LLM_PROVIDER":               &cfg.Provider,
		"MINDSYNC_ANTHROPIC_API_KEY":          &cfg.Anthropic.APIKey,
		"MINDSYNC_ANTHROPIC_MODEL":            &cfg.Anthropic.Model,
		"MINDSYNC_OPENAI_API_KEY":             &cfg.OpenAI.APIKey,
		"MINDSYNC_OPENAI_MODEL":               &cfg.OpenAI.Model,
		"MINDSYNC_OPENAI_BASE_URL":            &cfg.OpenAI.BaseURL,
		"MINDSYNC_OPENAI_TRANSCRIPTION_MODEL": &cfg.OpenAI.TranscriptionModel,
		"MINDSYNC_GEMINI_API_KEY":             &cfg.Gemini.APIKey,
		"MINDSYNC_GEMINI_MODEL":               &cfg.Gemini.Model,
		"MINDSYNC_OPENROUTER_API_KEY":         &cfg.OpenRouter.APIKey,
		"MINDSYNC_OPENROUTER_MODEL":           &cfg.OpenRouter.Model,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if d, err := time.ParseDuration(os.Getenv("MINDSYNC_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// vendorKeys lists the vendors' own API key variables in the order
// DiscoverConfig tries them.
var vendorKeys = []struct {
	env, provider string
	set           func(*Config, string)
}{
	{"GEMINI_API_KEY", "gemini", func(c *Config, k string) { c.Gemini.APIKey = k }},
	{"OPENAI_API_KEY", "openai", func(c *Config, k string) { c.OpenAI.APIKey = k }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, k string) { c.Anthropic.APIKey = k }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config, k string) { c.OpenRouter.APIKey = k }},
}

// DiscoverConfig picks the first provider whose vendor API key variable
// is set, so a developer with e.g. OPENAI_API_KEY exported needs no
// MindSync-specific setup.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendorKeys {
		if k := os.Getenv(v.env); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = v.provider
			v.set(&cfg, k)
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("MINDSYNC_%s_API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
