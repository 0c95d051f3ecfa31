// Package llm talks to the hosted language models behind the tutor. Each
// vendor SDK sits behind Provider; decorators add retries and a request
// log, and schemas turn free-form replies into validated JSON.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one reply per call.
type Provider interface {
	// Generate runs req. With req.Schema set, Response.Content is a JSON
	// object that satisfies the schema; otherwise it is the reply text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the model requests are sent to.
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured output, using the vendor's native JSON
	// mode where it has one. Replies are validated against it either way.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the vendor default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema, e.g. the shape of a vocabulary analysis.
type Schema struct {
	// Name is kebab-case; it doubles as the vendor-side schema name and as
	// the cache key for the compiled validator.
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is what the vendor reports having used, which may be more
	// specific than ModelID.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel expands a short alias such as "claude-haiku" to a model ID.
// Anything not in models is assumed to be an ID already.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
