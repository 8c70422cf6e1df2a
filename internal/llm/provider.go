// Package llm talks to large-language-model APIs. Each provider turns a
// Request into one completion and maps vendor failures onto the error types in
// errors.go. Providers never retry.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is implemented by every model backend.
type Provider interface {
	// Generate sends one prompt and returns the model output. When the
	// request asks for JSON the Content is the raw JSON text as returned by
	// the model; validation is the caller's job.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Tool calls send a single user message.
	Messages []Message

	// Schema, when set, asks the provider for its native structured output
	// mode constrained to this schema.
	Schema *Schema

	// JSONMode asks for a JSON object without a native schema constraint.
	// The schema is then described in the system prompt instead.
	JSONMode bool

	MaxTokens   int
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a role the providers understand.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies the schema in caches and provider payloads. Kebab-case.
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any

	// Strict enables OpenAI strict mode, which needs every object to list all
	// properties as required and forbid additional ones.
	Strict bool
}

// Response holds the LLM's output.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalised to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Add returns the sum of two usage records.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		TotalTokens:  u.TotalTokens + o.TotalTokens,
	}
}

// StripCodeFence removes a surrounding markdown code fence such as ```json.
// Models asked for bare JSON still wrap it now and then.
func StripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		return s
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through unchanged so full model IDs can be configured directly.
func resolveModel(name, fallback string, models map[string]string) string {
	if name == "" {
		name = fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
