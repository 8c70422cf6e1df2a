// Package ai runs one schema-validated model call: it composes the prompt,
// calls the provider, parses and validates the JSON and decodes it into the
// caller's type. Failures come back as *Error carrying an HTTP status and a
// stable code. There are no retries.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/metrics"
)

// Response formats.
const (
	FormatJSON = "json_object"
	FormatText = "text"
)

// DefaultTemperature is used when neither the call nor the client sets one.
const DefaultTemperature = 0.7

// Options are client-wide defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	// Timeout bounds a single call. Zero means no extra deadline.
	Timeout time.Duration
	// NativeSchema forwards Call.Schema to the provider's structured
	// output mode for JSON calls. The output is validated either way.
	NativeSchema bool
}

// Client holds the provider and call defaults.
type Client struct {
	provider llm.Provider
	opts     Options
	log      *zap.Logger
}

// NewClient creates a Client.
func NewClient(p llm.Provider, opts Options, log *zap.Logger) *Client {
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{provider: p, opts: opts, log: log.Named("ai")}
}

// ModelID reports the configured model.
func (c *Client) ModelID() string { return c.provider.ModelID() }

// Call describes one generation.
type Call struct {
	// Name labels logs and metrics and keys the compiled schema cache.
	Name string

	SystemPrompt string
	// SchemaDescription is appended to the system prompt on its own line.
	SchemaDescription string
	UserPrompt        string

	// Schema is the JSON Schema the decoded output must satisfy.
	Schema map[string]any

	// ResponseFormat is FormatJSON (default) or FormatText.
	ResponseFormat string

	// Temperature overrides the client default when positive.
	Temperature float64
	MaxTokens   int

	// Normalize reshapes the decoded JSON before validation.
	Normalize func(any) any
}

// Result is a validated generation.
type Result[T any] struct {
	Response T
	Usage    llm.Usage
	Model    string
	// Raw is the validated JSON after normalisation.
	Raw json.RawMessage
}

// Generate runs call and decodes the validated output into T.
func Generate[T any](ctx context.Context, c *Client, call Call) (*Result[T], error) {
	start := time.Now()
	res, err := generate[T](ctx, c, call)
	fields := []zap.Field{
		zap.String("tool", call.Name),
		zap.String("model", c.provider.ModelID()),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		aerr := AsError(err)
		if aerr.Code == CodeCanceled {
			c.log.Info("generation canceled", fields...)
			return nil, aerr
		}
		c.log.Warn("generation failed", append(fields,
			zap.String("code", aerr.Code),
			zap.Int("status", aerr.Status),
			zap.Error(err),
		)...)
		return nil, aerr
	}
	metrics.ObserveTokens(call.Name, res.Usage.InputTokens, res.Usage.OutputTokens)
	c.log.Info("generation succeeded", append(fields,
		zap.Int("input_tokens", res.Usage.InputTokens),
		zap.Int("output_tokens", res.Usage.OutputTokens),
	)...)
	return res, nil
}

func generate[T any](ctx context.Context, c *Client, call Call) (*Result[T], error) {
	system := call.SystemPrompt
	if call.SchemaDescription != "" {
		system = system + "\n" + call.SchemaDescription
	}
	messages := []llm.Message{{Role: llm.RoleUser, Content: call.UserPrompt}}
	if err := validateMessages(system, messages); err != nil {
		return nil, err
	}

	format := call.ResponseFormat
	if format == "" {
		format = FormatJSON
	}
	temperature := c.opts.Temperature
	if call.Temperature > 0 {
		temperature = call.Temperature
	}
	maxTokens := c.opts.MaxTokens
	if call.MaxTokens > 0 {
		maxTokens = call.MaxTokens
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System:      system,
		Messages:    messages,
		JSONMode:    format == FormatJSON,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if c.opts.NativeSchema && req.JSONMode && call.Schema != nil {
		req.Schema = &llm.Schema{Name: call.Name, Definition: call.Schema}
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return nil, providerError(err)
	}
	if resp == nil {
		return nil, newError(http.StatusInternalServerError, CodeInvalidResponse, "Invalid response received from the AI service", nil)
	}
	text := strings.TrimSpace(string(resp.Content))
	if text == "" {
		return nil, newError(http.StatusInternalServerError, CodeEmptyResponse, "No response generated from AI", nil)
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		if format != FormatText {
			return nil, newError(http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON response from AI", err)
		}
		value = text
	}
	if call.Normalize != nil {
		value = call.Normalize(value)
	}

	if call.Schema != nil {
		schema := &llm.Schema{Name: call.Name, Definition: call.Schema}
		if err := llm.ValidateValue(schema, value); err != nil {
			return nil, validationError(err)
		}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, newError(http.StatusInternalServerError, CodeParse, "Failed to parse AI response", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, newError(http.StatusInternalServerError, CodeParse, "Failed to parse AI response", err)
	}

	return &Result[T]{
		Response: out,
		Usage:    resp.Usage,
		Model:    resp.Model,
		Raw:      raw,
	}, nil
}

func validateMessages(system string, messages []llm.Message) error {
	all := append([]llm.Message{{Role: llm.RoleSystem, Content: system}}, messages...)
	for _, m := range all {
		if !m.Role.Valid() {
			return newError(http.StatusBadRequest, CodeInvalidMessage, "Invalid message format", fmt.Errorf("role %q", m.Role))
		}
	}
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return newError(http.StatusBadRequest, CodeInvalidMessage, "Invalid message format", errors.New("empty user prompt"))
		}
	}
	return nil
}

func validationError(err error) *Error {
	violations := llm.Violations(err)
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = dottedPath(v.Path) + ": " + v.Message
	}
	e := newError(http.StatusBadRequest, CodeValidation, "Failed to parse AI response: "+strings.Join(parts, "; "), err)
	e.Violations = violations
	return e
}

// dottedPath turns a JSON pointer style location into dotted form.
func dottedPath(p string) string {
	return strings.ReplaceAll(strings.TrimPrefix(p, "/"), "/", ".")
}
