// Package tools defines the contract every AI tool implements and the
// Runner that executes them on behalf of a user.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/llm"
)

// ErrUnknownTool is returned for a slug with no registered implementation.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is one generator: it decodes and validates input, then runs the
// model call and any tool-specific post-processing.
type Tool interface {
	Slug() string
	// DecodeJSON parses an API request body. Invalid input yields *ValidationError.
	DecodeJSON(body []byte) (Input, error)
	// DecodeForm parses a submitted web form. Invalid input yields *ValidationError.
	DecodeForm(form url.Values) (Input, error)
	// Generate runs the tool. The returned Output may be non-nil alongside an
	// error when tokens were spent before the failure.
	Generate(ctx context.Context, c *ai.Client, in Input) (*Output, error)
}

// Input is a decoded tool request.
type Input interface {
	Validate() error
}

// Output is a successful tool result.
type Output struct {
	Data     any       `json:"data"`
	Markdown string    `json:"markdown,omitempty"`
	Usage    llm.Usage `json:"usage"`
	Model    string    `json:"model,omitempty"`
}

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of an input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Field == "" {
			parts[i] = f.Message
			continue
		}
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// For returns the first message recorded for field, or "".
func (e *ValidationError) For(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Checker accumulates field failures.
type Checker struct {
	fields []FieldError
}

// Check records msg against field when ok is false.
func (c *Checker) Check(ok bool, field, msg string) {
	if !ok {
		c.fields = append(c.fields, FieldError{Field: field, Message: msg})
	}
}

// Err returns nil or a *ValidationError with every recorded failure.
func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

// OneOf reports whether v is one of allowed.
func OneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Len returns the rune length of s.
func Len(s string) int { return len([]rune(s)) }

// DecodeJSON unmarshals body into in and validates it.
func DecodeJSON[T Input](body []byte, in T) (T, error) {
	if err := json.Unmarshal(body, in); err != nil {
		var zero T
		return zero, &ValidationError{Fields: []FieldError{{Message: fmt.Sprintf("malformed JSON: %v", err)}}}
	}
	if err := in.Validate(); err != nil {
		var zero T
		return zero, err
	}
	return in, nil
}

// FormBool reads a checkbox.
func FormBool(form url.Values, key string) bool {
	switch strings.ToLower(form.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// FormInt reads an integer field; blank or malformed values read as 0.
func FormInt(form url.Values, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(form.Get(key)))
	if err != nil {
		return 0
	}
	return n
}

// FormList returns the non-blank values submitted for key.
func FormList(form url.Values, key string) []string {
	var out []string
	for _, v := range form[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
