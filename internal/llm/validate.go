package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

var printer = message.NewPrinter(language.English)

// Violation is one leaf schema failure.
type Violation struct {
	// Path is the slash-separated instance location, "/" for the root.
	Path    string
	Message string
}

func (v Violation) String() string { return v.Path + ": " + v.Message }

// ValidateJSON parses raw and validates it against schema.
// Returns *ErrInvalidResponse on failure.
func ValidateJSON(schema *Schema, raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := ValidateValue(schema, parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}

// ValidateValue validates an already decoded JSON value (the result of
// json.Unmarshal into any). A nil schema accepts everything. Validation
// failures are returned as *jsonschema.ValidationError.
func ValidateValue(schema *Schema, v any) error {
	if schema == nil {
		return nil
	}
	compiled, err := compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	return compiled.Validate(v)
}

// Violations flattens a validation error into its leaf causes in document
// order. Errors that are not schema failures yield a single root violation.
func Violations(err error) []Violation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Path: "/", Message: err.Error()}}
	}
	var out []Violation
	collectLeaves(ve, &out)
	return out
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Violation{
			Path:    "/" + strings.Join(ve.InstanceLocation, "/"),
			Message: ve.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants generic JSON values, so round-trip the Go map.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	actual, _ := schemaCache.LoadOrStore(schema.Name, compiled)
	return actual.(*jsonschema.Schema), nil
}
