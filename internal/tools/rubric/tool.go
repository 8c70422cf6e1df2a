package rubric

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/tools"
)

// Tool is the rubric generator.
type Tool struct {
	now   func() time.Time
	newID func() string
}

// New returns the rubric generator.
func New() *Tool {
	return &Tool{now: time.Now, newID: uuid.NewString}
}

func (t *Tool) Slug() string { return Slug }

func (t *Tool) DecodeJSON(body []byte) (tools.Input, error) {
	in, err := tools.DecodeJSON(body, &Input{})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (t *Tool) DecodeForm(form url.Values) (tools.Input, error) {
	in := ParseForm(form)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func (t *Tool) Generate(ctx context.Context, c *ai.Client, in tools.Input) (*tools.Output, error) {
	input, ok := in.(*Input)
	if !ok {
		return nil, fmt.Errorf("rubric: unexpected input %T", in)
	}
	prompt, err := renderPrompt(input)
	if err != nil {
		return nil, err
	}

	res, err := ai.Generate[Response](ctx, c, ai.Call{
		Name:              Slug,
		SystemPrompt:      systemPrompt,
		SchemaDescription: schemaDescription,
		UserPrompt:        prompt,
		Schema:            responseSchema,
		Normalize:         t.normalize,
	})
	if err != nil {
		return nil, err
	}
	return &tools.Output{
		Data:     &res.Response,
		Markdown: Markdown(&res.Response),
		Usage:    res.Usage,
		Model:    res.Model,
	}, nil
}

// normalize fills the bands the model left out with empty cells and
// replaces a missing or malformed id, version or timestamp.
func (t *Tool) normalize(v any) any {
	root, ok := v.(map[string]any)
	if !ok {
		return v
	}
	data, ok := root["data"].(map[string]any)
	if !ok {
		return v
	}

	if id, _ := data["id"].(string); uuid.Validate(id) != nil {
		data["id"] = t.newID()
	}
	if s, _ := data["version"].(string); s == "" {
		data["version"] = "1.0"
	}
	if s, _ := data["createdAt"].(string); s == "" {
		data["createdAt"] = t.now().UTC().Format(time.RFC3339)
	}

	grid, _ := data["rubric"].(map[string]any)
	criteria, _ := grid["criteria"].([]any)
	for _, c := range criteria {
		crit, ok := c.(map[string]any)
		if !ok {
			continue
		}
		levels, ok := crit["levels"].(map[string]any)
		if !ok {
			levels = map[string]any{}
			crit["levels"] = levels
		}
		for _, l := range allLevels {
			if levels[l.Key] == nil {
				levels[l.Key] = map[string]any{"score": float64(0), "description": "", "feedback": ""}
			}
		}
	}
	return root
}
