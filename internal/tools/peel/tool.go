package peel

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/tools"
)

// Tool is the PEEL paragraph generator.
type Tool struct {
	now func() time.Time
}

func New() *Tool { return &Tool{now: time.Now} }

func (t *Tool) Slug() string { return Slug }

func (t *Tool) DecodeJSON(body []byte) (tools.Input, error) {
	in, err := tools.DecodeJSON(body, &Input{})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (t *Tool) DecodeForm(form url.Values) (tools.Input, error) { return decodeForm(form) }

func (t *Tool) Generate(ctx context.Context, c *ai.Client, in tools.Input) (*tools.Output, error) {
	input, ok := in.(*Input)
	if !ok {
		return nil, fmt.Errorf("peel: unexpected input %T", in)
	}
	prompt, err := t.renderPrompt(input)
	if err != nil {
		return nil, err
	}

	res, err := ai.Generate[Response](ctx, c, ai.Call{
		Name:              Slug,
		SystemPrompt:      systemPrompt,
		SchemaDescription: schemaDescription,
		UserPrompt:        prompt,
		Schema:            responseSchema,
		Normalize:         joinFeedback,
	})
	if err != nil {
		return nil, err
	}
	return &tools.Output{
		Data:     &res.Response,
		Markdown: Markdown(&res.Response, input.Topic),
		Usage:    res.Usage,
		Model:    res.Model,
	}, nil
}

func (t *Tool) renderPrompt(in *Input) (string, error) {
	return userPrompt.Render(promptData{
		Input:     in,
		Timestamp: t.now().UTC().Format(time.RFC3339),
	})
}
