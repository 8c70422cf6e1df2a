package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/tools"
)

const systemPrompt = `You are a critical thinking prompt generator for educators.
Generate exactly 5 refined versions of the input prompt that encourage deeper thinking.
Consider the provided grade level, subject, and skill level in your response.
Your response must match this exact JSON structure:
{
  "refinedPrompts": [
    {
      "promptText": "The actual prompt text",
      "explanation": {
        "explanation": "Detailed explanation of the prompt's purpose",
        "complexityLevel": {
          "refinedLevel": "One of ['Foundational', 'Intermediate', 'Advanced', 'Expert', 'Master']",
          "bloomsLevel": "One of ['Remember', 'Understand', 'Apply', 'Analyse', 'Evaluate', 'Create']"
        },
        "focusAreas": ["Array", "of", "specific", "learning", "focus", "areas"]
      }
    }
  ]
}
Use UK english only and do not use convoluted language.`

const schemaDescription = `The response must conform to the following structure:
{
  refinedPrompts: [
    {
      promptText: string (the refined prompt text),
      explanation: {
        explanation: string (detailed explanation of the prompt's purpose and educational value),
        complexityLevel: {
          refinedLevel: string (one of: "Foundational", "Intermediate", "Advanced", "Expert", "Master"),
          bloomsLevel: string (one of: "Remember", "Understand", "Apply", "Analyse", "Evaluate", "Create")
        },
        focusAreas: string[] (array of specific learning focus areas for this prompt)
      }
    }
  ] (array of 5 refined prompts)
}`

var userPrompt = llm.MustPrompt("prompt-generator", `
Create 5 refined versions of this educational prompt that encourage deeper critical thinking.

Original Prompt: {{.OriginalPrompt}}

Focus Areas: {{join .FocusAreas ", "}}

Requirements:
1. Each refined prompt should be clear, concise, and academically rigorous
2. Vary the complexity across different Bloom's taxonomy levels
3. Each prompt should include a detailed explanation of its purpose and intended learning outcomes
4. Ensure prompts encourage critical thinking appropriate for classroom discussion
5. Make sure each prompt focuses on the requested areas: {{join .FocusAreas ", "}}

Please provide 5 distinct versions that vary in approach and complexity.
`)

// Tool is the prompt generator.
type Tool struct{}

func New() *Tool { return &Tool{} }

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
		return nil, fmt.Errorf("prompts: unexpected input %T", in)
	}
	prompt, err := userPrompt.Render(input)
	if err != nil {
		return nil, err
	}

	res, err := ai.Generate[json.RawMessage](ctx, c, ai.Call{
		Name:              Slug,
		SystemPrompt:      systemPrompt,
		SchemaDescription: schemaDescription,
		UserPrompt:        prompt,
		Schema:            responseSchema,
	})
	if err != nil {
		return nil, err
	}

	out := &tools.Output{Usage: res.Usage, Model: res.Model}
	r, err := unwrap(res.Response, input.OriginalPrompt)
	if err != nil {
		return out, err
	}
	out.Data = r
	out.Markdown = Markdown(r)
	return out, nil
}
