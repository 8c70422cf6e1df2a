package clarify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/tools"
)

// audience returns the register guidance for a level; unknown levels get
// the intermediate guidance.
func audience(level string) string {
	switch level {
	case "beginner":
		return "Explain concepts in simple terms, using basic vocabulary and clear examples. Avoid technical jargon and complex terminology."
	case "advanced":
		return "Use sophisticated terminology and complex concepts. Include detailed technical explanations and advanced theoretical frameworks."
	}
	return "Balance accessibility with depth. Use moderate technical language and provide both practical and theoretical insights."
}

func schemaText(schema map[string]any) string {
	b, _ := json.Marshal(schema["properties"])
	return string(b)
}

func systemPrompt(mode, level string) string {
	if mode == ModeChallenge {
		return "You are an AI that creates advanced analysis and challenging questions about topics. " + audience(level) +
			" Output must exactly match this JSON schema: " + schemaText(challengeSchema) +
			". Focus on thought-provoking and interdisciplinary perspectives. Use UK english only."
	}
	return "You are an AI that creates structured breakdowns of complex topics. " + audience(level) +
		" Output must exactly match this JSON schema: " + schemaText(clarifySchema) +
		". Ensure the response is detailed but accessible. Use UK english only."
}

// Tool is the clarify or challenge tool.
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

// Generate sends the topic as the user prompt with a system prompt and
// schema chosen by mode.
func (t *Tool) Generate(ctx context.Context, c *ai.Client, in tools.Input) (*tools.Output, error) {
	input, ok := in.(*Input)
	if !ok {
		return nil, fmt.Errorf("clarify: unexpected input %T", in)
	}
	call := ai.Call{
		SystemPrompt: systemPrompt(input.Mode, input.Level),
		UserPrompt:   input.Topic,
	}

	if input.Mode == ModeChallenge {
		call.Name, call.Schema = Slug+"/challenge", challengeSchema
		res, err := ai.Generate[Challenge](ctx, c, call)
		if err != nil {
			return nil, err
		}
		return &tools.Output{
			Data:     &res.Response,
			Markdown: ChallengeMarkdown(input.Topic, &res.Response),
			Usage:    res.Usage,
			Model:    res.Model,
		}, nil
	}

	call.Name, call.Schema = Slug+"/clarify", clarifySchema
	res, err := ai.Generate[Clarification](ctx, c, call)
	if err != nil {
		return nil, err
	}
	return &tools.Output{
		Data:     &res.Response,
		Markdown: ClarifyMarkdown(input.Topic, &res.Response),
		Usage:    res.Usage,
		Model:    res.Model,
	}, nil
}

func bullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("## " + title + "\n\n")
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
	b.WriteString("\n")
}

// ClarifyMarkdown renders a clarification.
func ClarifyMarkdown(topic string, r *Clarification) string {
	var b strings.Builder
	b.WriteString("# " + topic + "\n\n")
	b.WriteString("## Main Argument\n\n" + r.MainArgument + "\n\n")
	if len(r.KeyConcepts) > 0 {
		b.WriteString("## Key Concepts\n\n")
		for _, k := range r.KeyConcepts {
			b.WriteString("### " + k.Title + "\n\n" + k.Description + "\n\n")
		}
	}
	bullets(&b, "Critical Details", r.CriticalDetails)
	if len(r.ApplicationsInPractice) > 0 {
		b.WriteString("## Applications in Practice\n\n")
		for _, a := range r.ApplicationsInPractice {
			b.WriteString("- **" + a.Example + "**: " + a.Description + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ChallengeMarkdown renders a challenge.
func ChallengeMarkdown(topic string, r *Challenge) string {
	var b strings.Builder
	b.WriteString("# " + topic + "\n\n")
	if len(r.CriticalReflectionQuestions) > 0 {
		b.WriteString("## Critical Reflection Questions\n\n")
		for i, q := range r.CriticalReflectionQuestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		b.WriteString("\n")
	}
	if len(r.AdvancedConcepts) > 0 {
		b.WriteString("## Advanced Concepts\n\n")
		for _, c := range r.AdvancedConcepts {
			b.WriteString("### " + c.Concept + "\n\n" + c.Explanation + "\n\n")
		}
	}
	if len(r.InterdisciplinaryConnections) > 0 {
		b.WriteString("## Interdisciplinary Connections\n\n")
		for _, c := range r.InterdisciplinaryConnections {
			b.WriteString("- **" + c.Field + "**: " + c.Connection + "\n")
		}
		b.WriteString("\n")
	}
	bullets(&b, "Counterarguments", r.Counterarguments)
	bullets(&b, "Future Challenges", r.FutureChallenges)
	return strings.TrimRight(b.String(), "\n") + "\n"
}
