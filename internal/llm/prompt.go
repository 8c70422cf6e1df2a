package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var promptFuncs = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
	"inc":   func(i int) int { return i + 1 },
	"bullets": func(items []string) string {
		var b strings.Builder
		for _, it := range items {
			b.WriteString("- ")
			b.WriteString(it)
			b.WriteByte('\n')
		}
		return strings.TrimRight(b.String(), "\n")
	},
}

// Prompt is a parsed prompt template.
type Prompt struct {
	tmpl *template.Template
}

// MustPrompt parses src and panics on error. Prompts are package-level
// constants, so a parse failure is a programming error.
func MustPrompt(name, src string) *Prompt {
	return &Prompt{tmpl: template.Must(template.New(name).Funcs(promptFuncs).Option("missingkey=error").Parse(src))}
}

// Render executes the prompt with data and trims surrounding whitespace.
func (p *Prompt) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", p.tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// RenderTemplate parses and executes a one-off prompt template.
func RenderTemplate(name, src string, data any) (string, error) {
	t, err := template.New(name).Funcs(promptFuncs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return (&Prompt{tmpl: t}).Render(data)
}
