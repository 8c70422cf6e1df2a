// Package markdown renders generated markdown as sanitised HTML.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to HTML. Raw HTML in the source is passed
// through goldmark and then cleaned by the sanitiser, so the class names
// emitted by the lesson plan generator survive while scripts do not.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a Renderer with GitHub flavoured markdown enabled.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("div", "span", "section", "table", "td", "th")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
	}
}

// Render converts src, returning the sanitised HTML.
func (r *Renderer) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

var std = New()

// ToHTML renders src with the default Renderer. Conversion failures render
// as an empty string.
func ToHTML(src string) template.HTML {
	out, err := std.Render(src)
	if err != nil {
		return ""
	}
	return out
}
