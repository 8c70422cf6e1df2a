package peel

import (
	"strings"

	"github.com/edify-labs/edify/internal/tools"
)

// Response is a generated PEEL paragraph.
type Response struct {
	Content  Content  `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Content holds the four paragraph parts as markdown.
type Content struct {
	Point       string   `json:"point"`
	Evidence    string   `json:"evidence"`
	Explanation string   `json:"explanation"`
	Link        string   `json:"link"`
	Feedback    Feedback `json:"feedback"`
}

// Feedback is markdown commentary on the paragraph.
type Feedback struct {
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
}

type Metadata struct {
	Subject    string `json:"subject,omitempty"`
	Complexity string `json:"complexity,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Paragraph joins the four parts into one block of text.
func (c Content) Paragraph() string {
	return strings.Join([]string{c.Point, c.Evidence, c.Explanation, c.Link}, " ")
}

// WordCount counts whitespace-separated words in the paragraph.
func (c Content) WordCount() int {
	return len(strings.Fields(c.Paragraph()))
}

var responseSchema = tools.Object(map[string]any{
	"content": tools.Object(map[string]any{
		"point":       tools.String(),
		"evidence":    tools.String(),
		"explanation": tools.String(),
		"link":        tools.String(),
		"feedback": tools.Object(map[string]any{
			"strengths":    tools.String(),
			"improvements": tools.String(),
		}, "strengths", "improvements"),
	}, "point", "evidence", "explanation", "link", "feedback"),
	"metadata": tools.Object(map[string]any{
		"subject":    tools.String(),
		"complexity": tools.String(),
		"timestamp":  tools.String(),
	}, "timestamp"),
}, "content", "metadata")

// joinFeedback turns feedback given as a list of strings into one string
// with the items separated by blank lines.
func joinFeedback(v any) any {
	root, ok := v.(map[string]any)
	if !ok {
		return v
	}
	content, _ := root["content"].(map[string]any)
	fb, ok := content["feedback"].(map[string]any)
	if !ok {
		return v
	}
	for _, key := range []string{"strengths", "improvements"} {
		items, ok := fb[key].([]any)
		if !ok {
			continue
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				parts = nil
				break
			}
			parts = append(parts, s)
		}
		if parts != nil {
			fb[key] = strings.Join(parts, "\n\n")
		}
	}
	return root
}

// Markdown renders the paragraph parts and feedback under headings.
func Markdown(r *Response, topic string) string {
	c := r.Content
	var b strings.Builder
	b.WriteString("# " + topic + "\n\n")
	if m := r.Metadata; m.Subject != "" || m.Complexity != "" {
		if m.Subject != "" {
			b.WriteString("**Subject:** " + m.Subject + "  \n")
		}
		if m.Complexity != "" {
			b.WriteString("**Complexity:** " + m.Complexity + "  \n")
		}
		b.WriteString("\n")
	}
	for _, part := range []struct{ title, body string }{
		{"Point", c.Point},
		{"Evidence", c.Evidence},
		{"Explanation", c.Explanation},
		{"Link", c.Link},
	} {
		b.WriteString("## " + part.title + "\n\n" + strings.TrimSpace(part.body) + "\n\n")
	}
	b.WriteString("## Feedback\n\n")
	b.WriteString("### Strengths\n\n" + strings.TrimSpace(c.Feedback.Strengths) + "\n\n")
	b.WriteString("### Areas for Improvement\n\n" + strings.TrimSpace(c.Feedback.Improvements) + "\n")
	return b.String()
}
