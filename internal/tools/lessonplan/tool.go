package lessonplan

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/tools"
)

// CodeDurationMismatch is reported when an option's activities do not add
// up to the requested duration.
const CodeDurationMismatch = "DURATION_MISMATCH"

// Tool is the lesson planner.
type Tool struct {
	Markdown MarkdownOptions
}

// New returns the lesson planner with default markdown options.
func New() *Tool { return &Tool{Markdown: DefaultMarkdownOptions()} }

func (t *Tool) Slug() string { return Slug }

func (t *Tool) DecodeJSON(body []byte) (tools.Input, error) { return decodeJSON(body) }

func (t *Tool) DecodeForm(form url.Values) (tools.Input, error) { return decodeForm(form) }

// Generate calls the model, checks every option's timing and renders the
// plan as markdown.
func (t *Tool) Generate(ctx context.Context, c *ai.Client, in tools.Input) (*tools.Output, error) {
	input, ok := in.(*Input)
	if !ok {
		return nil, fmt.Errorf("lessonplan: unexpected input %T", in)
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
	})
	if err != nil {
		return nil, err
	}

	plan := &res.Response
	out := &tools.Output{Data: plan, Usage: res.Usage, Model: res.Model}
	if err := CheckDuration(plan, input.Duration); err != nil {
		return out, err
	}
	out.Markdown = Markdown(plan, input.wantsSupport(), t.Markdown)
	return out, nil
}

// CheckDuration verifies that each option's starter, main activities and
// plenary sum to want minutes.
func CheckDuration(plan *Response, want int) error {
	for _, opt := range plan.LessonOptions {
		if got := opt.Total(); got != want {
			return &ai.Error{
				Status:  http.StatusBadRequest,
				Code:    CodeDurationMismatch,
				Message: "Generated lesson plan duration does not match requested duration",
				Err:     fmt.Errorf("option %d totals %d minutes, want %d", opt.OptionNumber, got, want),
			}
		}
	}
	return nil
}
