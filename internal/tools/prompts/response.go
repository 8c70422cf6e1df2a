package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/tools"
)

// Enum values for a refined prompt's complexity.
var (
	RefinedLevels = []string{"Foundational", "Intermediate", "Advanced", "Expert", "Master"}
	BloomsLevels  = []string{"Remember", "Understand", "Apply", "Analyse", "Evaluate", "Create"}
)

// Response is the normalised result: the model may answer with the list
// alone or wrapped in a data envelope.
type Response struct {
	OriginalPrompt string          `json:"originalPrompt"`
	RefinedPrompts []RefinedPrompt `json:"refinedPrompts"`
	Metadata       *Metadata       `json:"metadata,omitempty"`
}

type RefinedPrompt struct {
	PromptText  string      `json:"promptText"`
	Explanation Explanation `json:"explanation"`
	Ratings     *Ratings    `json:"ratings,omitempty"`
}

type Explanation struct {
	Explanation     string          `json:"explanation"`
	ComplexityLevel ComplexityLevel `json:"complexityLevel"`
	FocusAreas      []string        `json:"focusAreas"`
}

type ComplexityLevel struct {
	RefinedLevel string `json:"refinedLevel"`
	BloomsLevel  string `json:"bloomsLevel"`
}

type Ratings struct {
	AverageRating *float64 `json:"averageRating,omitempty"`
	TotalRatings  *float64 `json:"totalRatings,omitempty"`
}

type Metadata struct {
	ProcessingTimeMs float64 `json:"processingTimeMs"`
	Version          string  `json:"version"`
	Model            string  `json:"model"`
}

var refinedPrompts = tools.Array(tools.Object(map[string]any{
	"promptText": tools.String(),
	"explanation": tools.Object(map[string]any{
		"explanation": tools.String(),
		"complexityLevel": tools.Object(map[string]any{
			"refinedLevel": tools.Enum(RefinedLevels...),
			"bloomsLevel":  tools.Enum(BloomsLevels...),
		}, "refinedLevel", "bloomsLevel"),
		"focusAreas": tools.Strings(),
	}, "explanation", "complexityLevel", "focusAreas"),
	"ratings": tools.Object(map[string]any{
		"averageRating": tools.Number(),
		"totalRatings":  tools.Number(),
	}),
}, "promptText", "explanation"), 3, 5)

var responseSchema = tools.AnyOf(
	tools.Object(map[string]any{
		"data": tools.Object(map[string]any{
			"originalPrompt": tools.String(),
			"refinedPrompts": refinedPrompts,
			"metadata": tools.Object(map[string]any{
				"processingTimeMs": tools.Number(),
				"version":          tools.String(),
				"model":            tools.String(),
			}, "processingTimeMs", "version", "model"),
		}, "originalPrompt", "refinedPrompts", "metadata"),
	}, "data"),
	tools.Object(map[string]any{
		"refinedPrompts": refinedPrompts,
	}, "refinedPrompts"),
)

// unwrap reads the refined prompts from either response shape. original
// fills in the prompt when the model did not echo it.
func unwrap(raw []byte, original string) (*Response, error) {
	r := &Response{OriginalPrompt: original}
	list := gjson.GetBytes(raw, "refinedPrompts")
	if env := gjson.GetBytes(raw, "data"); env.IsObject() {
		list = env.Get("refinedPrompts")
		if o := env.Get("originalPrompt").String(); o != "" {
			r.OriginalPrompt = o
		}
		if m := env.Get("metadata"); m.IsObject() {
			r.Metadata = &Metadata{
				ProcessingTimeMs: m.Get("processingTimeMs").Float(),
				Version:          m.Get("version").String(),
				Model:            m.Get("model").String(),
			}
		}
	}

	var err error
	if !list.IsArray() {
		err = errors.New("no refinedPrompts array")
	} else {
		err = json.Unmarshal([]byte(list.Raw), &r.RefinedPrompts)
	}
	if err != nil {
		return nil, &ai.Error{
			Status:  http.StatusInternalServerError,
			Code:    ai.CodeParse,
			Message: "Failed to parse AI response",
			Err:     err,
		}
	}
	return r, nil
}

// Markdown lists each refined prompt with its explanation and levels.
func Markdown(r *Response) string {
	var b strings.Builder
	b.WriteString("# Refined Prompts\n\n")
	if r.OriginalPrompt != "" {
		b.WriteString("**Original Prompt:** " + r.OriginalPrompt + "\n\n")
	}
	for i, p := range r.RefinedPrompts {
		fmt.Fprintf(&b, "## Prompt %d\n\n", i+1)
		b.WriteString("> " + strings.ReplaceAll(strings.TrimSpace(p.PromptText), "\n", "\n> ") + "\n\n")
		b.WriteString(strings.TrimSpace(p.Explanation.Explanation) + "\n\n")
		cl := p.Explanation.ComplexityLevel
		b.WriteString("**Complexity:** " + cl.RefinedLevel + "  \n")
		b.WriteString("**Bloom's Level:** " + cl.BloomsLevel + "\n")
		if len(p.Explanation.FocusAreas) > 0 {
			b.WriteString("\n**Focus Areas:** " + strings.Join(p.Explanation.FocusAreas, ", ") + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
