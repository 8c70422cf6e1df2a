// Package prompts refines a teacher's discussion prompt into several
// versions pitched at different levels of Bloom's taxonomy.
package prompts

import (
	"net/url"
	"strings"

	"github.com/edify-labs/edify/internal/tools"
)

// Slug identifies the tool.
const Slug = "prompt-generator"

// FocusAreas are the choices offered on the form.
var FocusAreas = []string{
	"Critical Thinking",
	"Problem Solving",
	"Creativity",
	"Analysis",
	"Evaluation",
	"Communication",
	"Collaboration",
	"Reflection",
}

// Input is the API request.
type Input struct {
	OriginalPrompt string   `json:"originalPrompt"`
	FocusAreas     []string `json:"focusAreas"`
}

func (in *Input) Validate() error {
	var c tools.Checker
	c.Check(tools.Len(strings.TrimSpace(in.OriginalPrompt)) >= 1, "originalPrompt", "Original prompt is required")
	c.Check(tools.Len(in.OriginalPrompt) <= 500, "originalPrompt", "Original prompt must be at most 500 characters")
	c.Check(len(in.FocusAreas) >= 1, "focusAreas", "At least one focus area is required")
	return c.Err()
}

// Form is the web form submission.
type Form struct {
	OriginalPrompt string
	FocusAreas     []string
	Consent        bool
}

func ParseForm(v url.Values) Form {
	return Form{
		OriginalPrompt: strings.TrimSpace(v.Get("originalPrompt")),
		FocusAreas:     tools.FormList(v, "focusAreas"),
		Consent:        tools.FormBool(v, "consent"),
	}
}

func (f Form) Validate() error {
	var c tools.Checker
	c.Check(tools.Len(f.OriginalPrompt) >= 5, "originalPrompt", "Original prompt must be at least 5 characters")
	c.Check(f.Consent, "consent", "You must agree to the consent statement")
	return c.Err()
}

func decodeForm(v url.Values) (tools.Input, error) {
	f := ParseForm(v)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	in := &Input{OriginalPrompt: f.OriginalPrompt, FocusAreas: f.FocusAreas}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}
