// Package peel generates Point, Evidence, Explanation, Link paragraphs with
// feedback on the writing.
package peel

import (
	"errors"
	"net/url"
	"strings"

	"github.com/edify-labs/edify/internal/tools"
)

// Slug identifies the tool.
const Slug = "peel-generator"

// Allowed values.
var (
	Complexities = []string{"beginner", "intermediate", "advanced"}
	Tones        = []string{"formal", "academic", "explanatory"}
	Audiences    = []string{"key-stage-3", "gcse", "a-level"}
)

// Input is the API request.
type Input struct {
	Topic          string     `json:"topic"`
	Subject        string     `json:"subject,omitempty"`
	Complexity     string     `json:"complexity,omitempty"`
	Tone           string     `json:"tone,omitempty"`
	Audience       string     `json:"audience,omitempty"`
	WordCountRange *WordRange `json:"wordCountRange,omitempty"`
}

// WordRange bounds the paragraph length.
type WordRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (in *Input) Validate() error {
	var c tools.Checker
	c.Check(tools.Len(in.Topic) >= 5, "topic", "Topic is required")
	if in.Complexity != "" {
		c.Check(tools.OneOf(in.Complexity, Complexities...), "complexity", "Complexity must be beginner, intermediate or advanced")
	}
	if r := in.WordCountRange; r != nil {
		c.Check(r.Min >= 100, "wordCountRange.min", "Minimum word count must be at least 100")
		c.Check(r.Max <= 1000, "wordCountRange.max", "Maximum word count must be at most 1000")
	}
	return c.Err()
}

// Form is the web form submission.
type Form struct {
	Topic           string
	SubjectArea     string
	ComplexityLevel string
	Tone            string
	TargetAudience  string
	MinWordCount    int
	MaxWordCount    int
	Consent         bool
}

// ParseForm reads a Form from posted values.
func ParseForm(v url.Values) Form {
	return Form{
		Topic:           strings.TrimSpace(v.Get("topic")),
		SubjectArea:     strings.TrimSpace(v.Get("subjectArea")),
		ComplexityLevel: v.Get("complexityLevel"),
		Tone:            v.Get("tone"),
		TargetAudience:  v.Get("targetAudience"),
		MinWordCount:    tools.FormInt(v, "minWordCount"),
		MaxWordCount:    tools.FormInt(v, "maxWordCount"),
		Consent:         tools.FormBool(v, "consent"),
	}
}

func (f Form) Validate() error {
	var c tools.Checker
	c.Check(tools.Len(f.Topic) >= 3, "topic", "Topic must be at least 3 characters")
	c.Check(tools.Len(f.SubjectArea) >= 2, "subjectArea", "Subject area must be at least 2 characters")
	c.Check(tools.OneOf(f.ComplexityLevel, Complexities...), "complexityLevel", "Please select a complexity level")
	c.Check(tools.OneOf(f.Tone, Tones...), "tone", "Please select a tone")
	c.Check(tools.OneOf(f.TargetAudience, Audiences...), "targetAudience", "Please select a target audience")
	c.Check(f.MinWordCount >= 50, "minWordCount", "Minimum word count must be at least 50")
	c.Check(f.MinWordCount <= 500, "minWordCount", "Minimum word count must be at most 500")
	c.Check(f.MaxWordCount >= 100, "maxWordCount", "Maximum word count must be at least 100")
	c.Check(f.MaxWordCount <= 1000, "maxWordCount", "Maximum word count must be at most 1000")
	c.Check(f.MaxWordCount > f.MinWordCount, "maxWordCount", "Maximum word count must be greater than minimum word count")
	c.Check(f.Consent, "consent", "You must agree to the consent statement")
	return c.Err()
}

// Input maps the form onto the API request.
func (f Form) Input() *Input {
	return &Input{
		Topic:          f.Topic,
		Subject:        f.SubjectArea,
		Complexity:     f.ComplexityLevel,
		Tone:           f.Tone,
		Audience:       f.TargetAudience,
		WordCountRange: &WordRange{Min: f.MinWordCount, Max: f.MaxWordCount},
	}
}

// formFields maps API field names back onto the form.
var formFields = map[string]string{
	"topic":              "topic",
	"complexity":         "complexityLevel",
	"wordCountRange.min": "minWordCount",
	"wordCountRange.max": "maxWordCount",
}

func decodeForm(v url.Values) (tools.Input, error) {
	f := ParseForm(v)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	in := f.Input()
	if err := in.Validate(); err != nil {
		var verr *tools.ValidationError
		if errors.As(err, &verr) {
			for i, fe := range verr.Fields {
				if name, ok := formFields[fe.Field]; ok {
					verr.Fields[i].Field = name
				}
			}
		}
		return nil, err
	}
	return in, nil
}
