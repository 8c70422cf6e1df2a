// Package lessonplan generates timed lesson plans, renders them as markdown
// and parses that markdown back into a view model for the web UI.
package lessonplan

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/edify-labs/edify/internal/tools"
)

// Slug identifies the tool.
const Slug = "lesson-planner"

// Allowed enum values.
var (
	ActivityTypes     = []string{"discussion", "analysis", "debate", "case study", "group work"}
	QuestionLevels    = []string{"knowledge", "comprehension", "application", "analysis", "synthesis", "evaluation"}
	LinkSubjects      = []string{"Economics", "Geography", "Politics", "History", "Other"}
	yearGroupPattern  = regexp.MustCompile(`^(Year\s\d{1,2}|Grade\s\d{1,2})$`)
	lowerYearGroupPat = regexp.MustCompile(`(?i)^year\s+(\d+)$`)
)

// Input is the generation request accepted by the API.
type Input struct {
	Topic                string                `json:"topic"`
	Subject              string                `json:"subject,omitempty"`
	YearGroup            string                `json:"yearGroup,omitempty"`
	Duration             int                   `json:"duration"`
	Objectives           []string              `json:"objectives"`
	Activities           []Activity            `json:"activities"`
	AssessmentQuestions  []AssessmentQuestion  `json:"assessmentQuestions"`
	CrossCurricularLinks []CrossCurricularLink `json:"crossCurricularLinks,omitempty"`
}

// Activity is a requested activity.
type Activity struct {
	Type            string        `json:"type"`
	Description     string        `json:"description"`
	Materials       []string      `json:"materials,omitempty"`
	Duration        *int          `json:"duration,omitempty"`
	Differentiation *NeedsSupport `json:"differentiation,omitempty"`
}

// NeedsSupport flags the learning needs an activity must accommodate.
type NeedsSupport struct {
	Dyslexia          bool `json:"dyslexia,omitempty"`
	ADHD              bool `json:"adhd,omitempty"`
	ASD               bool `json:"asd,omitempty"`
	VisualImpairment  bool `json:"visualImpairment,omitempty"`
	HearingImpairment bool `json:"hearingImpairment,omitempty"`
}

// AssessmentQuestion is a requested question at a Bloom level.
type AssessmentQuestion struct {
	Level         string `json:"level"`
	Question      string `json:"question"`
	ExampleAnswer string `json:"exampleAnswer,omitempty"`
}

// CrossCurricularLink is a requested link to another subject.
type CrossCurricularLink struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// Validate checks the input bounds and enums.
func (in *Input) Validate() error {
	var c tools.Checker
	c.Check(tools.Len(in.Topic) >= 1, "topic", "Topic is required")
	c.Check(tools.Len(in.Topic) <= 100, "topic", "Topic is too long")
	if in.YearGroup != "" {
		c.Check(yearGroupPattern.MatchString(in.YearGroup), "yearGroup", "Year group format is invalid")
	}
	c.Check(in.Duration >= 1, "duration", "Duration must be at least 1 minute")
	c.Check(in.Duration <= 300, "duration", "Duration cannot exceed 300 minutes")

	c.Check(len(in.Objectives) > 0, "objectives", "At least one objective is required")
	for _, o := range in.Objectives {
		c.Check(o != "", "objectives", "Objective cannot be empty")
	}

	c.Check(len(in.Activities) > 0, "activities", "At least one activity is required")
	for _, a := range in.Activities {
		c.Check(tools.OneOf(a.Type, ActivityTypes...), "activities.type", "Invalid activity type")
		c.Check(a.Description != "", "activities.description", "Activity description cannot be empty")
		if a.Duration != nil {
			c.Check(*a.Duration >= 1, "activities.duration", "Activity duration must be at least 1 minute")
		}
	}

	c.Check(len(in.AssessmentQuestions) > 0, "assessmentQuestions", "At least one assessment question is required")
	for _, q := range in.AssessmentQuestions {
		c.Check(tools.OneOf(q.Level, QuestionLevels...), "assessmentQuestions.level", "Invalid question level")
		c.Check(q.Question != "", "assessmentQuestions.question", "Question cannot be empty")
	}

	for _, l := range in.CrossCurricularLinks {
		c.Check(tools.OneOf(l.Subject, LinkSubjects...), "crossCurricularLinks.subject", "Invalid subject")
		c.Check(l.Description != "", "crossCurricularLinks.description", "Cross-curricular link description cannot be empty")
	}
	return c.Err()
}

// wantsSupport reports whether any activity asks for differentiation, which
// switches on the Differentiation & SEN section of the markdown.
func (in *Input) wantsSupport() bool {
	for _, a := range in.Activities {
		if a.Differentiation != nil {
			return true
		}
	}
	return false
}

func (in *Input) needsAccessibleMaterials() bool {
	for _, a := range in.Activities {
		if d := a.Differentiation; d != nil && (d.VisualImpairment || d.HearingImpairment) {
			return true
		}
	}
	return false
}

// Form option values.
var (
	DifferentiationOptions = []Option{
		{ID: "higher", Label: "Higher Ability"},
		{ID: "lower", Label: "Lower Ability"},
		{ID: "esl", Label: "ESL"},
	}
	SENOptions = []Option{
		{ID: "visual", Label: "Visual Impairment"},
		{ID: "hearing", Label: "Hearing Impairment"},
		{ID: "dyslexia", Label: "Dyslexia"},
		{ID: "autism", Label: "Autism"},
		{ID: "adhd", Label: "ADHD"},
	}
)

// Option is a selectable form choice.
type Option struct {
	ID    string
	Label string
}

// Form is the web form submission.
type Form struct {
	LessonTopic           string
	Subject               string
	LearningObjectives    string
	YearGroup             string
	Duration              int
	EnableDifferentiation bool
	Differentiation       []string
	EnableSEN             bool
	SENConsiderations     []string
	Consent               bool
}

// ParseForm reads a Form from posted values.
func ParseForm(v url.Values) Form {
	return Form{
		LessonTopic:           strings.TrimSpace(v.Get("lessonTopic")),
		Subject:               strings.TrimSpace(v.Get("subject")),
		LearningObjectives:    strings.TrimSpace(v.Get("learningObjectives")),
		YearGroup:             strings.TrimSpace(v.Get("yearGroup")),
		Duration:              tools.FormInt(v, "duration"),
		EnableDifferentiation: tools.FormBool(v, "enableDifferentiation"),
		Differentiation:       tools.FormList(v, "differentiation"),
		EnableSEN:             tools.FormBool(v, "enableSEN"),
		SENConsiderations:     tools.FormList(v, "senConsiderations"),
		Consent:               tools.FormBool(v, "consent"),
	}
}

// Validate checks the form fields; errors are keyed by form field name.
func (f Form) Validate() error {
	var c tools.Checker
	c.Check(tools.Len(f.LessonTopic) >= 5, "lessonTopic", "Lesson topic must be at least 5 characters")
	c.Check(tools.Len(f.Subject) >= 2, "subject", "Subject must be at least 2 characters")
	c.Check(tools.Len(f.LearningObjectives) >= 5, "learningObjectives", "Learning objectives must be at least 5 characters")
	c.Check(f.YearGroup != "", "yearGroup", "Please select a year group")
	c.Check(f.Duration >= 5, "duration", "Duration must be at least 5 minutes")
	c.Check(f.Duration <= 60, "duration", "Duration must be at most 60 minutes")
	c.Check(f.Consent, "consent", "You must agree to the consent statement")
	return c.Err()
}

// FormatYearGroup capitalises "year 7" style values.
func FormatYearGroup(yg string) string {
	return lowerYearGroupPat.ReplaceAllString(yg, "Year $1")
}

var objectiveSplit = regexp.MustCompile(`[\n,]+`)

// Input maps the form onto an API input with one default discussion
// activity, a default knowledge question and a placeholder link.
func (f Form) Input() *Input {
	var objectives []string
	for _, o := range objectiveSplit.Split(f.LearningObjectives, -1) {
		if o = strings.TrimSpace(o); o != "" {
			objectives = append(objectives, o)
		}
	}

	mainDuration := int(float64(f.Duration)*0.6 + 0.5)
	activity := Activity{
		Type:        "discussion",
		Description: "Main lesson activity",
		Duration:    &mainDuration,
		Materials:   []string{"Textbook", "Worksheets", "Digital resources"},
	}
	if f.EnableDifferentiation || f.EnableSEN {
		has := func(id string) bool { return tools.OneOf(id, f.SENConsiderations...) }
		activity.Differentiation = &NeedsSupport{
			Dyslexia:          has("dyslexia"),
			ADHD:              has("adhd"),
			ASD:               has("autism"),
			VisualImpairment:  has("visual"),
			HearingImpairment: has("hearing"),
		}
	}

	return &Input{
		Topic:      f.LessonTopic,
		Subject:    f.Subject,
		YearGroup:  FormatYearGroup(f.YearGroup),
		Duration:   f.Duration,
		Objectives: objectives,
		Activities: []Activity{activity},
		AssessmentQuestions: []AssessmentQuestion{
			{Level: "knowledge", Question: "What are the key concepts of this lesson?"},
		},
		CrossCurricularLinks: []CrossCurricularLink{
			{Subject: "Other", Description: "Cross-curricular connections"},
		},
	}
}

func decodeJSON(body []byte) (tools.Input, error) {
	in, err := tools.DecodeJSON(body, &Input{})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func decodeForm(v url.Values) (tools.Input, error) {
	f := ParseForm(v)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	in := f.Input()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}
