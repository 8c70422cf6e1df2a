// Package rubric generates assessment rubrics scaled to a key stage.
package rubric

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/edify-labs/edify/internal/tools"
)

// Slug identifies the tool.
const Slug = "rubric-generator"

// MaxCriteria is the most criteria a rubric may assess.
const MaxCriteria = 6

// maxDocument is how much of an uploaded document is sent to the model.
const maxDocument = 3000

// Choice is a selectable form value.
type Choice struct {
	Value string
	Label string
}

// Form choices.
var (
	AssignmentTypes = []Choice{
		{"analytical_essay", "Analytical Essay"},
		{"debate", "Debate"},
		{"research_project", "Research Project"},
		{"presentation", "Presentation"},
		{"other", "Other"},
	}
	KeyStages = []Choice{
		{"ks3", "Key Stage 3"},
		{"ks4", "Key Stage 4"},
		{"ks5", "Key Stage 5"},
	}
	AssessmentTypes = []Choice{
		{"teacher", "Teacher Assessment"},
		{"peer", "Peer Assessment"},
		{"self", "Self Assessment"},
	}
)

var keyStagePattern = regexp.MustCompile(`^ks[3-5]$`)

// Input is accepted both as the API body and, field for field, from the
// web form.
type Input struct {
	AssignmentType         string   `json:"assignmentType"`
	CustomAssignmentType   string   `json:"customAssignmentType,omitempty"`
	KeyStage               string   `json:"keyStage"`
	YearGroup              string   `json:"yearGroup"`
	AssessmentType         string   `json:"assessmentType"`
	Topic                  string   `json:"topic"`
	Criteria               []string `json:"criteria"`
	AdditionalInstructions string   `json:"additionalInstructions,omitempty"`
	InputMethod            string   `json:"inputMethod"`
	FileURL                string   `json:"fileUrl,omitempty"`
	FileContent            string   `json:"fileContent,omitempty"`
}

// Validate checks required fields and ranges.
func (in *Input) Validate() error {
	var c tools.Checker
	c.Check(strings.TrimSpace(in.AssignmentType) != "", "assignmentType", "Assignment type is required")
	c.Check(keyStagePattern.MatchString(in.KeyStage), "keyStage", "Key stage must be ks3, ks4, or ks5")
	yg, err := strconv.Atoi(strings.TrimSpace(in.YearGroup))
	c.Check(err == nil && yg >= 7 && yg <= 13, "yearGroup", "Year group must be between 7 and 13")
	c.Check(strings.TrimSpace(in.AssessmentType) != "", "assessmentType", "Assessment type is required")
	c.Check(strings.TrimSpace(in.Topic) != "", "topic", "Topic is required")
	c.Check(len(in.Criteria) >= 1, "criteria", "At least one criterion is required")
	c.Check(len(in.Criteria) <= MaxCriteria, "criteria", "Maximum 6 criteria allowed")
	c.Check(tools.OneOf(in.InputMethod, "text", "file"), "inputMethod", "Input method must be text or file")
	return c.Err()
}

// document returns the uploaded text cut to the prompt limit.
func (in *Input) document() string {
	r := []rune(in.FileContent)
	if len(r) <= maxDocument {
		return in.FileContent
	}
	return string(r[:maxDocument]) + "..."
}

// ParseForm reads an Input from posted values. Criteria may be posted as
// repeated fields or one per line.
func ParseForm(v url.Values) *Input {
	var criteria []string
	for _, field := range tools.FormList(v, "criteria") {
		for _, line := range strings.Split(field, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				criteria = append(criteria, line)
			}
		}
	}
	method := strings.TrimSpace(v.Get("inputMethod"))
	if method == "" {
		method = "text"
	}
	return &Input{
		AssignmentType:         strings.TrimSpace(v.Get("assignmentType")),
		CustomAssignmentType:   strings.TrimSpace(v.Get("customAssignmentType")),
		KeyStage:               strings.TrimSpace(v.Get("keyStage")),
		YearGroup:              strings.TrimSpace(v.Get("yearGroup")),
		AssessmentType:         strings.TrimSpace(v.Get("assessmentType")),
		Topic:                  strings.TrimSpace(v.Get("topic")),
		Criteria:               criteria,
		AdditionalInstructions: strings.TrimSpace(v.Get("additionalInstructions")),
		InputMethod:            method,
		FileURL:                strings.TrimSpace(v.Get("fileUrl")),
		FileContent:            v.Get("fileContent"),
	}
}
