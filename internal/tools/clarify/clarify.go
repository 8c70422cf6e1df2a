// Package clarify either breaks a topic down for understanding or pushes
// it further with challenging questions, pitched at a chosen level.
package clarify

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/edify-labs/edify/internal/tools"
)

// Slug identifies the tool.
const Slug = "clarify-challenge"

// Modes.
const (
	ModeClarify   = "clarify"
	ModeChallenge = "challenge"
)

// Levels are the audience levels.
var Levels = []string{"beginner", "intermediate", "advanced"}

// Input is the API request.
type Input struct {
	Mode  string `json:"mode"`
	Level string `json:"level"`
	Topic string `json:"topic"`
}

func (in *Input) Validate() error {
	var c tools.Checker
	c.Check(tools.OneOf(in.Mode, ModeClarify, ModeChallenge), "mode", "Please select a mode")
	c.Check(tools.OneOf(in.Level, Levels...), "level", "Please select a difficulty level")
	c.Check(tools.Len(strings.TrimSpace(in.Topic)) >= 5, "topic", "Topic must be at least 5 characters")
	return c.Err()
}

func decodeForm(v url.Values) (tools.Input, error) {
	in := &Input{
		Mode:  v.Get("mode"),
		Level: v.Get("level"),
		Topic: strings.TrimSpace(v.Get("topic")),
	}
	var c tools.Checker
	var verr *tools.ValidationError
	if errors.As(in.Validate(), &verr) {
		for _, f := range verr.Fields {
			c.Check(false, f.Field, f.Message)
		}
	}
	c.Check(tools.FormBool(v, "consent"), "consent", "You must agree to the consent statement")
	if err := c.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

// Clarification breaks a topic down.
type Clarification struct {
	MainArgument           string        `json:"main_argument"`
	KeyConcepts            []KeyConcept  `json:"key_concepts"`
	CriticalDetails        []string      `json:"critical_details"`
	ApplicationsInPractice []Application `json:"applications_in_practice"`
}

type KeyConcept struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Application struct {
	Example     string `json:"example"`
	Description string `json:"description"`
}

// Challenge extends a topic with harder material.
type Challenge struct {
	CriticalReflectionQuestions  []string     `json:"critical_reflection_questions"`
	AdvancedConcepts             []Concept    `json:"advanced_concepts"`
	InterdisciplinaryConnections []Connection `json:"interdisciplinary_connections"`
	Counterarguments             []string     `json:"counterarguments"`
	FutureChallenges             []string     `json:"future_challenges"`
}

type Concept struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
}

type Connection struct {
	Field      string `json:"field"`
	Connection string `json:"connection"`
}

var clarifySchema = tools.Object(map[string]any{
	"main_argument": tools.String(),
	"key_concepts": tools.Array(tools.Object(map[string]any{
		"title":       tools.String(),
		"description": tools.String(),
	}, "title", "description"), -1, -1),
	"critical_details": tools.Strings(),
	"applications_in_practice": tools.Array(tools.Object(map[string]any{
		"example":     tools.String(),
		"description": tools.String(),
	}, "example", "description"), -1, -1),
}, "main_argument", "key_concepts", "critical_details", "applications_in_practice")

var challengeSchema = tools.Object(map[string]any{
	"critical_reflection_questions": tools.Strings(),
	"advanced_concepts": tools.Array(tools.Object(map[string]any{
		"concept":     tools.String(),
		"explanation": tools.String(),
	}, "concept", "explanation"), -1, -1),
	"interdisciplinary_connections": tools.Array(tools.Object(map[string]any{
		"field":      tools.String(),
		"connection": tools.String(),
	}, "field", "connection"), -1, -1),
	"counterarguments":  tools.Strings(),
	"future_challenges": tools.Strings(),
}, "critical_reflection_questions", "advanced_concepts", "interdisciplinary_connections",
	"counterarguments", "future_challenges")

var errUnknownShape = errors.New("clarify: result matches neither mode")

// Detect reports which mode produced a stored result, or "" when the JSON
// matches neither shape.
func Detect(raw []byte) string {
	switch {
	case gjson.GetBytes(raw, "main_argument").Exists():
		return ModeClarify
	case gjson.GetBytes(raw, "critical_reflection_questions").Exists():
		return ModeChallenge
	}
	return ""
}

// Decode reads a stored result into *Clarification or *Challenge.
func Decode(raw []byte) (any, error) {
	var v any
	switch Detect(raw) {
	case ModeClarify:
		v = &Clarification{}
	case ModeChallenge:
		v = &Challenge{}
	default:
		return nil, errUnknownShape
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}
