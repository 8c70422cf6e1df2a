package rubric

import (
	"strings"

	"github.com/edify-labs/edify/internal/tools"
)

// Response is the generated rubric.
type Response struct {
	Data Data `json:"data"`
}

// Data is the rubric document.
type Data struct {
	ID        string   `json:"id"`
	Version   string   `json:"version"`
	CreatedAt string   `json:"createdAt"`
	Metadata  Metadata `json:"metadata"`
	Rubric    Grid     `json:"rubric"`
}

// Metadata describes what the rubric assesses.
type Metadata struct {
	Subject        string `json:"subject"`
	Topic          string `json:"topic"`
	AssessmentType string `json:"assessmentType"`
	Assessor       string `json:"assessor"`
	KeyStage       string `json:"keyStage"`
	Level          int    `json:"level"`
}

// DisplayAssessor derives the assessor from the assessment type rather than
// trusting the model's value.
func (m Metadata) DisplayAssessor() string {
	t := strings.ToLower(m.AssessmentType)
	switch {
	case strings.Contains(t, "peer"):
		return "Peer"
	case strings.Contains(t, "self"):
		return "Self"
	}
	return "Class Teacher"
}

// Grid holds the criteria rows.
type Grid struct {
	Criteria []Criterion `json:"criteria"`
}

// Criterion is one row of the rubric.
type Criterion struct {
	Name   string `json:"name"`
	Levels Levels `json:"levels"`
}

// Levels are the five attainment bands.
type Levels struct {
	Exceptional Level `json:"exceptional"`
	Advanced    Level `json:"advanced"`
	Proficient  Level `json:"proficient"`
	Basic       Level `json:"basic"`
	Emerging    Level `json:"emerging"`
}

// Get returns the band with the given key.
func (l Levels) Get(key string) Level {
	switch key {
	case "exceptional":
		return l.Exceptional
	case "advanced":
		return l.Advanced
	case "proficient":
		return l.Proficient
	case "basic":
		return l.Basic
	case "emerging":
		return l.Emerging
	}
	return Level{}
}

// Level is one cell of the rubric.
type Level struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
	Feedback    string `json:"feedback"`
}

// LevelSpec names a band and its score.
type LevelSpec struct {
	Key   string
	Label string
	Score int
}

// allLevels is ordered highest first.
var allLevels = []LevelSpec{
	{"exceptional", "Exceptional (5)", 5},
	{"advanced", "Advanced (4)", 4},
	{"proficient", "Proficient (3)", 3},
	{"basic", "Basic (2)", 2},
	{"emerging", "Emerging (1)", 1},
}

// LevelsFor returns the bands shown for a key stage, highest first: three
// for ks3, four for ks4, all five for ks5, and every band but exceptional
// otherwise.
func LevelsFor(keyStage string) []LevelSpec {
	switch strings.ToLower(strings.TrimSpace(keyStage)) {
	case "ks3":
		return allLevels[2:]
	case "ks4":
		return allLevels[1:]
	case "ks5":
		return allLevels
	}
	return allLevels[1:]
}

var levelSchema = tools.Object(map[string]any{
	"score":       tools.Integer(),
	"description": tools.String(),
	"feedback":    tools.String(),
}, "score", "description", "feedback")

var responseSchema = tools.Object(map[string]any{
	"data": tools.Object(map[string]any{
		"id":        tools.String(),
		"version":   tools.String(),
		"createdAt": tools.String(),
		"metadata": tools.Object(map[string]any{
			"subject":        tools.String(),
			"topic":          tools.String(),
			"assessmentType": tools.String(),
			"assessor":       tools.String(),
			"keyStage":       tools.String(),
			"level":          tools.Integer(),
		}, "subject", "topic", "assessmentType", "assessor", "keyStage", "level"),
		"rubric": tools.Object(map[string]any{
			"criteria": tools.Array(tools.Object(map[string]any{
				"name": tools.String(),
				"levels": tools.Object(map[string]any{
					"exceptional": levelSchema,
					"advanced":    levelSchema,
					"proficient":  levelSchema,
					"basic":       levelSchema,
					"emerging":    levelSchema,
				}, "exceptional", "advanced", "proficient", "basic", "emerging"),
			}, "name", "levels"), 1, -1),
		}, "criteria"),
	}, "id", "version", "createdAt", "metadata", "rubric"),
}, "data")
