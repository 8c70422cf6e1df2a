package lessonplan

import (
	"github.com/edify-labs/edify/internal/tools"
)

// Response is the validated lesson plan returned by the model.
type Response struct {
	Overview              Overview              `json:"overview"`
	LessonOptions         []LessonOption        `json:"lessonOptions"`
	ReflectionSuggestions []string              `json:"reflectionSuggestions"`
	DifferentiationAndSEN DifferentiationAndSEN `json:"differentiationAndSEN"`
	CrossCurricularLinks  []string              `json:"crossCurricularLinks"`
	AssessmentQuestions   AssessmentQuestions   `json:"assessmentQuestions"`
	AdditionalNotes       []string              `json:"additionalNotes"`
}

// Overview summarises the lesson.
type Overview struct {
	Subject            string   `json:"subject"`
	Topic              string   `json:"topic"`
	YearGroup          string   `json:"yearGroup"`
	Duration           int      `json:"duration"`
	LearningObjectives []string `json:"learningObjectives"`
	InitialPrompts     []string `json:"initialPrompts"`
}

// LessonOption is one of the three alternative lesson structures.
type LessonOption struct {
	OptionNumber    int            `json:"optionNumber"`
	StarterActivity Starter        `json:"starterActivity"`
	MainActivities  []MainActivity `json:"mainActivities"`
	Plenary         Plenary        `json:"plenary"`
}

// Total returns the summed duration of the option's activities.
func (o LessonOption) Total() int {
	total := o.StarterActivity.Duration + o.Plenary.Duration
	for _, a := range o.MainActivities {
		total += a.Duration
	}
	return total
}

// Starter opens the lesson.
type Starter struct {
	Description  string   `json:"description"`
	Duration     int      `json:"duration"`
	Materials    []string `json:"materials"`
	Instructions []string `json:"instructions"`
}

// MainActivity is a core teaching activity.
type MainActivity struct {
	Description     string           `json:"description"`
	Duration        int              `json:"duration"`
	Materials       []string         `json:"materials"`
	Instructions    []string         `json:"instructions"`
	Differentiation *Differentiation `json:"differentiation,omitempty"`
}

// Plenary closes the lesson.
type Plenary struct {
	Description       string   `json:"description"`
	Duration          int      `json:"duration"`
	Instructions      []string `json:"instructions"`
	SuccessIndicators []string `json:"successIndicators"`
}

// Differentiation holds strategies by ability band. A nil slice means the
// band was not provided.
type Differentiation struct {
	Support   []string `json:"support,omitempty"`
	Core      []string `json:"core,omitempty"`
	Extension []string `json:"extension,omitempty"`
}

// SENSupport holds strategies by need.
type SENSupport struct {
	Visual    []string `json:"visual,omitempty"`
	Auditory  []string `json:"auditory,omitempty"`
	Cognitive []string `json:"cognitive,omitempty"`
}

// DifferentiationAndSEN groups whole-lesson support strategies.
type DifferentiationAndSEN struct {
	Differentiation *Differentiation `json:"differentiation,omitempty"`
	SENSupport      *SENSupport      `json:"senSupport,omitempty"`
}

// AssessmentQuestions are grouped by Bloom level.
type AssessmentQuestions struct {
	Knowledge     []string `json:"knowledge"`
	Comprehension []string `json:"comprehension"`
	Application   []string `json:"application"`
	Analysis      []string `json:"analysis"`
	Synthesis     []string `json:"synthesis"`
	Evaluation    []string `json:"evaluation"`
}

// QuestionLevel is one Bloom level and its questions.
type QuestionLevel struct {
	Level     string
	Questions []string
}

// Levels returns the questions in Bloom order.
func (a AssessmentQuestions) Levels() []QuestionLevel {
	return []QuestionLevel{
		{"knowledge", a.Knowledge},
		{"comprehension", a.Comprehension},
		{"application", a.Application},
		{"analysis", a.Analysis},
		{"synthesis", a.Synthesis},
		{"evaluation", a.Evaluation},
	}
}

var bands = tools.Object(map[string]any{
	"support":   tools.Strings(),
	"core":      tools.Strings(),
	"extension": tools.Strings(),
})

// responseSchema is the JSON Schema contract for Response.
var responseSchema = tools.Object(map[string]any{
	"overview": tools.Object(map[string]any{
		"subject":            tools.String(),
		"topic":              tools.String(),
		"yearGroup":          tools.String(),
		"duration":           tools.Integer(60),
		"learningObjectives": tools.Array(tools.String(), 3, 4),
		"initialPrompts":     tools.Array(tools.String(), 3, 4),
	}, "subject", "topic", "yearGroup", "duration", "learningObjectives", "initialPrompts"),
	"lessonOptions": tools.Array(tools.Object(map[string]any{
		"optionNumber": tools.Integer(),
		"starterActivity": tools.Object(map[string]any{
			"description":  tools.String(),
			"duration":     tools.Integer(),
			"materials":    tools.Strings(),
			"instructions": tools.Strings(),
		}, "description", "duration", "materials", "instructions"),
		"mainActivities": tools.Array(tools.Object(map[string]any{
			"description":     tools.String(),
			"duration":        tools.Integer(),
			"materials":       tools.Strings(),
			"instructions":    tools.Strings(),
			"differentiation": bands,
		}, "description", "duration", "materials", "instructions"), -1, -1),
		"plenary": tools.Object(map[string]any{
			"description":       tools.String(),
			"duration":          tools.Integer(),
			"instructions":      tools.Strings(),
			"successIndicators": tools.Strings(),
		}, "description", "duration", "instructions", "successIndicators"),
	}, "optionNumber", "starterActivity", "mainActivities", "plenary"), 3, 3),
	"reflectionSuggestions": tools.Strings(),
	"differentiationAndSEN": tools.Object(map[string]any{
		"differentiation": bands,
		"senSupport": tools.Object(map[string]any{
			"visual":    tools.Strings(),
			"auditory":  tools.Strings(),
			"cognitive": tools.Strings(),
		}),
	}),
	"crossCurricularLinks": tools.Array(tools.String(), 3, -1),
	"assessmentQuestions": tools.Object(map[string]any{
		"knowledge":     tools.Strings(),
		"comprehension": tools.Strings(),
		"application":   tools.Strings(),
		"analysis":      tools.Strings(),
		"synthesis":     tools.Strings(),
		"evaluation":    tools.Strings(),
	}, "knowledge", "comprehension", "application", "analysis", "synthesis", "evaluation"),
	"additionalNotes": tools.Strings(),
}, "overview", "lessonOptions", "reflectionSuggestions", "differentiationAndSEN",
	"crossCurricularLinks", "assessmentQuestions", "additionalNotes")
