package handler

import (
	"github.com/edify-labs/edify/internal/tools/lessonplan"
)

// ResultView is a rendered generation. Lesson plans are parsed back from
// their markdown into tabs; every other tool renders its markdown as is.
type ResultView struct {
	Slug     string
	Markdown string
	Lesson   *LessonView
}

// LessonView is the lesson plan view model with each option and the
// trailing sections broken down for display.
type LessonView struct {
	lessonplan.ParsedLesson
	OptionViews     []lessonplan.OptionView
	Questions       []lessonplan.QuestionLevel
	Differentiation []lessonplan.DifferentiationGroup
}

func newResultView(slug, md string) ResultView {
	v := ResultView{Slug: slug, Markdown: md}
	if slug != lessonplan.Slug || md == "" {
		return v
	}

	parsed := lessonplan.Parse(md)
	lv := &LessonView{ParsedLesson: parsed}
	for _, o := range parsed.Options {
		lv.OptionViews = append(lv.OptionViews, lessonplan.ParseOption(o))
	}
	if parsed.Available.Assessment {
		lv.Questions = lessonplan.ParseAssessment(parsed.Sections.Assessment)
	}
	if parsed.Available.Differentiation {
		lv.Differentiation = lessonplan.GroupDifferentiation(parsed.Additional.Differentiation)
	}
	v.Lesson = lv
	return v
}
