package lessonplan

import (
	"fmt"
	"strconv"
	"strings"
)

// MarkdownOptions controls which parts of a plan are rendered and the CSS
// classes wrapped around styled blocks.
type MarkdownOptions struct {
	ShowTimestamps        bool
	ShowMaterials         bool
	ShowDifferentiation   bool
	ShowSuccessIndicators bool
	ShowCrossCurricular   bool
	ShowReflection        bool
	ShowAssessment        bool
	Styles                Styles
}

// Styles are the class names for styled blocks. Blank names fall back to
// the defaults.
type Styles struct {
	LearningObjective string
	Activity          string
	Materials         string
	Differentiation   string
	Note              string
}

var defaultStyles = Styles{
	LearningObjective: "learning-objective",
	Activity:          "activity",
	Materials:         "materials",
	Differentiation:   "differentiation",
	Note:              "note",
}

// DefaultMarkdownOptions shows every section with the default classes.
func DefaultMarkdownOptions() MarkdownOptions {
	return MarkdownOptions{
		ShowTimestamps:        true,
		ShowMaterials:         true,
		ShowDifferentiation:   true,
		ShowSuccessIndicators: true,
		ShowCrossCurricular:   true,
		ShowReflection:        true,
		ShowAssessment:        true,
		Styles:                defaultStyles,
	}
}

func (o MarkdownOptions) class(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func heading(text string, level int) string {
	return strings.Repeat("#", level) + " " + text
}

func list(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = strconv.Itoa(i+1) + ". " + it
	}
	return strings.Join(lines, "\n")
}

func table(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |")
	for _, r := range rows {
		b.WriteString("\n| " + strings.Join(r, " | ") + " |")
	}
	return b.String()
}

func div(class, content string) string {
	return fmt.Sprintf(`<div class="%s">%s</div>`, class, content)
}

func (o MarkdownOptions) objective(content string) string {
	return div(o.class(o.Styles.LearningObjective, defaultStyles.LearningObjective), content)
}

func (o MarkdownOptions) activity(content string) string {
	return div(o.class(o.Styles.Activity, defaultStyles.Activity), content)
}

func (o MarkdownOptions) note(content string) string {
	return div(o.class(o.Styles.Note, defaultStyles.Note), content)
}

func (o MarkdownOptions) materials(items []string) string {
	if !o.ShowMaterials {
		return ""
	}
	return div(o.class(o.Styles.Materials, defaultStyles.Materials), "\n"+list(items)+"\n")
}

func (o MarkdownOptions) differentiation(content string) string {
	if !o.ShowDifferentiation {
		return ""
	}
	return div(o.class(o.Styles.Differentiation, defaultStyles.Differentiation), content)
}

func section(title, content string) string {
	return heading(title, 2) + "\n\n" + content
}

// Markdown renders plan. support switches on the whole-lesson
// Differentiation & SEN section, which is only shown when the request asked
// for differentiation or SEN support.
func Markdown(plan *Response, support bool, o MarkdownOptions) string {
	var b strings.Builder
	ov := plan.Overview

	b.WriteString("# " + ov.Topic + "\n\n")
	b.WriteString(heading("Lesson Overview", 2) + "\n\n")
	b.WriteString("**Subject:** " + ov.Subject + "  \n")
	b.WriteString("**Year Group:** " + ov.YearGroup + "  \n")
	if o.ShowTimestamps {
		b.WriteString(fmt.Sprintf("**Duration:** %d minutes", ov.Duration))
	}
	b.WriteString("\n\n" + heading("Learning Objectives", 2) + "\n\n")
	b.WriteString(list(ov.LearningObjectives) + "\n")

	prompts := make([]string, len(ov.InitialPrompts))
	for i, p := range ov.InitialPrompts {
		prompts[i] = o.objective(p)
	}
	b.WriteString("\n\n" + section("Initial Discussion Prompts", strings.Join(prompts, "\n\n")))

	b.WriteString("\n\n" + heading("Lesson Options", 2) + "\n\n")
	for _, opt := range plan.LessonOptions {
		writeOption(&b, opt, o)
	}

	if o.ShowAssessment {
		var levels []string
		for _, l := range plan.AssessmentQuestions.Levels() {
			levels = append(levels, heading(capitalise(l.Level), 3)+"\n\n"+list(l.Questions))
		}
		b.WriteString(heading("Assessment Questions", 2) + "\n\n" + strings.Join(levels, "\n\n") + "\n\n")
	}

	if support && o.ShowDifferentiation {
		writeSupport(&b, plan.DifferentiationAndSEN, o)
	}

	if len(plan.CrossCurricularLinks) > 0 && o.ShowCrossCurricular {
		lines := make([]string, len(plan.CrossCurricularLinks))
		for i, link := range plan.CrossCurricularLinks {
			subject, desc := splitLink(link)
			lines[i] = "- **" + subject + "**: " + desc
		}
		b.WriteString(heading("Cross-Curricular Links", 3) + "\n\n" + strings.Join(lines, "\n") + "\n\n")
	}

	if len(plan.AdditionalNotes) > 0 {
		b.WriteString(heading("Additional Notes", 2) + "\n\n" + list(plan.AdditionalNotes) + "\n\n")
	}

	if o.ShowReflection {
		notes := make([]string, len(plan.ReflectionSuggestions))
		for i, s := range plan.ReflectionSuggestions {
			notes[i] = o.note(s)
		}
		b.WriteString(section("Reflection Suggestions", strings.Join(notes, "\n")) + "\n")
	}

	return b.String()
}

func writeOption(b *strings.Builder, opt LessonOption, o MarkdownOptions) {
	b.WriteString(heading(fmt.Sprintf("Option %d", opt.OptionNumber), 3) + "\n\n")

	rows := [][]string{{"Starter Activity", strconv.Itoa(opt.StarterActivity.Duration)}}
	for _, a := range opt.MainActivities {
		rows = append(rows, []string{a.Description, strconv.Itoa(a.Duration)})
	}
	rows = append(rows, []string{"Plenary", strconv.Itoa(opt.Plenary.Duration)})
	b.WriteString(table([]string{"Activity", "Duration (minutes)"}, rows) + "\n\n")

	st := opt.StarterActivity
	b.WriteString(heading(fmt.Sprintf("Starter Activity (%d minutes)", st.Duration), 4) + "\n")
	b.WriteString(o.activity(st.Description) + "\n\n")
	b.WriteString(o.materials(st.Materials) + "\n\n")
	b.WriteString(heading("Instructions:", 5) + "\n")
	b.WriteString(numbered(st.Instructions) + "\n\n")

	b.WriteString(heading("Main Activities", 4) + "\n")
	for i, a := range opt.MainActivities {
		b.WriteString(heading(fmt.Sprintf("%s (%d minutes)", a.Description, a.Duration), 5) + "\n")
		b.WriteString(o.activity(fmt.Sprintf("Activity %d", i+1)) + "\n\n")
		b.WriteString(o.materials(a.Materials) + "\n\n")
		b.WriteString(heading("Instructions:", 6) + "\n")
		b.WriteString(numbered(a.Instructions) + "\n\n")

		if d := a.Differentiation; d != nil && o.ShowDifferentiation {
			b.WriteString(heading("Differentiation:", 6) + "\n")
			var c strings.Builder
			if d.Support != nil {
				c.WriteString("**Support:** " + list(d.Support) + "\n")
			}
			if d.Core != nil {
				c.WriteString("**Core:** " + list(d.Core) + "\n")
			}
			if d.Extension != nil {
				c.WriteString("**Extension:** " + list(d.Extension) + "\n")
			}
			b.WriteString(o.differentiation(c.String()) + "\n\n")
		}
	}

	pl := opt.Plenary
	b.WriteString(heading(fmt.Sprintf("Plenary (%d minutes)", pl.Duration), 4) + "\n")
	b.WriteString(o.activity(pl.Description) + "\n\n")
	b.WriteString(heading("Instructions:", 5) + "\n")
	b.WriteString(numbered(pl.Instructions) + "\n\n")
	if o.ShowSuccessIndicators {
		b.WriteString(heading("Success Indicators:", 5) + "\n")
		b.WriteString(list(pl.SuccessIndicators) + "\n\n")
	}
}

func writeSupport(b *strings.Builder, s DifferentiationAndSEN, o MarkdownOptions) {
	b.WriteString(heading("Differentiation & SEN Support", 2) + "\n")

	if d := s.Differentiation; d != nil {
		b.WriteString(heading("Differentiation Strategies", 3) + "\n")
		var c strings.Builder
		if d.Support != nil {
			c.WriteString("### Support\n" + list(d.Support) + "\n\n")
		}
		if d.Core != nil {
			c.WriteString("### Core\n" + list(d.Core) + "\n\n")
		}
		if d.Extension != nil {
			c.WriteString("### Extension\n" + list(d.Extension) + "\n\n")
		}
		b.WriteString(o.differentiation(c.String()) + "\n\n")
	}

	if sen := s.SENSupport; sen != nil {
		b.WriteString(heading("SEN Support", 3) + "\n")
		var c strings.Builder
		if sen.Visual != nil {
			c.WriteString("### Visual Impairment\n" + list(sen.Visual) + "\n\n")
		}
		if sen.Auditory != nil {
			c.WriteString("### Hearing Impairment\n" + list(sen.Auditory) + "\n\n")
		}
		if sen.Cognitive != nil {
			c.WriteString("### Cognitive Support\n" + list(sen.Cognitive) + "\n\n")
		}
		b.WriteString(o.differentiation(c.String()) + "\n\n")
	}
}

// splitLink splits "Subject: description" links; text without a subject
// keeps the whole link as its description.
func splitLink(link string) (subject, desc string) {
	parts := strings.Split(link, ":")
	subject = strings.TrimSpace(parts[0])
	if subject == "" {
		subject = "Subject"
	}
	if len(parts) > 1 {
		desc = strings.TrimSpace(parts[1])
	}
	if desc == "" {
		desc = link
	}
	return subject, desc
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
