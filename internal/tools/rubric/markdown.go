package rubric

import (
	"fmt"
	"strings"
)

// Markdown renders the rubric as a metadata list followed by a table with
// one column per band visible at the rubric's key stage.
func Markdown(r *Response) string {
	d := r.Data
	m := d.Metadata
	levels := LevelsFor(m.KeyStage)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Rubric\n\n", m.Topic)
	fmt.Fprintf(&b, "**Subject:** %s  \n", m.Subject)
	fmt.Fprintf(&b, "**Assessment Type:** %s  \n", m.AssessmentType)
	fmt.Fprintf(&b, "**Assessor:** %s  \n", m.DisplayAssessor())
	fmt.Fprintf(&b, "**Key Stage:** %s (Level %d)\n\n", m.KeyStage, m.Level)

	b.WriteString("| Criterion |")
	for _, l := range levels {
		b.WriteString(" " + l.Label + " |")
	}
	b.WriteString("\n| --- |" + strings.Repeat(" --- |", len(levels)) + "\n")

	for _, c := range d.Rubric.Criteria {
		name := c.Name
		if name == "" {
			name = "Unnamed Criterion"
		}
		b.WriteString("| **" + cell(name) + "** |")
		for _, l := range levels {
			lv := c.Levels.Get(l.Key)
			text := cell(lv.Description)
			if lv.Feedback != "" {
				text += "<br>*" + cell(lv.Feedback) + "*"
			}
			b.WriteString(" " + text + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cell keeps text on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
