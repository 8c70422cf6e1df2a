package lessonplan

import (
	"regexp"
	"strconv"
	"strings"
)

// ActivityView is one parsed activity block of a lesson option.
type ActivityView struct {
	Title             string
	Duration          int
	Description       []string
	Materials         []string
	Instructions      []string
	Differentiation   []DifferentiationGroup
	SuccessIndicators []string
}

// OptionView is a lesson option broken into its phases.
type OptionView struct {
	Number  int
	Starter ActivityView
	Main    []ActivityView
	Plenary ActivityView
}

// Total returns the summed duration of the parsed phases.
func (v OptionView) Total() int {
	total := v.Starter.Duration + v.Plenary.Duration
	for _, a := range v.Main {
		total += a.Duration
	}
	return total
}

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	minutesRe  = regexp.MustCompile(`(?i)\s*\((\d+) minutes\)\s*$`)
	openDivRe  = regexp.MustCompile(`^<div[^>]*>$`)
	closeDivRe = regexp.MustCompile(`^</div>$`)
)

type block struct {
	view   *ActivityView
	part   string
	body   []string
	list   []string
	inList bool
	diff   []string
	instr  []string
	succ   []string
}

func (b *block) add(line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case b.part == "instructions":
		b.instr = append(b.instr, line)
	case b.part == "differentiation":
		b.diff = append(b.diff, line)
	case b.part == "success":
		b.succ = append(b.succ, line)
	case openDivRe.MatchString(trimmed):
		b.inList = true
	case b.inList && closeDivRe.MatchString(trimmed):
		b.inList = false
	case b.inList:
		b.list = append(b.list, line)
	default:
		b.body = append(b.body, line)
	}
}

func (b *block) finish() {
	if b == nil || b.view == nil {
		return
	}
	b.view.Description = CleanContent(strings.Join(b.body, "\n"))
	b.view.Materials = CleanContent(strings.Join(b.list, "\n"))
	b.view.Instructions = CleanContent(strings.Join(b.instr, "\n"))
	b.view.SuccessIndicators = CleanContent(strings.Join(b.succ, "\n"))
	if len(b.diff) > 0 {
		b.view.Differentiation = GroupDifferentiation(CleanContent(strings.Join(b.diff, "\n")))
	}
}

func titled(text string) ActivityView {
	v := ActivityView{Title: strings.TrimSpace(text)}
	if m := minutesRe.FindStringSubmatch(text); m != nil {
		v.Duration, _ = strconv.Atoi(m[1])
		v.Title = strings.TrimSpace(minutesRe.ReplaceAllString(text, ""))
	}
	return v
}

// ParseOption splits an option's markdown into starter, main activities
// and plenary. The summary table is skipped.
func ParseOption(o OptionContent) OptionView {
	view := OptionView{Number: o.Number}
	var (
		cur    *block
		inMain bool
	)
	start := func(v *ActivityView) {
		cur.finish()
		cur = &block{view: v}
	}

	for _, line := range strings.Split(o.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") {
			continue
		}
		m := headingRe.FindStringSubmatch(trimmed)
		if m == nil {
			if cur != nil {
				cur.add(line)
			}
			continue
		}
		text := strings.TrimSpace(m[2])
		lower := strings.ToLower(text)

		switch {
		case strings.HasPrefix(lower, "option "):
			continue
		case strings.HasPrefix(lower, "starter activity"):
			inMain = false
			view.Starter = titled(text)
			start(&view.Starter)
		case lower == "main activities":
			inMain = true
			cur.finish()
			cur = nil
		case strings.HasPrefix(lower, "plenary"):
			inMain = false
			view.Plenary = titled(text)
			start(&view.Plenary)
		case lower == "instructions:":
			if cur != nil {
				cur.part = "instructions"
			}
		case lower == "differentiation:":
			if cur != nil {
				cur.part = "differentiation"
			}
		case lower == "success indicators:":
			if cur != nil {
				cur.part = "success"
			}
		case inMain:
			cur.finish()
			view.Main = append(view.Main, titled(text))
			cur = &block{view: &view.Main[len(view.Main)-1]}
		default:
			if cur != nil {
				cur.add(line)
			}
		}
	}
	cur.finish()
	return view
}

// ParseAssessment groups an Assessment Questions section by Bloom level.
func ParseAssessment(section string) []QuestionLevel {
	var (
		out   []QuestionLevel
		level string
		lines []string
	)
	flush := func() {
		if level != "" {
			if qs := CleanContent(strings.Join(lines, "\n")); len(qs) > 0 {
				out = append(out, QuestionLevel{Level: level, Questions: qs})
			}
		}
		lines = nil
	}
	for _, line := range strings.Split(section, "\n") {
		if m := headingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			text := strings.TrimSpace(m[2])
			for _, l := range QuestionLevels {
				if strings.EqualFold(text, l) {
					flush()
					level = capitalise(l)
					break
				}
			}
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return out
}
