package lessonplan

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// ParsedLesson is the view model the web UI renders from lesson markdown.
type ParsedLesson struct {
	Metadata   Metadata
	Sections   Sections
	Options    []OptionContent
	Additional Additional
	Available  Availability
}

// Metadata is read from the title and the overview block.
type Metadata struct {
	Title     string
	Subject   string
	YearGroup string
	Duration  string
}

// Sections holds the raw markdown of each top-level section, with list
// sections already cleaned.
type Sections struct {
	Overview          string
	Objectives        []string
	DiscussionPrompts []string
	LessonOptions     string
	Assessment        string
	Differentiation   string
	CrossCurricular   string
	Reflection        string
	AdditionalNotes   string
}

// OptionContent is the markdown of one lesson option.
type OptionContent struct {
	Number  int
	Content string
}

// LinkItem is a parsed cross-curricular link.
type LinkItem struct {
	Subject     string
	Description string
}

// Additional holds the cleaned trailing sections.
type Additional struct {
	Differentiation []string
	CrossCurricular []LinkItem
	Reflection      []string
	AdditionalNotes []string
}

// Availability records which optional sections are present.
type Availability struct {
	Assessment      bool
	Differentiation bool
	CrossCurricular bool
	Reflection      bool
	AdditionalNotes bool
}

const (
	hAssessment      = "Assessment Questions"
	hDifferentiation = "Differentiation & SEN Support"
	hCrossCurricular = "Cross-Curricular Links"
	hReflection      = "Reflection Suggestions"
	hAdditionalNotes = "Additional Notes"
)

var (
	titleRe  = regexp.MustCompile(`(?m)^# (.+)$`)
	optionRe = regexp.MustCompile(`## Option (\d+)`)
)

// Parse turns lesson-plan markdown into a ParsedLesson. It never fails;
// missing sections come back empty.
func Parse(md string) ParsedLesson {
	p := ParsedLesson{Metadata: Metadata{Title: "Lesson Plan"}}
	if md == "" {
		return p
	}

	if m := titleRe.FindStringSubmatch(md); m != nil {
		p.Metadata.Title = m[1]
	}

	av := Availability{
		Assessment:      strings.Contains(md, hAssessment),
		Differentiation: strings.Contains(md, hDifferentiation),
		CrossCurricular: strings.Contains(md, hCrossCurricular),
		Reflection:      strings.Contains(md, hReflection),
		AdditionalNotes: strings.Contains(md, hAdditionalNotes),
	}
	p.Available = av

	s := Sections{
		Overview:          ExtractSection(md, "Lesson Overview", "Learning Objectives"),
		Objectives:        CleanContent(ExtractSection(md, "Learning Objectives", "Initial Discussion Prompts")),
		DiscussionPrompts: CleanContent(ExtractSection(md, "Initial Discussion Prompts", "Lesson Options")),
		LessonOptions:     ExtractSection(md, "Lesson Options", hAssessment),
	}
	if av.Assessment {
		s.Assessment = ExtractSection(md, hAssessment, firstPresent(av, hDifferentiation, hCrossCurricular, hAdditionalNotes, hReflection))
	}
	if av.Differentiation {
		s.Differentiation = ExtractSection(md, hDifferentiation, firstPresent(av, hCrossCurricular, hAdditionalNotes, hReflection))
	}
	if av.CrossCurricular {
		s.CrossCurricular = ExtractSection(md, hCrossCurricular, firstPresent(av, hAdditionalNotes, hReflection))
	}
	if av.AdditionalNotes {
		s.AdditionalNotes = ExtractSection(md, hAdditionalNotes, firstPresent(av, hReflection))
	}
	if av.Reflection {
		s.Reflection = ExtractSection(md, hReflection, "")
	}
	p.Sections = s

	p.Options = extractOptions(md, s.LessonOptions)

	p.Metadata.Subject = ExtractValue(s.Overview, "Subject:")
	p.Metadata.YearGroup = ExtractValue(s.Overview, "Year Group:")
	p.Metadata.Duration = ExtractValue(s.Overview, "Duration:")

	p.Additional = Additional{
		Differentiation: CleanContent(s.Differentiation),
		CrossCurricular: ParseCrossCurricular(s.CrossCurricular),
		Reflection:      CleanContent(s.Reflection),
		AdditionalNotes: CleanContent(s.AdditionalNotes),
	}
	return p
}

// firstPresent returns the first heading in candidates whose section exists.
func firstPresent(av Availability, candidates ...string) string {
	present := map[string]bool{
		hDifferentiation: av.Differentiation,
		hCrossCurricular: av.CrossCurricular,
		hAdditionalNotes: av.AdditionalNotes,
		hReflection:      av.Reflection,
	}
	for _, c := range candidates {
		if present[c] {
			return c
		}
	}
	return ""
}

func extractOptions(md, lessonOptions string) []OptionContent {
	var nums []int
	for _, m := range optionRe.FindAllStringSubmatch(md, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			nums = append(nums, n)
		}
	}

	var out []OptionContent
	for _, n := range nums {
		end := hAssessment
		for _, next := range nums {
			if next > n {
				end = "Option " + strconv.Itoa(next)
				break
			}
		}
		out = append(out, OptionContent{
			Number:  n,
			Content: ExtractSection(md, "Option "+strconv.Itoa(n), end),
		})
	}
	if len(out) == 0 && lessonOptions != "" {
		out = append(out, OptionContent{Number: 1, Content: lessonOptions})
	}
	return out
}

// findHeading returns the offset of the first "##", "###" or "####" heading
// with the given text, retrying with the first letter capitalised.
func findHeading(content, text string) int {
	if i := headingIndex(content, text); i >= 0 {
		return i
	}
	if c := capitalise(text); c != text {
		return headingIndex(content, c)
	}
	return -1
}

// patterns caches the heading and value expressions built from section
// names. The set of names is small and fixed by the markdown generator.
var patterns sync.Map // string -> *regexp.Regexp

func pattern(expr string) *regexp.Regexp {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := patterns.LoadOrStore(expr, regexp.MustCompile(expr))
	return re.(*regexp.Regexp)
}

func headingIndex(content, text string) int {
	q := regexp.QuoteMeta(text)
	loc := pattern("## " + q + "|### " + q + "|#### " + q).FindStringIndex(content)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// ExtractSection returns the trimmed markdown from the start heading up to
// the end heading, or to the end of content when end is blank or not found
// after start.
func ExtractSection(content, start, end string) string {
	from := findHeading(content, start)
	if from < 0 {
		return ""
	}
	to := len(content)
	if end != "" {
		if i := findHeading(content, end); i > from {
			to = i
		}
	}
	return strings.TrimSpace(content[from:to])
}

// ExtractValue reads the text after a "**Key**" marker on the same line.
func ExtractValue(content, key string) string {
	m := pattern(`(?i)\*\*` + regexp.QuoteMeta(key) + `\*\*\s+([^\n]+)`).FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var (
	headingLineRe = regexp.MustCompile(`(?m)^(#{1,6}\s+[^\n]{0,500}\n|\*\*[^\n]{0,500}\*\*\s*\n)`)
	htmlTagRe     = regexp.MustCompile(`<[^>]{0,1000}>`)
	bareHashesRe  = regexp.MustCompile(`^#{1,6}$`)
	bulletRe      = regexp.MustCompile(`^[-•*]\s+`)
	asterisksRe   = regexp.MustCompile(`\*{1,2}`)
	numberingRe   = regexp.MustCompile(`^\d+\.\s+`)
)

// CleanContent strips headings, bold label lines, HTML tags, bullets,
// numbering and emphasis, returning the remaining non-empty lines.
func CleanContent(content string) []string {
	if content == "" {
		return nil
	}
	cleaned := headingLineRe.ReplaceAllString(content, "")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, "")

	var out []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || bareHashesRe.MatchString(line) {
			continue
		}
		line = bulletRe.ReplaceAllString(line, "")
		line = asterisksRe.ReplaceAllString(line, "")
		line = numberingRe.ReplaceAllString(line, "")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

var (
	crossHeadingRe = regexp.MustCompile(`(?i)^(#{1,6}\s*)?Cross-Curricular Links\s*\n`)
	subjectLineRe  = regexp.MustCompile(`^(?:-\s*)?(?:\*\*)?([A-Za-z]{1,30})(?:\*\*)?:?\s*(.*)`)
)

// ParseCrossCurricular pairs subjects with descriptions. A line starting
// with a word is a new subject; other lines continue the description.
func ParseCrossCurricular(content string) []LinkItem {
	if content == "" {
		return nil
	}
	content = crossHeadingRe.ReplaceAllString(content, "")

	var (
		out     []LinkItem
		subject string
		desc    string
	)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = bareHashesRe.ReplaceAllString(line, "")
		line = asterisksRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if m := subjectLineRe.FindStringSubmatch(line); m != nil {
			next := strings.TrimSpace(m[2])
			if subject != "" && (desc != "" || next != "") {
				out = append(out, LinkItem{Subject: subject, Description: desc})
			}
			subject, desc = strings.TrimSpace(m[1]), next
			continue
		}
		if subject != "" {
			desc += " " + line
		}
	}
	if subject != "" && desc != "" {
		out = append(out, LinkItem{Subject: subject, Description: desc})
	}
	return out
}

// DifferentiationGroup is a run of items under one ability band.
type DifferentiationGroup struct {
	Type  string
	Items []string
}

var categories = []struct{ name, kind string }{
	{"Support", "support"},
	{"Core", "core"},
	{"Extension", "extension"},
}

// GroupDifferentiation splits cleaned differentiation lines into bands. A
// line naming a band starts a new group; lines before any band are
// grouped as "default".
func GroupDifferentiation(items []string) []DifferentiationGroup {
	var (
		out  []DifferentiationGroup
		kind = "default"
		cur  []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, DifferentiationGroup{Type: kind, Items: cur})
			cur = nil
		}
	}
	for _, item := range items {
		item = bulletRe.ReplaceAllString(item, "")
		matched := false
		for _, c := range categories {
			if !strings.Contains(strings.ToLower(item), strings.ToLower(c.name)) {
				continue
			}
			flush()
			kind = c.kind
			rest := strings.ReplaceAll(item, c.name+":", "")
			rest = strings.ReplaceAll(rest, "*", "")
			rest = strings.ReplaceAll(rest, c.name, "")
			rest = strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(rest), ""))
			if rest != "" {
				cur = append(cur, rest)
			}
			matched = true
			break
		}
		if !matched {
			cur = append(cur, strings.TrimSpace(item))
		}
	}
	flush()
	return out
}
