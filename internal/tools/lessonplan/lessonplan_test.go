package lessonplan

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/tools"
)

func samplePlan() *Response {
	option := func(n int) LessonOption {
		return LessonOption{
			OptionNumber: n,
			StarterActivity: Starter{
				Description:  "Timeline card sort",
				Duration:     10,
				Materials:    []string{"Cards"},
				Instructions: []string{"Sort the cards", "Discuss in pairs"},
			},
			MainActivities: []MainActivity{{
				Description:  "Source analysis",
				Duration:     25,
				Materials:    []string{"Sources pack"},
				Instructions: []string{"Read source A", "Annotate bias"},
				Differentiation: &Differentiation{
					Support: []string{"Sentence starters"},
					Core:    []string{"Annotate sources"},
				},
			}},
			Plenary: Plenary{
				Description:       "Exit ticket",
				Duration:          10,
				Instructions:      []string{"Write one sentence"},
				SuccessIndicators: []string{"Accurate chronology"},
			},
		}
	}
	return &Response{
		Overview: Overview{
			Subject:            "History",
			Topic:              "The Tudors",
			YearGroup:          "Year 9",
			Duration:           45,
			LearningObjectives: []string{"Name the Tudor monarchs", "Explain the break with Rome", "Evaluate sources"},
			InitialPrompts:     []string{"Who ruled first?", "Why did Henry break with Rome?", "What makes a source reliable?"},
		},
		LessonOptions:         []LessonOption{option(1), option(2), option(3)},
		ReflectionSuggestions: []string{"What surprised you?", "What would you ask Henry?"},
		DifferentiationAndSEN: DifferentiationAndSEN{
			Differentiation: &Differentiation{Support: []string{"Glossary"}, Extension: []string{"Compare historians"}},
			SENSupport:      &SENSupport{Visual: []string{"Large print"}},
		},
		CrossCurricularLinks: []string{"English: Persuasive writing", "Geography: Trade routes", "Art: Propaganda posters"},
		AssessmentQuestions: AssessmentQuestions{
			Knowledge:     []string{"Who was the first Tudor king?"},
			Comprehension: []string{"Explain the Act of Supremacy."},
			Application:   []string{"Apply source criteria to portrait B."},
			Analysis:      []string{"Compare sources A and B."},
			Synthesis:     []string{"Design a Tudor museum exhibit."},
			Evaluation:    []string{"How successful was Elizabeth I?"},
		},
		AdditionalNotes: []string{"Pre-teach key vocabulary", "Allow extra time for source work"},
	}
}

func validInput() *Input {
	return &Input{
		Topic:               "The Tudors",
		YearGroup:           "Year 9",
		Duration:            45,
		Objectives:          []string{"Name the Tudor monarchs"},
		Activities:          []Activity{{Type: "discussion", Description: "Main lesson activity"}},
		AssessmentQuestions: []AssessmentQuestion{{Level: "knowledge", Question: "Who?"}},
	}
}

func TestInput_Validate(t *testing.T) {
	assert.NoError(t, validInput().Validate())

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"blank topic", func(in *Input) { in.Topic = "" }, "topic"},
		{"long topic", func(in *Input) { in.Topic = strings.Repeat("x", 101) }, "topic"},
		{"year group format", func(in *Input) { in.YearGroup = "year 9" }, "yearGroup"},
		{"zero duration", func(in *Input) { in.Duration = 0 }, "duration"},
		{"long duration", func(in *Input) { in.Duration = 301 }, "duration"},
		{"no objectives", func(in *Input) { in.Objectives = nil }, "objectives"},
		{"bad activity type", func(in *Input) { in.Activities[0].Type = "lecture" }, "activities.type"},
		{"bad level", func(in *Input) { in.AssessmentQuestions[0].Level = "recall" }, "assessmentQuestions.level"},
		{"bad link subject", func(in *Input) {
			in.CrossCurricularLinks = []CrossCurricularLink{{Subject: "Maths", Description: "x"}}
		}, "crossCurricularLinks.subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			err := in.Validate()
			var verr *tools.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.For(tt.field), "expected error on %s, got %v", tt.field, verr.Fields)
		})
	}

	in := validInput()
	in.YearGroup = "Grade 10"
	assert.NoError(t, in.Validate())
}

func TestDecodeJSON(t *testing.T) {
	_, err := New().DecodeJSON([]byte(`{"topic":`))
	var verr *tools.ValidationError
	require.ErrorAs(t, err, &verr)

	in, err := New().DecodeJSON([]byte(`{
		"topic": "Rivers", "duration": 30, "objectives": ["Describe erosion"],
		"activities": [{"type": "group work", "description": "Model a meander"}],
		"assessmentQuestions": [{"level": "analysis", "question": "Why do meanders migrate?"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Rivers", in.(*Input).Topic)
}

func TestForm(t *testing.T) {
	v := url.Values{
		"lessonTopic":        {"The Tudors"},
		"subject":            {"History"},
		"learningObjectives": {"Name monarchs, explain the Reformation\nEvaluate sources"},
		"yearGroup":          {"year 9"},
		"duration":           {"45"},
		"enableSEN":          {"on"},
		"senConsiderations":  {"dyslexia", "visual"},
		"consent":            {"on"},
	}
	in, err := New().DecodeForm(v)
	require.NoError(t, err)

	input := in.(*Input)
	assert.Equal(t, "Year 9", input.YearGroup)
	assert.Equal(t, []string{"Name monarchs", "explain the Reformation", "Evaluate sources"}, input.Objectives)
	require.Len(t, input.Activities, 1)
	require.NotNil(t, input.Activities[0].Duration)
	assert.Equal(t, 27, *input.Activities[0].Duration)
	require.NotNil(t, input.Activities[0].Differentiation)
	assert.True(t, input.Activities[0].Differentiation.Dyslexia)
	assert.True(t, input.Activities[0].Differentiation.VisualImpairment)
	assert.False(t, input.Activities[0].Differentiation.ADHD)
	assert.Equal(t, "Other", input.CrossCurricularLinks[0].Subject)

	v.Del("consent")
	v.Set("duration", "90")
	_, err = New().DecodeForm(v)
	var verr *tools.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "You must agree to the consent statement", verr.For("consent"))
	assert.Equal(t, "Duration must be at most 60 minutes", verr.For("duration"))
}

func TestFormatYearGroup(t *testing.T) {
	assert.Equal(t, "Year 7", FormatYearGroup("year 7"))
	assert.Equal(t, "Year 12", FormatYearGroup("YEAR  12"))
	assert.Equal(t, "Grade 5", FormatYearGroup("Grade 5"))
}

func TestRenderPrompt(t *testing.T) {
	in := validInput()
	in.Subject = "History"
	in.Activities[0].Differentiation = &NeedsSupport{HearingImpairment: true}

	p, err := renderPrompt(in)
	require.NoError(t, err)
	assert.Contains(t, p, "Topic: The Tudors\nSubject: History\nYear Group: Year 9\nDuration: 45 minutes (STRICT REQUIREMENT)")
	assert.Contains(t, p, "- Support diverse learning needs")
	assert.Contains(t, p, "- Ensure accessible learning materials")
	assert.True(t, strings.HasSuffix(p, "must total EXACTLY 45 minutes."))

	in.Activities[0].Differentiation = nil
	p, err = renderPrompt(in)
	require.NoError(t, err)
	assert.NotContains(t, p, "diverse learning needs")
}

func TestCheckDuration(t *testing.T) {
	plan := samplePlan()
	assert.NoError(t, CheckDuration(plan, 45))

	plan.LessonOptions[2].Plenary.Duration = 5
	err := CheckDuration(plan, 45)
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, CodeDurationMismatch, aerr.Code)
	assert.Equal(t, 400, aerr.Status)
	assert.Contains(t, aerr.Err.Error(), "option 3 totals 40 minutes")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(samplePlan(), true, DefaultMarkdownOptions())

	assert.True(t, strings.HasPrefix(md, "# The Tudors\n\n## Lesson Overview\n\n**Subject:** History  \n**Year Group:** Year 9  \n**Duration:** 45 minutes\n\n## Learning Objectives\n\n- Name the Tudor monarchs\n"))
	assert.Contains(t, md, `<div class="learning-objective">Who ruled first?</div>`)
	assert.Contains(t, md, "| Activity | Duration (minutes) |\n| --- | --- |\n| Starter Activity | 10 |\n| Source analysis | 25 |\n| Plenary | 10 |")
	assert.Contains(t, md, "#### Starter Activity (10 minutes)\n<div class=\"activity\">Timeline card sort</div>\n\n<div class=\"materials\">\n- Cards\n</div>\n\n##### Instructions:\n1. Sort the cards\n2. Discuss in pairs")
	assert.Contains(t, md, "##### Source analysis (25 minutes)\n<div class=\"activity\">Activity 1</div>")
	assert.Contains(t, md, "###### Differentiation:\n<div class=\"differentiation\">**Support:** - Sentence starters\n**Core:** - Annotate sources\n</div>")
	assert.Contains(t, md, "##### Success Indicators:\n- Accurate chronology")
	assert.Contains(t, md, "### Knowledge\n\n- Who was the first Tudor king?")
	assert.Contains(t, md, "## Differentiation & SEN Support\n### Differentiation Strategies\n")
	assert.Contains(t, md, "### Visual Impairment\n- Large print")
	assert.Contains(t, md, "- **Geography**: Trade routes")
	assert.Less(t, strings.Index(md, "## Additional Notes"), strings.Index(md, "## Reflection Suggestions"))
	assert.Contains(t, md, `<div class="note">What surprised you?</div>`)
}

func TestMarkdown_Options(t *testing.T) {
	o := MarkdownOptions{Styles: Styles{Activity: "act"}}
	md := Markdown(samplePlan(), true, o)

	assert.NotContains(t, md, "**Duration:**")
	assert.NotContains(t, md, "Assessment Questions")
	assert.NotContains(t, md, "Differentiation & SEN Support")
	assert.NotContains(t, md, "Cross-Curricular Links")
	assert.NotContains(t, md, "Reflection Suggestions")
	assert.NotContains(t, md, "Success Indicators")
	assert.NotContains(t, md, `class="materials"`)
	assert.Contains(t, md, `<div class="act">Timeline card sort</div>`)
	assert.Contains(t, md, `<div class="learning-objective">`)
	assert.Contains(t, md, "## Additional Notes")

	md = Markdown(samplePlan(), false, DefaultMarkdownOptions())
	assert.NotContains(t, md, "Differentiation & SEN Support")
}

func TestSplitLink(t *testing.T) {
	s, d := splitLink("Maths: ratio: scale drawings")
	assert.Equal(t, "Maths", s)
	assert.Equal(t, "ratio", d)

	s, d = splitLink("Music")
	assert.Equal(t, "Music", s)
	assert.Equal(t, "Music", d)

	s, _ = splitLink(": orphan")
	assert.Equal(t, "Subject", s)
}

func TestParse_RoundTrip(t *testing.T) {
	p := Parse(Markdown(samplePlan(), true, DefaultMarkdownOptions()))

	assert.Equal(t, Metadata{Title: "The Tudors", Subject: "History", YearGroup: "Year 9", Duration: "45 minutes"}, p.Metadata)
	assert.Equal(t, Availability{true, true, true, true, true}, p.Available)
	assert.Equal(t, []string{"Name the Tudor monarchs", "Explain the break with Rome", "Evaluate sources"}, p.Sections.Objectives)
	assert.Equal(t, []string{"Who ruled first?", "Why did Henry break with Rome?", "What makes a source reliable?"}, p.Sections.DiscussionPrompts)

	require.Len(t, p.Options, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{p.Options[0].Number, p.Options[1].Number, p.Options[2].Number})
	assert.True(t, strings.HasPrefix(p.Options[0].Content, "### Option 1"))
	assert.NotContains(t, p.Options[0].Content, "Option 2")
	assert.NotContains(t, p.Options[2].Content, "Assessment Questions")

	assert.Equal(t, []LinkItem{
		{"English", "Persuasive writing"},
		{"Geography", "Trade routes"},
		{"Art", "Propaganda posters"},
	}, p.Additional.CrossCurricular)
	assert.Equal(t, []string{"Pre-teach key vocabulary", "Allow extra time for source work"}, p.Additional.AdditionalNotes)
	assert.Equal(t, []string{"What surprised you?", "What would you ask Henry?"}, p.Additional.Reflection)
	assert.Contains(t, p.Additional.Differentiation, "Glossary")
	assert.NotContains(t, p.Sections.Assessment, "Differentiation & SEN Support")

	levels := ParseAssessment(p.Sections.Assessment)
	require.Len(t, levels, 6)
	assert.Equal(t, "Knowledge", levels[0].Level)
	assert.Equal(t, []string{"Who was the first Tudor king?"}, levels[0].Questions)
	assert.Equal(t, "Evaluation", levels[5].Level)
}

func TestParse_Empty(t *testing.T) {
	p := Parse("")
	assert.Equal(t, "Lesson Plan", p.Metadata.Title)
	assert.Empty(t, p.Options)

	p = Parse("## Lesson Options\n\nDo the thing.")
	require.Len(t, p.Options, 1)
	assert.Equal(t, 1, p.Options[0].Number)
	assert.Equal(t, "Lesson Plan", p.Metadata.Title)
}

func TestParseOption(t *testing.T) {
	p := Parse(Markdown(samplePlan(), true, DefaultMarkdownOptions()))
	v := ParseOption(p.Options[0])

	assert.Equal(t, 1, v.Number)
	assert.Equal(t, "Starter Activity", v.Starter.Title)
	assert.Equal(t, 10, v.Starter.Duration)
	assert.Equal(t, []string{"Timeline card sort"}, v.Starter.Description)
	assert.Equal(t, []string{"Cards"}, v.Starter.Materials)
	assert.Equal(t, []string{"Sort the cards", "Discuss in pairs"}, v.Starter.Instructions)

	require.Len(t, v.Main, 1)
	assert.Equal(t, "Source analysis", v.Main[0].Title)
	assert.Equal(t, 25, v.Main[0].Duration)
	assert.Equal(t, []string{"Sources pack"}, v.Main[0].Materials)
	assert.Equal(t, []string{"Read source A", "Annotate bias"}, v.Main[0].Instructions)
	assert.Equal(t, []DifferentiationGroup{
		{Type: "support", Items: []string{"Sentence starters"}},
		{Type: "core", Items: []string{"Annotate sources"}},
	}, v.Main[0].Differentiation)

	assert.Equal(t, "Plenary", v.Plenary.Title)
	assert.Equal(t, []string{"Write one sentence"}, v.Plenary.Instructions)
	assert.Equal(t, []string{"Accurate chronology"}, v.Plenary.SuccessIndicators)
	assert.Equal(t, 45, v.Total())
}

func TestParseOption_MultipleMainActivities(t *testing.T) {
	plan := samplePlan()
	plan.LessonOptions[0].MainActivities = append(plan.LessonOptions[0].MainActivities,
		MainActivity{Description: "Debate", Duration: 5, Instructions: []string{"Pick a side"}},
		MainActivity{Description: "Write up", Duration: 5, Instructions: []string{"Summarise"}},
	)
	p := Parse(Markdown(plan, false, DefaultMarkdownOptions()))
	v := ParseOption(p.Options[0])

	require.Len(t, v.Main, 3)
	assert.Equal(t, []string{"Read source A", "Annotate bias"}, v.Main[0].Instructions)
	assert.Equal(t, "Debate", v.Main[1].Title)
	assert.Equal(t, []string{"Pick a side"}, v.Main[1].Instructions)
	assert.Equal(t, []string{"Summarise"}, v.Main[2].Instructions)
	assert.Equal(t, 55, v.Total())
}

func TestCleanContent(t *testing.T) {
	got := CleanContent("## Heading\n**Label:**\n- *one*\n2. two\n<b>three</b>\n###\n\n• four")
	assert.Equal(t, []string{"one", "two", "three", "four"}, got)
	assert.Nil(t, CleanContent(""))
}

func TestPatternCache(t *testing.T) {
	md := "# Plan\n\n## Starter\n\n**Duration:** 10 minutes\n\n## Main\n\nbody"

	assert.Equal(t, "## Starter\n\n**Duration:** 10 minutes", ExtractSection(md, "Starter", "Main"))
	assert.Equal(t, "10 minutes", ExtractValue(md, "Duration:"))

	q := regexp.QuoteMeta("Starter")
	first := pattern("## " + q + "|### " + q + "|#### " + q)
	assert.Same(t, first, pattern("## "+q+"|### "+q+"|#### "+q))

	// A second parse reuses the compiled expressions and agrees with the first.
	assert.Equal(t, "## Starter\n\n**Duration:** 10 minutes", ExtractSection(md, "Starter", "Main"))
	assert.Equal(t, "10 minutes", ExtractValue(md, "duration:"))
}

func TestExtractSection_CapitalisedRetry(t *testing.T) {
	md := "## Intro\n\ntext\n\n### Plenary\n\nend"
	assert.Equal(t, "### Plenary\n\nend", ExtractSection(md, "plenary", ""))
	assert.Equal(t, "## Intro\n\ntext", ExtractSection(md, "Intro", "plenary"))
	assert.Equal(t, "", ExtractSection(md, "Missing", ""))
}

func TestParseCrossCurricular(t *testing.T) {
	got := ParseCrossCurricular("### Cross-Curricular Links\n\n- **Science**: Forces\n(and motion)\n- Maths: Graphs")
	assert.Equal(t, []LinkItem{{"Science", "Forces (and motion)"}, {"Maths", "Graphs"}}, got)
}

func TestGroupDifferentiation(t *testing.T) {
	got := GroupDifferentiation([]string{"Warm-up for all", "Support: word bank", "visual prompts", "Extension:", "- Debate the motion"})
	assert.Equal(t, []DifferentiationGroup{
		{Type: "default", Items: []string{"Warm-up for all"}},
		{Type: "support", Items: []string{"word bank", "visual prompts"}},
		{Type: "extension", Items: []string{"Debate the motion"}},
	}, got)
}

func TestGenerate(t *testing.T) {
	body, err := json.Marshal(samplePlan())
	require.NoError(t, err)
	usage := llm.Usage{InputTokens: 900, OutputTokens: 1200, TotalTokens: 2100}
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: body, Usage: usage},
		llm.MockResponse{Content: body, Usage: usage},
	)
	client := ai.NewClient(mock, ai.Options{}, zap.NewNop())

	in := validInput()
	out, err := New().Generate(context.Background(), client, in)
	require.NoError(t, err)
	assert.Equal(t, usage, out.Usage)
	assert.True(t, strings.HasPrefix(out.Markdown, "# The Tudors"))
	assert.NotContains(t, out.Markdown, "Differentiation & SEN Support")
	assert.Contains(t, mock.LastCall().System, "exactly 3 options required")

	in.Duration = 50
	out, err = New().Generate(context.Background(), client, in)
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, CodeDurationMismatch, aerr.Code)
	require.NotNil(t, out)
	assert.Equal(t, 2100, out.Usage.TotalTokens)
	assert.Empty(t, out.Markdown)
}

func TestGenerate_SchemaViolation(t *testing.T) {
	plan := samplePlan()
	plan.LessonOptions = plan.LessonOptions[:2]
	body, err := json.Marshal(plan)
	require.NoError(t, err)
	client := ai.NewClient(llm.NewMockProvider(llm.MockResponse{Content: body}), ai.Options{}, zap.NewNop())

	_, err = New().Generate(context.Background(), client, validInput())
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ai.CodeValidation, aerr.Code)
	assert.Contains(t, aerr.Message, "lessonOptions")
}
