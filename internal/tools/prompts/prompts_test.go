package prompts

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/tools"
)

func refined(n int) string {
	levels := []string{"Remember", "Understand", "Apply", "Analyse", "Evaluate"}
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"promptText": "Prompt %d", "explanation": {"explanation": "Why %d",
			"complexityLevel": {"refinedLevel": "Advanced", "bloomsLevel": %q}, "focusAreas": ["Analysis"]}}`, i+1, i+1, levels[i%len(levels)])
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestInput_Validate(t *testing.T) {
	assert.NoError(t, (&Input{OriginalPrompt: "Why did Rome fall?", FocusAreas: []string{"Analysis"}}).Validate())

	var verr *tools.ValidationError
	require.ErrorAs(t, (&Input{OriginalPrompt: strings.Repeat("x", 501)}).Validate(), &verr)
	assert.NotEmpty(t, verr.For("originalPrompt"))
	assert.Equal(t, "At least one focus area is required", verr.For("focusAreas"))
}

func TestDecodeForm(t *testing.T) {
	v := url.Values{
		"originalPrompt": {"Why did Rome fall?"},
		"focusAreas":     {"Analysis", "Evaluation"},
		"consent":        {"on"},
	}
	in, err := New().DecodeForm(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Analysis", "Evaluation"}, in.(*Input).FocusAreas)

	v.Del("focusAreas")
	_, err = New().DecodeForm(v)
	var verr *tools.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.For("focusAreas"))

	_, err = New().DecodeForm(url.Values{"originalPrompt": {"Why"}})
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.For("originalPrompt"))
	assert.NotEmpty(t, verr.For("consent"))
}

func TestUnwrap(t *testing.T) {
	r, err := unwrap([]byte(`{"refinedPrompts": `+refined(3)+`}`), "Why did Rome fall?")
	require.NoError(t, err)
	assert.Equal(t, "Why did Rome fall?", r.OriginalPrompt)
	require.Len(t, r.RefinedPrompts, 3)
	assert.Equal(t, "Apply", r.RefinedPrompts[2].Explanation.ComplexityLevel.BloomsLevel)
	assert.Nil(t, r.Metadata)

	r, err = unwrap([]byte(`{"data": {"originalPrompt": "Echoed", "refinedPrompts": `+refined(4)+`,
		"metadata": {"processingTimeMs": 812, "version": "1.0", "model": "gpt-4o"}}}`), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Echoed", r.OriginalPrompt)
	assert.Len(t, r.RefinedPrompts, 4)
	assert.Equal(t, &Metadata{ProcessingTimeMs: 812, Version: "1.0", Model: "gpt-4o"}, r.Metadata)

	_, err = unwrap([]byte(`{"other": 1}`), "x")
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ai.CodeParse, aerr.Code)
}

func TestGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: []byte(`{"refinedPrompts": ` + refined(5) + `}`)})
	client := ai.NewClient(mock, ai.Options{}, zap.NewNop())

	out, err := New().Generate(context.Background(), client, &Input{
		OriginalPrompt: "Why did Rome fall?",
		FocusAreas:     []string{"Analysis", "Evaluation"},
	})
	require.NoError(t, err)
	r := out.Data.(*Response)
	assert.Len(t, r.RefinedPrompts, 5)

	user := mock.LastCall().Messages[0].Content
	assert.True(t, strings.HasPrefix(user, "Create 5 refined versions of this educational prompt"))
	assert.Contains(t, user, "Original Prompt: Why did Rome fall?\n\nFocus Areas: Analysis, Evaluation\n")
	assert.True(t, strings.HasSuffix(user, "vary in approach and complexity."))

	assert.True(t, strings.HasPrefix(out.Markdown, "# Refined Prompts\n\n**Original Prompt:** Why did Rome fall?\n\n## Prompt 1\n\n> Prompt 1\n\nWhy 1\n\n**Complexity:** Advanced  \n**Bloom's Level:** Remember\n\n**Focus Areas:** Analysis\n"))
	assert.Contains(t, out.Markdown, "## Prompt 5")
}

func TestGenerate_TooFewPrompts(t *testing.T) {
	client := ai.NewClient(llm.NewMockProvider(llm.MockResponse{
		Content: []byte(`{"refinedPrompts": ` + refined(2) + `}`),
	}), ai.Options{}, zap.NewNop())

	_, err := New().Generate(context.Background(), client, &Input{OriginalPrompt: "Why?", FocusAreas: []string{"Analysis"}})
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ai.CodeValidation, aerr.Code)
}

func TestGenerate_BadBloomsLevel(t *testing.T) {
	body := strings.Replace(`{"refinedPrompts": `+refined(3)+`}`, `"Remember"`, `"Memorise"`, 1)
	client := ai.NewClient(llm.NewMockProvider(llm.MockResponse{Content: []byte(body)}), ai.Options{}, zap.NewNop())

	_, err := New().Generate(context.Background(), client, &Input{OriginalPrompt: "Why?", FocusAreas: []string{"Analysis"}})
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ai.CodeValidation, aerr.Code)
	assert.NotEmpty(t, aerr.Violations)
}
