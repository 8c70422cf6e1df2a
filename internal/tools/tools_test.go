package tools

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/store"
)

type echoInput struct {
	Text string `json:"text"`
}

func (in *echoInput) Validate() error {
	var c Checker
	c.Check(in.Text != "", "text", "Text is required")
	return c.Err()
}

// echoTool sends the input text through the model and returns what came back.
type echoTool struct{ slug string }

func (t echoTool) Slug() string { return t.slug }

func (t echoTool) DecodeJSON(body []byte) (Input, error) {
	in, err := DecodeJSON(body, &echoInput{})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (t echoTool) DecodeForm(form url.Values) (Input, error) {
	in := &echoInput{Text: form.Get("text")}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func (t echoTool) Generate(ctx context.Context, c *ai.Client, in Input) (*Output, error) {
	res, err := ai.Generate[map[string]string](ctx, c, ai.Call{
		Name:       t.slug,
		UserPrompt: in.(*echoInput).Text,
		Schema:     Object(map[string]any{"echo": String()}, "echo"),
	})
	if err != nil {
		return nil, err
	}
	return &Output{Data: res.Response, Markdown: res.Response["echo"], Usage: res.Usage, Model: res.Model}, nil
}

type memRecorder struct {
	mu   sync.Mutex
	gens []*store.Generation
}

func (r *memRecorder) Record(g *store.Generation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens = append(r.gens, g)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(echoTool{"a"}, echoTool{"b"}, echoTool{"a"})
	assert.Equal(t, []string{"a", "b"}, r.Slugs())
	assert.True(t, r.Has("b"))
	_, ok := r.Get("c")
	assert.False(t, ok)
}

func TestChecker(t *testing.T) {
	var c Checker
	assert.NoError(t, c.Err())

	c.Check(true, "a", "never")
	c.Check(false, "b", "first")
	c.Check(false, "b", "second")
	c.Check(false, "", "general")

	var verr *ValidationError
	require.ErrorAs(t, c.Err(), &verr)
	assert.Equal(t, "first", verr.For("b"))
	assert.Equal(t, "", verr.For("a"))
	assert.Equal(t, "invalid input: b: first; b: second; general", verr.Error())
}

func TestFormHelpers(t *testing.T) {
	form := url.Values{
		"consent": {"on"},
		"agree":   {"no"},
		"n":       {" 12 "},
		"bad":     {"x"},
		"list":    {"a", " ", " b "},
	}
	assert.True(t, FormBool(form, "consent"))
	assert.False(t, FormBool(form, "agree"))
	assert.False(t, FormBool(form, "missing"))
	assert.Equal(t, 12, FormInt(form, "n"))
	assert.Equal(t, 0, FormInt(form, "bad"))
	assert.Equal(t, []string{"a", "b"}, FormList(form, "list"))
	assert.Nil(t, FormList(form, "missing"))
	assert.Equal(t, 3, Len("héé"))
	assert.True(t, OneOf("b", "a", "b"))
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := DecodeJSON([]byte(`{`), &echoInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "malformed JSON")
}

func TestRunner_RunJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: []byte(`{"echo": "hello"}`),
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	})
	rec := &memRecorder{}
	runner := NewRunner(ai.NewClient(mock, ai.Options{}, zap.NewNop()), NewRegistry(echoTool{"echo"}), rec, zap.NewNop())

	run, err := runner.RunJSON(context.Background(), &store.User{ID: "u1"}, "echo", []byte(`{"text": "hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "echo", run.Tool)
	assert.Equal(t, "hello", run.Output.Markdown)

	require.Len(t, rec.gens, 1)
	g := rec.gens[0]
	assert.Equal(t, run.ID, g.ID)
	assert.Equal(t, "u1", g.UserID)
	assert.Equal(t, store.StatusSucceeded, g.Status)
	assert.Equal(t, "mock", g.Model)
	assert.Equal(t, 10, g.InputTokens)
	assert.Equal(t, 5, g.OutputTokens)
	assert.JSONEq(t, `{"text": "hello"}`, g.InputJSON)
	assert.True(t, g.OutputJSON.Valid)
}

func TestRunner_Failures(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: []byte(`{"other": 1}`)},
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("slow down")}},
	)
	rec := &memRecorder{}
	runner := NewRunner(ai.NewClient(mock, ai.Options{}, zap.NewNop()), NewRegistry(echoTool{"echo"}), rec, nil)
	ctx := context.Background()

	_, err := runner.RunForm(ctx, nil, "missing", url.Values{})
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = runner.RunForm(ctx, nil, "echo", url.Values{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, rec.gens, "invalid input never reaches the model")

	_, err = runner.RunForm(ctx, nil, "echo", url.Values{"text": {"hi"}})
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ai.CodeValidation, aerr.Code)

	_, err = runner.RunForm(ctx, nil, "echo", url.Values{"text": {"hi"}})
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ai.CodeRateLimited, aerr.Code)
	assert.True(t, errors.Is(err, aerr))

	require.Len(t, rec.gens, 2)
	for i, code := range []string{ai.CodeValidation, ai.CodeRateLimited} {
		assert.Equal(t, store.StatusFailed, rec.gens[i].Status)
		assert.Equal(t, code, rec.gens[i].ErrorCode)
		assert.False(t, rec.gens[i].OutputJSON.Valid)
	}
}

func TestRunner_Canceled(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: context.Canceled})
	rec := &memRecorder{}
	runner := NewRunner(ai.NewClient(mock, ai.Options{}, zap.NewNop()), NewRegistry(echoTool{"echo"}), rec, nil)

	_, err := runner.RunForm(context.Background(), &store.User{ID: "u1"}, "echo", url.Values{"text": {"hi"}})
	require.ErrorIs(t, err, context.Canceled)
	var aerr *ai.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ai.CodeCanceled, aerr.Code)

	require.Len(t, rec.gens, 1)
	assert.Equal(t, store.StatusCanceled, rec.gens[0].Status)
	assert.Equal(t, ai.CodeCanceled, rec.gens[0].ErrorCode)
	assert.False(t, rec.gens[0].Succeeded())
}

func TestSchemaBuilders(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "array", "items": String(), "minItems": 3}, Array(String(), 3, -1))
	assert.Equal(t, map[string]any{"type": "integer", "maximum": 60}, Integer(60))
	assert.Equal(t, []any{"a", "b"}, Enum("a", "b")["enum"])
	assert.NotContains(t, Object(map[string]any{}), "required")
}
