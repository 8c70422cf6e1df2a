package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  "gpt-4o",
	}
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-2024-08-06",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_JSONMode(t *testing.T) {
	var body map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"topic":"Photosynthesis"}`, "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:      "You are a lesson planner.",
		Messages:    []Message{{Role: RoleUser, Content: "Plan a lesson."}},
		JSONMode:    true,
		MaxTokens:   512,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"topic":"Photosynthesis"}`, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}, resp.Usage)
	assert.Equal(t, "gpt-4o-2024-08-06", resp.Model)
	assert.Equal(t, "end", resp.StopReason)

	format, _ := body["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	msgs, _ := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIProvider_NativeSchema(t *testing.T) {
	var body map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"name":"x","age":1}`, "stop"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "go"}},
		Schema:    testSchema(),
		MaxTokens: 100,
	})
	require.NoError(t, err)

	format, _ := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	js, _ := format["json_schema"].(map[string]any)
	assert.Equal(t, "test-object", js["name"])
}

func TestOpenAISchemaName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"lesson-planner", "lesson-planner"},
		{"clarify-challenge/challenge", "clarify-challenge_challenge"},
		{"", "response"},
		{strings.Repeat("a", 70), strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, openAISchemaName(tt.in), tt.in)
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"topic":"Photo`, "length"))
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "go"}}, MaxTokens: 10})
	var maxErr *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxErr)
	assert.Equal(t, `{"topic":"Photo`, string(maxErr.Content))
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"rate limit", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			assert.ErrorAs(t, err, &rl)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var un *ErrProviderUnavailable
			assert.ErrorAs(t, err, &un)
		}},
		{"bad request", http.StatusBadRequest, func(t *testing.T, err error) {
			var apiErr *openai.APIError
			assert.ErrorAs(t, err, &apiErr)
			var un *ErrProviderUnavailable
			assert.False(t, errors.As(err, &un))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "error", "message": "nope"},
				})
			})
			_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	require.Error(t, err)

	p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: "https://llm.internal/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())

	p, err = NewOpenAIProvider(Config{APIKey: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
}
