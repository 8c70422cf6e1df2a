package api

import (
	"encoding/json"
	"time"

	"github.com/edify-labs/edify/internal/store"
)

// --- Tool types ---

// ToolResponse is a tool the caller may use.
type ToolResponse struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Implemented bool   `json:"implemented"`
	Public      bool   `json:"public"`
}

// ToolListResponse is the response for GET /api/v1/tools.
type ToolListResponse struct {
	Tools []ToolResponse `json:"tools"`
}

// UsageResponse is the token usage of one generation.
type UsageResponse struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// GenerateResponse is the result of running a tool.
type GenerateResponse struct {
	Data         any           `json:"data"`
	Markdown     string        `json:"markdown,omitempty"`
	Usage        UsageResponse `json:"usage"`
	Model        string        `json:"model,omitempty"`
	GenerationID string        `json:"generationId"`
}

// --- Generation types ---

// GenerationResponse is one entry of the caller's generation history.
type GenerationResponse struct {
	ID           string          `json:"id"`
	Tool         string          `json:"tool"`
	Status       string          `json:"status"`
	ErrorCode    string          `json:"error_code,omitempty"`
	Model        string          `json:"model"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
	DurationMs   int64           `json:"duration_ms"`
	Input        json.RawMessage `json:"input,omitempty" swaggertype:"object"`
	Output       json.RawMessage `json:"output,omitempty" swaggertype:"object"`
	CreatedAt    time.Time       `json:"created_at"`
}

// GenerationListResponse is a page of generation history. Input and output
// bodies are omitted from list entries.
type GenerationListResponse struct {
	Generations []GenerationResponse `json:"generations"`
	NextCursor  *string              `json:"next_cursor"`
}

func generationResponse(g *store.Generation, withBodies bool) GenerationResponse {
	resp := GenerationResponse{
		ID:           g.ID,
		Tool:         g.ToolSlug,
		Status:       g.Status,
		ErrorCode:    g.ErrorCode,
		Model:        g.Model,
		InputTokens:  g.InputTokens,
		OutputTokens: g.OutputTokens,
		DurationMs:   g.DurationMs,
		CreatedAt:    g.CreatedAt,
	}
	if withBodies {
		if json.Valid([]byte(g.InputJSON)) {
			resp.Input = json.RawMessage(g.InputJSON)
		}
		if g.OutputJSON.Valid && json.Valid([]byte(g.OutputJSON.String)) {
			resp.Output = json.RawMessage(g.OutputJSON.String)
		}
	}
	return resp
}

// --- Token types ---

// CreateTokenRequest is the request body for POST /api/v1/tokens.
// ExpiresIn is a Go duration such as "720h"; empty means no expiry.
type CreateTokenRequest struct {
	Name      string `json:"name"`
	ExpiresIn string `json:"expires_in,omitempty"`
}

// TokenResponse is the JSON representation of an API token.
type TokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TokenCreatedResponse carries the plaintext token, shown only once.
type TokenCreatedResponse struct {
	TokenResponse
	Token string `json:"token"`
}

// TokenListResponse is the response for GET /api/v1/tokens.
type TokenListResponse struct {
	Tokens []*TokenResponse `json:"tokens"`
}

// --- User types ---

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func userResponse(u *store.User) *UserResponse {
	return &UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           u.Role,
		OrganizationID: u.OrgID(),
		CreatedAt:      u.CreatedAt,
	}
}

// UserListResponse is the response for GET /api/v1/admin/users.
type UserListResponse struct {
	Users []*UserResponse `json:"users"`
}

// UpdateRoleRequest is the request body for PUT /api/v1/admin/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// --- Admin types ---

// ToolStatsResponse aggregates generations of one tool.
type ToolStatsResponse struct {
	Tool         string `json:"tool"`
	Total        int64  `json:"total"`
	Failed       int64  `json:"failed"`
	Canceled     int64  `json:"canceled"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// StatsResponse is the response for GET /api/v1/admin/stats.
type StatsResponse struct {
	Users int                 `json:"users"`
	Tools []ToolStatsResponse `json:"tools"`
}
