package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
)

type tokensAPIHandler struct {
	tokens auth.TokenStore
}

func registerTokenRoutes(r chi.Router, tokens auth.TokenStore) {
	h := &tokensAPIHandler{tokens: tokens}
	r.Get("/tokens", h.List)
	r.Post("/tokens", h.Create)
	r.Delete("/tokens/{id}", h.Revoke)
}

func tokenResponse(rec *auth.TokenRecord) *TokenResponse {
	item := &TokenResponse{
		ID:        rec.ID,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
	}
	if rec.LastUsedAt.Valid {
		t := rec.LastUsedAt.Time
		item.LastUsedAt = &t
	}
	if rec.ExpiresAt.Valid {
		t := rec.ExpiresAt.Time
		item.ExpiresAt = &t
	}
	return item
}

// List returns the caller's tokens without sensitive fields.
//
// @Summary      List API tokens
// @Description  Returns the caller's unrevoked tokens. Token hashes are never returned.
// @Tags         Tokens
// @Produce      json
// @Success      200  {object}  TokenListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /tokens [get]
func (h *tokensAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	records, err := h.tokens.ListByUser(r.Context(), user.ID, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := &TokenListResponse{Tokens: make([]*TokenResponse, 0, len(records))}
	for _, rec := range records {
		resp.Tokens = append(resp.Tokens, tokenResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create generates a new token and returns the plaintext once.
//
// @Summary      Create an API token
// @Description  The plaintext token appears only in this response.
// @Tags         Tokens
// @Accept       json
// @Produce      json
// @Param        body  body      CreateTokenRequest  true  "Token name and optional expiry"
// @Success      201   {object}  TokenCreatedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /tokens [post]
func (h *tokensAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
		return
	}

	var expiresAt *time.Time
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "expires_in must be a positive duration such as 720h", "BAD_REQUEST")
			return
		}
		t := time.Now().Add(d)
		expiresAt = &t
	}

	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed", "INTERNAL_ERROR")
		return
	}

	rec, err := h.tokens.Create(r.Context(), user.ID, req.Name, hash, expiresAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token creation failed", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, TokenCreatedResponse{
		TokenResponse: *tokenResponse(rec),
		Token:         plaintext,
	})
}

// Revoke soft-deletes a token owned by the current user.
//
// @Summary      Revoke an API token
// @Tags         Tokens
// @Param        id   path  string  true  "Token ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /tokens/{id} [delete]
func (h *tokensAPIHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	err := h.tokens.Revoke(r.Context(), chi.URLParam(r, "id"), user.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "revoke failed", "INTERNAL_ERROR")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
