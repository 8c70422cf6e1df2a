package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
)

// TokensPage is the template data for the API token page.
type TokensPage struct {
	BasePage
	Tokens   []*auth.TokenRecord
	NewToken string // plaintext shown once after creation; empty otherwise
	Error    string
}

// TokensHandler provides web UI handlers for personal access tokens.
type TokensHandler struct {
	tokens auth.TokenStore
}

// NewTokensHandler creates a new TokensHandler.
func NewTokensHandler(ts auth.TokenStore) *TokensHandler {
	return &TokensHandler{tokens: ts}
}

func (h *TokensHandler) respond(w http.ResponseWriter, r *http.Request, data TokensPage) {
	if isHTMX(r) {
		renderFragment(w, "token_list", data)
		return
	}
	render(w, "tokens.html", data)
}

// Index renders GET /dashboard/tokens.
func (h *TokensHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	records, err := h.tokens.ListByUser(r.Context(), user.ID, false)
	if err != nil {
		http.Error(w, "could not load tokens", http.StatusInternalServerError)
		return
	}
	h.respond(w, r, TokensPage{BasePage: newBasePage(r, user), Tokens: records})
}

// Create processes the token form and shows the plaintext once.
// POST /dashboard/tokens
func (h *TokensHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.renderWithError(w, r, user, "Token name is required.")
		return
	}

	var expiresAt *time.Time
	if exp := r.FormValue("expires_in"); exp != "" {
		d, err := time.ParseDuration(exp)
		if err != nil || d <= 0 {
			h.renderWithError(w, r, user, "Invalid expiry duration.")
			return
		}
		t := time.Now().Add(d)
		expiresAt = &t
	}

	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		h.renderWithError(w, r, user, "Failed to generate token.")
		return
	}
	if _, err := h.tokens.Create(r.Context(), user.ID, name, hash, expiresAt); err != nil {
		h.renderWithError(w, r, user, "Failed to create token.")
		return
	}

	records, _ := h.tokens.ListByUser(r.Context(), user.ID, false)
	data := TokensPage{BasePage: newBasePage(r, user), Tokens: records, NewToken: plaintext}
	data.Flash = &Flash{Type: "success", Message: "Token created. Copy it now, it will not be shown again."}
	h.respond(w, r, data)
}

// ConfirmRevoke renders the confirmation modal for revoking a token.
func (h *TokensHandler) ConfirmRevoke(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	records, err := h.tokens.ListByUser(r.Context(), user.ID, false)
	if err != nil {
		http.Error(w, "could not load tokens", http.StatusInternalServerError)
		return
	}
	for _, rec := range records {
		if rec.ID == id {
			renderFragment(w, "confirm_delete", ConfirmDeleteData{
				Name:      rec.Name,
				DeleteURL: "/dashboard/tokens/" + id,
				Target:    "#token-list",
			})
			return
		}
	}
	http.NotFound(w, r)
}

// Revoke soft-deletes a token owned by the current user.
// DELETE /dashboard/tokens/{id}
func (h *TokensHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	err := h.tokens.Revoke(r.Context(), chi.URLParam(r, "id"), user.ID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "revoke failed", http.StatusInternalServerError)
		return
	}

	records, _ := h.tokens.ListByUser(r.Context(), user.ID, false)
	data := TokensPage{BasePage: newBasePage(r, user), Tokens: records}
	data.Flash = &Flash{Type: "success", Message: "Token revoked."}
	h.respond(w, r, data)
}

func (h *TokensHandler) renderWithError(w http.ResponseWriter, r *http.Request, user *store.User, errMsg string) {
	records, _ := h.tokens.ListByUser(r.Context(), user.ID, false)
	h.respond(w, r, TokensPage{BasePage: newBasePage(r, user), Tokens: records, Error: errMsg})
}
