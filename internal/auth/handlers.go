package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/store"
)

const (
	cookieState        = "__edify_state"
	cookieCodeVerifier = "__edify_pkce"
	cookieRedirect     = "__edify_redirect"

	defaultRedirect = "/dashboard"
)

// IdentityProvider is the part of the OIDC Provider the login handlers use.
type IdentityProvider interface {
	AuthCodeURL(state, codeChallenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*Identity, error)
}

// Handlers provides HTTP handlers for the OIDC authentication flow.
type Handlers struct {
	provider     IdentityProvider
	sessions     *scs.SessionManager
	users        *store.UserStore
	adminEmail   string
	secureCookie bool
	log          *zap.Logger
}

// NewHandlers creates a new Handlers with the given dependencies.
func NewHandlers(p IdentityProvider, sm *scs.SessionManager, us *store.UserStore, adminEmail string, secureCookie bool, log *zap.Logger) *Handlers {
	return &Handlers{provider: p, sessions: sm, users: us, adminEmail: adminEmail, secureCookie: secureCookie, log: log}
}

// Login initiates the OIDC authorization code flow with PKCE.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := GenerateState()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.setPreAuthCookie(w, cookieState, state)
	h.setPreAuthCookie(w, cookieCodeVerifier, verifier)
	h.setPreAuthCookie(w, cookieRedirect, safeRedirect(r.URL.Query().Get("redirect")))

	http.Redirect(w, r, h.provider.AuthCodeURL(state, challenge), http.StatusFound)
}

// Callback handles the OIDC provider redirect after authentication.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(cookieState)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	verifierCookie, err := r.Cookie(cookieCodeVerifier)
	if err != nil {
		http.Error(w, "missing code verifier", http.StatusBadRequest)
		return
	}

	id, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"), verifierCookie.Value)
	if err != nil {
		h.log.Warn("oidc exchange failed", zap.Error(err))
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	user, err := h.users.Upsert(r.Context(), id.Issuer, id.Subject, id.Email, id.DisplayName(), id.Picture, h.adminEmail)
	if err != nil {
		h.log.Error("user upsert failed", zap.String("email", id.Email), zap.Error(err))
		http.Error(w, "user record error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	h.sessions.Put(r.Context(), SessionUserIDKey, user.ID)
	h.sessions.Put(r.Context(), SessionRoleKey, user.Role)
	h.log.Info("user signed in", zap.String("user_id", user.ID), zap.String("role", user.Role))

	redirect := defaultRedirect
	if c, err := r.Cookie(cookieRedirect); err == nil {
		redirect = safeRedirect(c.Value)
	}
	clearCookie(w, cookieState)
	clearCookie(w, cookieCodeVerifier)
	clearCookie(w, cookieRedirect)

	http.Redirect(w, r, redirect, http.StatusFound)
}

// Logout destroys the session and returns to the landing page.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		http.Error(w, "logout error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// safeRedirect only allows local absolute paths so the login flow cannot be
// used as an open redirect.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return defaultRedirect
	}
	return target
}

func (h *Handlers) setPreAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}
