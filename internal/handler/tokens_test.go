package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
)

func tokensRouter(env *testEnv, user *store.User) http.Handler {
	h := NewTokensHandler(env.Tokens)
	return router(user, func(r chi.Router) {
		r.Get("/dashboard/tokens", h.Index)
		r.Post("/dashboard/tokens", h.Create)
		r.Get("/dashboard/tokens/{id}/confirm-revoke", h.ConfirmRevoke)
		r.Delete("/dashboard/tokens/{id}", h.Revoke)
	})
}

func TestTokensIndex(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "teacher@example.com", store.RoleUser)
	_, hash, _ := auth.GenerateToken()
	if _, err := env.Tokens.Create(context.Background(), user.ID, "laptop", hash, nil); err != nil {
		t.Fatalf("create token: %v", err)
	}

	rec := serve(tokensRouter(env, user), httptest.NewRequest(http.MethodGet, "/dashboard/tokens", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "laptop") || !strings.Contains(body, "<html") {
		t.Error("expected the full page listing the token")
	}
	if strings.Contains(body, hash) {
		t.Error("token hash leaked into the page")
	}
}

func TestTokensCreate(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "teacher@example.com", store.RoleUser)
	h := tokensRouter(env, user)

	tests := []struct {
		name    string
		form    url.Values
		want    string
		created int
	}{
		{"ok", url.Values{"name": {"CI"}, "expires_in": {"720h"}}, auth.TokenPrefix, 1},
		{"blank name", url.Values{"name": {"  "}}, "Token name is required.", 0},
		{"bad expiry", url.Values{"name": {"CI"}, "expires_in": {"-1h"}}, "Invalid expiry duration.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := env.Tokens.ListByUser(context.Background(), user.ID, false)

			req := postForm("/dashboard/tokens", tt.form)
			req.Header.Set("HX-Request", "true")
			rec := serve(h, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			if strings.Contains(body, "<html") {
				t.Error("HTMX request should get the token_list fragment")
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q", tt.want)
			}

			after, _ := env.Tokens.ListByUser(context.Background(), user.ID, false)
			if got := len(after) - len(before); got != tt.created {
				t.Errorf("created %d tokens, want %d", got, tt.created)
			}
		})
	}
}

func TestTokensRevoke(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", store.RoleUser)
	other := env.seedUser(t, "other@example.com", store.RoleUser)
	_, hash, _ := auth.GenerateToken()
	rec, err := env.Tokens.Create(context.Background(), owner.ID, "laptop", hash, nil)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/dashboard/tokens/"+rec.ID, nil)
	if res := serve(tokensRouter(env, other), req); res.Code != http.StatusNotFound {
		t.Errorf("other user status = %d, want 404", res.Code)
	}

	res := serve(tokensRouter(env, owner), httptest.NewRequest(http.MethodGet, "/dashboard/tokens/"+rec.ID+"/confirm-revoke", nil))
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), "/dashboard/tokens/"+rec.ID) {
		t.Errorf("confirm modal status = %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/dashboard/tokens/"+rec.ID, nil)
	req.Header.Set("HX-Request", "true")
	res = serve(tokensRouter(env, owner), req)
	if res.Code != http.StatusOK {
		t.Fatalf("revoke status = %d, want 200", res.Code)
	}
	if strings.Contains(res.Body.String(), "laptop") {
		t.Error("revoked token still listed")
	}
}
