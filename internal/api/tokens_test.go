package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edify-labs/edify/internal/api"
	"github.com/edify-labs/edify/internal/auth"
)

func TestTokens_List_OK(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com", "user")
	token := seedToken(t, env, user.ID)

	_, hash2, _ := auth.GenerateToken()
	if _, err := env.TokenStore.Create(context.Background(), user.ID, "second-token", hash2, nil); err != nil {
		t.Fatalf("create second token: %v", err)
	}

	req := authRequest(httptest.NewRequest("GET", "/tokens", nil), token)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), hash2) {
		t.Error("token hash leaked in list response")
	}

	var resp api.TokenListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tokens) != 2 {
		t.Errorf("len(tokens) = %d, want 2", len(resp.Tokens))
	}
}

func TestTokens_Create(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com", "user")
	token := seedToken(t, env, user.ID)

	tests := []struct {
		name    string
		body    string
		status  int
		expires bool
	}{
		{"no expiry", `{"name":"ci"}`, http.StatusCreated, false},
		{"with expiry", `{"name":"ci","expires_in":"720h"}`, http.StatusCreated, true},
		{"missing name", `{"name":"  "}`, http.StatusBadRequest, false},
		{"bad duration", `{"name":"ci","expires_in":"soon"}`, http.StatusBadRequest, false},
		{"negative duration", `{"name":"ci","expires_in":"-1h"}`, http.StatusBadRequest, false},
		{"malformed", `{`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/tokens", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			env.Router.ServeHTTP(rec, authRequest(req, token))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusCreated {
				return
			}

			var resp api.TokenCreatedResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.HasPrefix(resp.Token, auth.TokenPrefix) {
				t.Errorf("token = %q, want %q prefix", resp.Token, auth.TokenPrefix)
			}
			if (resp.ExpiresAt != nil) != tt.expires {
				t.Errorf("expires_at = %v, want set=%v", resp.ExpiresAt, tt.expires)
			}
			if tt.expires && resp.ExpiresAt.Before(time.Now().Add(719*time.Hour)) {
				t.Errorf("expires_at = %v, want about 30 days out", resp.ExpiresAt)
			}

			// The new token authenticates.
			check := authRequest(httptest.NewRequest("GET", "/users/me", nil), resp.Token)
			checkRec := httptest.NewRecorder()
			env.Router.ServeHTTP(checkRec, check)
			if checkRec.Code != http.StatusOK {
				t.Errorf("new token: status = %d, want %d", checkRec.Code, http.StatusOK)
			}
		})
	}
}

func TestTokens_Revoke(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice@example.com", "user")
	bob := seedUser(t, env, "bob@example.com", "user")
	aliceToken := seedToken(t, env, alice.ID)
	bobToken := seedToken(t, env, bob.ID)

	_, hash, _ := auth.GenerateToken()
	rec, err := env.TokenStore.Create(context.Background(), alice.ID, "doomed", hash, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Bob cannot revoke Alice's token.
	req := authRequest(httptest.NewRequest("DELETE", "/tokens/"+rec.ID, nil), bobToken)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("other user revoke: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	req = authRequest(httptest.NewRequest("DELETE", "/tokens/"+rec.ID, nil), aliceToken)
	w = httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("revoke: status = %d, want %d", w.Code, http.StatusNoContent)
	}

	req = authRequest(httptest.NewRequest("GET", "/tokens", nil), aliceToken)
	w = httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp api.TokenListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tokens) != 1 {
		t.Errorf("listed %d tokens, want only the one authenticating", len(resp.Tokens))
	}
	for _, tok := range resp.Tokens {
		if tok.ID == rec.ID {
			t.Error("revoked token still listed")
		}
	}

	all, err := env.TokenStore.ListByUser(context.Background(), alice.ID, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	var found bool
	for _, tok := range all {
		if tok.ID == rec.ID {
			found = true
			if !tok.RevokedAt.Valid {
				t.Error("revoked token has no RevokedAt")
			}
		}
	}
	if !found {
		t.Error("revoked token missing from the full listing")
	}
}
