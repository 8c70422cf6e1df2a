package auth_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/testutil"
)

// mockTokenStore is a test double implementing auth.TokenStore.
type mockTokenStore struct {
	records map[string]*auth.TokenRecord
	used    chan string
}

func (m *mockTokenStore) Create(ctx context.Context, userID, name, tokenHash string, expiresAt *time.Time) (*auth.TokenRecord, error) {
	return nil, nil
}

func (m *mockTokenStore) GetByHash(ctx context.Context, hash string) (*auth.TokenRecord, error) {
	rec, ok := m.records[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (m *mockTokenStore) ListByUser(ctx context.Context, userID string, includeRevoked bool) ([]*auth.TokenRecord, error) {
	return nil, nil
}

func (m *mockTokenStore) Revoke(ctx context.Context, id, userID string) error {
	return nil
}

func (m *mockTokenStore) UpdateLastUsed(ctx context.Context, id string) error {
	if m.used != nil {
		m.used <- id
	}
	return nil
}

func TestBearerTokenMiddleware(t *testing.T) {
	db := testutil.NewTestDB(t)
	us := store.NewUserStore(db)
	user, err := us.Upsert(context.Background(), "test", "sub1", "teacher@example.com", "Teacher", "", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	valid, validHash, _ := auth.GenerateToken()
	revoked, revokedHash, _ := auth.GenerateToken()
	expired, expiredHash, _ := auth.GenerateToken()
	orphan, orphanHash, _ := auth.GenerateToken()
	now := time.Now()

	ts := &mockTokenStore{
		used: make(chan string, 1),
		records: map[string]*auth.TokenRecord{
			validHash:   {ID: "tok-valid", UserID: user.ID},
			revokedHash: {ID: "tok-revoked", UserID: user.ID, RevokedAt: sql.NullTime{Time: now, Valid: true}},
			expiredHash: {ID: "tok-expired", UserID: user.ID, ExpiresAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true}},
			orphanHash:  {ID: "tok-orphan", UserID: "deleted-user"},
		},
	}
	mw := auth.NewBearerTokenMiddleware(ts, us, zap.NewNop())

	var seen *store.User
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic " + valid, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer ed_nope", http.StatusUnauthorized},
		{"revoked", "Bearer " + revoked, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"deleted owner", "Bearer " + orphan, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				if seen == nil || seen.ID != user.ID {
					t.Errorf("context user = %+v, want %s", seen, user.ID)
				}
				return
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["code"] != "UNAUTHORIZED" {
				t.Errorf("code = %q, want UNAUTHORIZED", body["code"])
			}
		})
	}

	select {
	case id := <-ts.used:
		if id != "tok-valid" {
			t.Errorf("last-used updated for %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected an asynchronous last-used update")
	}
}

func TestBearerTokenMiddleware_RecentlyUsedSkipsUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	us := store.NewUserStore(db)
	user, _ := us.Upsert(context.Background(), "test", "sub1", "t@example.com", "T", "", "")

	plaintext, hash, _ := auth.GenerateToken()
	ts := &mockTokenStore{
		used: make(chan string, 1),
		records: map[string]*auth.TokenRecord{
			hash: {ID: "tok", UserID: user.ID, LastUsedAt: sql.NullTime{Time: time.Now(), Valid: true}},
		},
	}
	handler := auth.NewBearerTokenMiddleware(ts, us, zap.NewNop()).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	req.Header.Set("Authorization", "Bearer "+plaintext)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case id := <-ts.used:
		t.Errorf("unexpected last-used update for %q", id)
	case <-time.After(100 * time.Millisecond):
	}
}
