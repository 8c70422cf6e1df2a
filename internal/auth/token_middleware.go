package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/store"
)

// lastUsedResolution bounds how often last_used_at is rewritten for a busy token.
const lastUsedResolution = time.Minute

// BearerTokenMiddleware authenticates API requests with personal access
// tokens. Session cookies are never consulted on these routes.
type BearerTokenMiddleware struct {
	tokens TokenStore
	users  *store.UserStore
	log    *zap.Logger
	now    func() time.Time
}

// NewBearerTokenMiddleware creates a new BearerTokenMiddleware.
func NewBearerTokenMiddleware(ts TokenStore, us *store.UserStore, log *zap.Logger) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{tokens: ts, users: us, log: log, now: time.Now}
}

// Authenticate resolves the Authorization header to a user and puts it on the
// request context. Missing, unknown, revoked and expired tokens get a 401.
func (m *BearerTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plaintext, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		rec, err := m.tokens.GetByHash(r.Context(), HashToken(plaintext))
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}
		now := m.now()
		if !rec.Active(now) {
			writeUnauthorized(w, "token revoked or expired")
			return
		}

		user, err := m.users.GetByID(r.Context(), rec.UserID)
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}

		if !rec.LastUsedAt.Valid || now.Sub(rec.LastUsedAt.Time) > lastUsedResolution {
			go func(id string) {
				if err := m.tokens.UpdateLastUsed(context.Background(), id); err != nil {
					m.log.Warn("token last-used update failed", zap.String("token_id", id), zap.Error(err))
				}
			}(rec.ID)
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="edify"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": "UNAUTHORIZED"})
}
