package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// ToolAccess reports whether a user may run a tool.
type ToolAccess interface {
	CanUse(ctx context.Context, user *store.User, slug string) (bool, error)
}

// Middleware provides HTTP middleware for authentication and authorization.
type Middleware struct {
	sessions *scs.SessionManager
	users    *store.UserStore
	tools    ToolAccess
	log      *zap.Logger
}

// NewMiddleware creates a new auth Middleware.
func NewMiddleware(sm *scs.SessionManager, us *store.UserStore, tools ToolAccess, log *zap.Logger) *Middleware {
	return &Middleware{sessions: sm, users: us, tools: tools, log: log}
}

// sessionUser loads the user referenced by the session, or nil. A session
// pointing at a deleted user is destroyed.
func (m *Middleware) sessionUser(r *http.Request) *store.User {
	userID := m.sessions.GetString(r.Context(), SessionUserIDKey)
	if userID == "" {
		return nil
	}
	user, err := m.users.GetByID(r.Context(), userID)
	if err != nil {
		_ = m.sessions.Destroy(r.Context())
		return nil
	}
	return user
}

// RequireAuth redirects to /auth/login when no valid session exists.
// On success, sets the *store.User on the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.sessionUser(r)
		if user == nil {
			target := "/auth/login?redirect=" + url.QueryEscape(r.URL.RequestURI())
			// HTMX follows HX-Redirect instead of swapping the login page into a fragment.
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", target)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// OptionalUser sets the session user on the context when there is one and
// never blocks the request.
func (m *Middleware) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := m.sessionUser(r); user != nil {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns a middleware that requires the user to have the given role.
// Must be used after RequireAuth.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || user.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTool rejects users who may not run the tool named by the {slug}
// route parameter. Must be used after RequireAuth.
func (m *Middleware) RequireTool(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		slug := chi.URLParam(r, "slug")
		if user == nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ok, err := m.tools.CanUse(r.Context(), user, slug)
		if err != nil {
			m.log.Error("tool access check failed", zap.String("tool", slug), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "you do not have access to this tool", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext retrieves the authenticated user from the context.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(UserContextKey).(*store.User)
	return u
}
