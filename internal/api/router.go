package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/tools"
)

// defaultMaxBody bounds tool request bodies when Deps.MaxBodyBytes is unset.
const defaultMaxBody = 1 << 20

// Deps holds all dependencies required to build the API router.
type Deps struct {
	BearerAuth   *auth.BearerTokenMiddleware
	Runner       *tools.Runner
	ToolStore    *store.ToolStore
	Generations  *store.GenerationStore
	UserStore    *store.UserStore
	TokenStore   auth.TokenStore
	MaxBodyBytes int64
	Log          *zap.Logger
}

// NewAPIRouter creates a chi sub-router for /api/v1.
// All routes require Bearer token authentication and return application/json.
func NewAPIRouter(deps Deps) chi.Router {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = defaultMaxBody
	}

	r := chi.NewRouter()
	r.Use(jsonContentType)
	r.Use(deps.BearerAuth.Authenticate)

	registerToolRoutes(r, deps)
	registerGenerationRoutes(r, deps.Generations)
	registerUserRoutes(r)
	registerTokenRoutes(r, deps.TokenStore)
	registerAdminRoutes(r, deps.UserStore, deps.Generations)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
