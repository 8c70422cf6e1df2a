package handler

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/edify-labs/edify/docs/swagger"
	"github.com/edify-labs/edify/internal/api"
	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/tools"
	"github.com/edify-labs/edify/web"
)

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers
	AuthMiddleware *auth.Middleware
	Runner         *tools.Runner
	Catalog        *catalog.Catalog
	UserStore      *store.UserStore
	OrgStore       *store.OrganizationStore
	ToolStore      *store.ToolStore
	Generations    *store.GenerationStore
	TokenStore     auth.TokenStore
	DB             Pinger
	MaxUploadBytes int64
	Log            *zap.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Operational endpoints stay outside the session middleware.
	r.Get("/healthz", healthz(deps.DB))
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI and the API authenticate with bearer tokens only.
	r.Get("/api/docs/*", httpSwagger.WrapHandler)
	r.Mount("/api/v1", api.NewAPIRouter(api.Deps{
		BearerAuth:  auth.NewBearerTokenMiddleware(deps.TokenStore, deps.UserStore, deps.Log),
		Runner:      deps.Runner,
		ToolStore:   deps.ToolStore,
		Generations: deps.Generations,
		UserStore:   deps.UserStore,
		TokenStore:  deps.TokenStore,
		Log:         deps.Log,
	}))

	// Static assets (embedded). fs.Sub lets the file server see css/app.css
	// directly rather than static/css/app.css.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	r.Group(func(r chi.Router) {
		r.Use(deps.SessionManager.LoadAndSave)

		r.Get("/auth/login", deps.AuthHandlers.Login)
		r.Get("/auth/callback", deps.AuthHandlers.Callback)
		r.Post("/auth/logout", deps.AuthHandlers.Logout)

		// Theme toggle needs no auth.
		r.Post("/dashboard/theme", NewThemeHandler().Toggle)

		landing := NewLandingHandler(deps.Catalog)
		r.With(deps.AuthMiddleware.OptionalUser).Get("/", landing.Index)

		dashboard := NewDashboardHandler(deps.ToolStore, deps.Generations, deps.Catalog, deps.Log)
		toolsWeb := NewToolsHandler(deps.Runner, deps.ToolStore, deps.Catalog, deps.Log)
		history := NewHistoryHandler(deps.Generations, deps.Catalog)
		tokensWeb := NewTokensHandler(deps.TokenStore)
		upload := NewUploadHandler(deps.MaxUploadBytes, deps.Log)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.Get("/dashboard", dashboard.Show)

			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireTool)
				r.Get("/dashboard/tools/{slug}", toolsWeb.Form)
				r.Post("/dashboard/tools/{slug}", toolsWeb.Generate)
			})

			r.Get("/dashboard/history", history.Index)
			r.Get("/dashboard/history/{id}", history.Show)
			r.Get("/dashboard/history/{id}/download", history.Download)

			r.Post("/dashboard/upload", upload.Upload)

			r.Get("/dashboard/tokens", tokensWeb.Index)
			r.Post("/dashboard/tokens", tokensWeb.Create)
			r.Get("/dashboard/tokens/{id}/confirm-revoke", tokensWeb.ConfirmRevoke)
			r.Delete("/dashboard/tokens/{id}", tokensWeb.Revoke)
		})

		admin := NewAdminHandler(deps.UserStore, deps.OrgStore, deps.ToolStore, deps.Generations, deps.Catalog, deps.Log)
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole(store.RoleAdmin))

			r.Get("/admin", admin.Dashboard)

			r.Get("/admin/users", admin.Users)
			r.Put("/admin/users/{id}/role", admin.UpdateRole)
			r.Put("/admin/users/{id}/organization", admin.UpdateOrganization)
			r.Get("/admin/users/{id}/confirm-delete", admin.ConfirmDeleteUser)
			r.Delete("/admin/users/{id}", admin.DeleteUser)

			r.Get("/admin/organizations", admin.Organizations)
			r.Post("/admin/organizations", admin.CreateOrganization)
			r.Get("/admin/organizations/{id}", admin.Organization)
			r.Get("/admin/organizations/{id}/confirm-delete", admin.ConfirmDeleteOrganization)
			r.Delete("/admin/organizations/{id}", admin.DeleteOrganization)
			r.Post("/admin/organizations/{id}/members", admin.AddMember)
			r.Delete("/admin/organizations/{id}/members/{uid}", admin.RemoveMember)

			r.Get("/admin/tools", admin.Tools)
			r.Get("/admin/tools/{slug}", admin.Tool)
			r.Put("/admin/tools/{slug}/public", admin.SetPublic)
			r.Post("/admin/tools/{slug}/grants", admin.Grant)
			r.Delete("/admin/tools/{slug}/grants/{kind}/{id}", admin.Revoke)
		})
	})

	return r
}

// healthz answers 200 when the database responds within two seconds.
func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
