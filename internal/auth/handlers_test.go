package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/testutil"
)

type fakeIdentityProvider struct {
	id *auth.Identity
}

func (f *fakeIdentityProvider) AuthCodeURL(state, challenge string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state) + "&code_challenge=" + challenge
}

func (f *fakeIdentityProvider) Exchange(ctx context.Context, code, verifier string) (*auth.Identity, error) {
	return f.id, nil
}

type authEnv struct {
	users   *store.UserStore
	tools   *store.ToolStore
	handler http.Handler
}

func newAuthEnv(t *testing.T, id *auth.Identity) *authEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	us := store.NewUserStore(db)
	ts := store.NewToolStore(db)
	sm := auth.NewSessionManager(db, "sqlite3", time.Hour, false)
	log := zap.NewNop()

	h := auth.NewHandlers(&fakeIdentityProvider{id: id}, sm, us, "head@school.example", false, log)
	mw := auth.NewMiddleware(sm, us, ts, log)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get("/auth/login", h.Login)
	r.Get("/auth/callback", h.Callback)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("hello " + auth.UserFromContext(r.Context()).DisplayName))
		})
		r.With(mw.RequireRole(store.RoleAdmin)).Get("/admin", func(w http.ResponseWriter, r *http.Request) {})
		r.With(mw.RequireTool).Get("/dashboard/tools/{slug}", func(w http.ResponseWriter, r *http.Request) {})
	})
	return &authEnv{users: us, tools: ts, handler: r}
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_SetsPreAuthCookies(t *testing.T) {
	env := newAuthEnv(t, nil)

	tests := []struct {
		redirect string
		want     string
	}{
		{"/dashboard/tools/lesson-planner", "/dashboard/tools/lesson-planner"},
		{"", "/dashboard"},
		{"//evil.example.com", "/dashboard"},
		{"https://evil.example.com", "/dashboard"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect="+url.QueryEscape(tt.redirect), nil)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "https://idp.example.com/authorize") {
			t.Errorf("Location = %q", loc)
		}
		c := cookieNamed(rec.Result().Cookies(), "__edify_redirect")
		if c == nil || c.Value != tt.want {
			t.Errorf("redirect %q: cookie = %+v, want %q", tt.redirect, c, tt.want)
		}
		if cookieNamed(rec.Result().Cookies(), "__edify_pkce") == nil {
			t.Error("missing PKCE verifier cookie")
		}
	}
}

func callback(t *testing.T, env *authEnv, state string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state="+state+"&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "__edify_state", Value: "s1"})
	req.AddCookie(&http.Cookie{Name: "__edify_pkce", Value: "verifier"})
	req.AddCookie(&http.Cookie{Name: "__edify_redirect", Value: "/dashboard"})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func TestCallback_ProvisionsAdminAndSession(t *testing.T) {
	env := newAuthEnv(t, &auth.Identity{
		Issuer:  "https://idp.example.com",
		Subject: "abc",
		Email:   "head@school.example",
		Picture: "https://idp.example.com/p.png",
	})

	rec := callback(t, env, "s1")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}

	u, err := env.users.GetByEmail(context.Background(), "head@school.example")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if !u.IsAdmin() || u.DisplayName != "head" || u.AvatarURL == "" {
		t.Errorf("user = %+v", u)
	}

	session := cookieNamed(rec.Result().Cookies(), "edify_session")
	if session == nil {
		t.Fatal("no session cookie issued")
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "hello head" {
		t.Errorf("dashboard = %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}

func TestCallback_StateMismatch(t *testing.T) {
	env := newAuthEnv(t, &auth.Identity{Subject: "abc", Email: "a@example.com"})
	rec := callback(t, env, "forged")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRequireAuth_Redirects(t *testing.T) {
	env := newAuthEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/tools/lesson-planner", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	want := "/auth/login?redirect=" + url.QueryEscape("/dashboard/tools/lesson-planner")
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("htmx status = %d, want 401", rec.Code)
	}
	want = "/auth/login?redirect=" + url.QueryEscape("/dashboard")
	if got := rec.Header().Get("HX-Redirect"); got != want {
		t.Errorf("HX-Redirect = %q, want %q", got, want)
	}
}

func TestRequireTool(t *testing.T) {
	env := newAuthEnv(t, &auth.Identity{Issuer: "test", Subject: "t1", Email: "teacher@example.com", Name: "Teacher"})
	ctx := context.Background()
	if err := env.tools.Sync(ctx, []store.ToolDef{
		{Slug: "lesson-planner", Name: "Lesson Planner", Implemented: true},
		{Slug: "rubric-generator", Name: "Rubric Generator", Implemented: true},
	}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := env.tools.SetPublic(ctx, "rubric-generator", false); err != nil {
		t.Fatalf("set public: %v", err)
	}

	session := cookieNamed(callback(t, env, "s1").Result().Cookies(), "edify_session")
	if session == nil {
		t.Fatal("no session cookie issued")
	}

	for slug, want := range map[string]int{
		"lesson-planner":   http.StatusOK,
		"rubric-generator": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/tools/"+slug, nil)
		req.AddCookie(session)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", slug, rec.Code, want)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin /admin status = %d, want 403", rec.Code)
	}
}

func TestIdentityDisplayName(t *testing.T) {
	if got := (auth.Identity{Name: "  Ms Rivera "}).DisplayName(); got != "Ms Rivera" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := (auth.Identity{Email: "j.rivera@school.example"}).DisplayName(); got != "j.rivera" {
		t.Errorf("fallback DisplayName = %q", got)
	}
}
