package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/testutil"
	"github.com/edify-labs/edify/internal/tools"
	"github.com/edify-labs/edify/internal/tools/toolset"
)

// testEnv wires the web handlers over a fresh in-memory database.
type testEnv struct {
	Provider    *llm.MockProvider
	Catalog     *catalog.Catalog
	Users       *store.UserStore
	Orgs        *store.OrganizationStore
	Tools       *store.ToolStore
	Generations *store.GenerationStore
	Tokens      *auth.SQLTokenStore
	Runner      *tools.Runner
}

type storeRecorder struct {
	gs *store.GenerationStore
	t  *testing.T
}

func (r storeRecorder) Record(g *store.Generation) {
	if err := r.gs.Record(context.Background(), g); err != nil {
		r.t.Errorf("record generation: %v", err)
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	ts := store.NewToolStore(db)
	if err := cat.Sync(context.Background(), ts); err != nil {
		t.Fatalf("sync catalog: %v", err)
	}

	gs := store.NewGenerationStore(db)
	mock := llm.NewMockProvider()
	client := ai.NewClient(mock, ai.Options{}, zap.NewNop())

	return &testEnv{
		Provider:    mock,
		Catalog:     cat,
		Users:       store.NewUserStore(db),
		Orgs:        store.NewOrganizationStore(db),
		Tools:       ts,
		Generations: gs,
		Tokens:      auth.NewSQLTokenStore(db),
		Runner:      tools.NewRunner(client, toolset.Default(), storeRecorder{gs: gs, t: t}, zap.NewNop()),
	}
}

func (env *testEnv) seedUser(t *testing.T, email, role string) *store.User {
	t.Helper()
	ctx := context.Background()
	u, err := env.Users.Upsert(ctx, "test", "sub-"+email, email, "Test "+email, "", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if role != store.RoleUser {
		if u, err = env.Users.UpdateRole(ctx, u.ID, role); err != nil {
			t.Fatalf("update role: %v", err)
		}
	}
	return u
}

// asUser injects user into the request context the way RequireAuth does.
func asUser(user *store.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// router builds a chi router with user injected and register's routes.
func router(user *store.User, register func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(asUser(user))
	register(r)
	return r
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
