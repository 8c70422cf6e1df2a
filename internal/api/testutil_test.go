package api_test

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/api"
	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/llm"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/testutil"
	"github.com/edify-labs/edify/internal/tools"
	"github.com/edify-labs/edify/internal/tools/toolset"
)

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router      http.Handler
	Provider    *llm.MockProvider
	UserStore   *store.UserStore
	TokenStore  *auth.SQLTokenStore
	ToolStore   *store.ToolStore
	Generations *store.GenerationStore
}

// syncRecorder writes generations straight to the store so tests can read
// them back without waiting on the background writer.
type syncRecorder struct {
	gs *store.GenerationStore
	t  *testing.T
}

func (r syncRecorder) Record(g *store.Generation) {
	if err := r.gs.Record(context.Background(), g); err != nil {
		r.t.Errorf("record generation: %v", err)
	}
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// syncs the tool catalog and wires up the full API router with real stores
// and a mock model.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	us := store.NewUserStore(db)
	ts := auth.NewSQLTokenStore(db)
	toolStore := store.NewToolStore(db)
	gs := store.NewGenerationStore(db)

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if err := cat.Sync(context.Background(), toolStore); err != nil {
		t.Fatalf("sync catalog: %v", err)
	}

	mock := llm.NewMockProvider()
	client := ai.NewClient(mock, ai.Options{}, zap.NewNop())
	runner := tools.NewRunner(client, toolset.Default(), syncRecorder{gs: gs, t: t}, zap.NewNop())

	router := api.NewAPIRouter(api.Deps{
		BearerAuth:   auth.NewBearerTokenMiddleware(ts, us, zap.NewNop()),
		Runner:       runner,
		ToolStore:    toolStore,
		Generations:  gs,
		UserStore:    us,
		TokenStore:   ts,
		MaxBodyBytes: 4096,
	})
	return &testEnv{
		Router:      router,
		Provider:    mock,
		UserStore:   us,
		TokenStore:  ts,
		ToolStore:   toolStore,
		Generations: gs,
	}
}

// seedUser creates a user and returns the user record.
func seedUser(t *testing.T, env *testEnv, email, role string) *store.User {
	t.Helper()
	ctx := context.Background()
	u, err := env.UserStore.Upsert(ctx, "test", "sub-"+email, email, "Test User", "", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if role != store.RoleUser {
		u, err = env.UserStore.UpdateRole(ctx, u.ID, role)
		if err != nil {
			t.Fatalf("update role: %v", err)
		}
	}
	return u
}

// seedToken creates a real API token for a user and returns the plaintext Bearer value.
func seedToken(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	_, err = env.TokenStore.Create(context.Background(), userID, "test-token", hash, nil)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return plaintext
}

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
