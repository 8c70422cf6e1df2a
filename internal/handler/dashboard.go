package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/store"
)

// recentLimit is how many generations the dashboard lists.
const recentLimit = 5

// DashboardPage is the template data for the dashboard view.
type DashboardPage struct {
	BasePage
	Tools  []*store.Tool
	Recent []*store.Generation
	Names  map[string]string // tool slug -> display name
	Fact   string
}

// DashboardHandler serves the authenticated tool dashboard.
type DashboardHandler struct {
	tools       *store.ToolStore
	generations *store.GenerationStore
	catalog     *catalog.Catalog
	log         *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ts *store.ToolStore, gs *store.GenerationStore, c *catalog.Catalog, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{tools: ts, generations: gs, catalog: c, log: log}
}

// toolNames maps catalog slugs to display names for history listings.
func toolNames(c *catalog.Catalog) map[string]string {
	names := make(map[string]string, len(c.Tools))
	for _, e := range c.Tools {
		names[e.Slug] = e.Name
	}
	return names
}

// Show renders the tools the user may run and their most recent generations.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	usable, err := h.tools.ListUsable(r.Context(), user)
	if err != nil {
		h.log.Error("list usable tools", zap.String("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not load tools", http.StatusInternalServerError)
		return
	}
	recent, err := h.generations.ListByUser(r.Context(), user.ID, "", recentLimit)
	if err != nil {
		h.log.Error("list recent generations", zap.String("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not load history", http.StatusInternalServerError)
		return
	}

	render(w, "dashboard.html", DashboardPage{
		BasePage: newBasePage(r, user),
		Tools:    usable,
		Recent:   recent,
		Names:    toolNames(h.catalog),
		Fact:     h.catalog.RandomFact(),
	})
}
