package handler

import (
	"net/http"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
)

// LandingPage is the template data for the public landing page.
type LandingPage struct {
	BasePage
	Tools []catalog.Entry
	Fact  string
}

// LandingHandler serves the public landing page.
type LandingHandler struct {
	catalog *catalog.Catalog
}

// NewLandingHandler creates a new LandingHandler.
func NewLandingHandler(c *catalog.Catalog) *LandingHandler { return &LandingHandler{catalog: c} }

// Index serves GET /. Authenticated users are redirected to /dashboard.
func (h *LandingHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	render(w, "landing.html", LandingPage{
		BasePage: newBasePage(r, nil),
		Tools:    h.catalog.Tools,
		Fact:     h.catalog.RandomFact(),
	})
}
