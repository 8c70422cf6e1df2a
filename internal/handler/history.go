package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/store"
)

// historyPageSize is how many generations one history page lists.
const historyPageSize = 25

// HistoryPage is the template data for the generation history list.
type HistoryPage struct {
	BasePage
	Generations []*store.Generation
	Names       map[string]string
	Tool        string // current tool filter
	Next        string // "before" value for the next page; empty on the last page
}

// GenerationPage is the template data for one generation.
type GenerationPage struct {
	BasePage
	Generation *store.Generation
	ToolName   string
	Input      string // indented input JSON
	Result     ResultView
}

// HistoryHandler serves the user's generation history.
type HistoryHandler struct {
	generations *store.GenerationStore
	catalog     *catalog.Catalog
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(gs *store.GenerationStore, c *catalog.Catalog) *HistoryHandler {
	return &HistoryHandler{generations: gs, catalog: c}
}

// Index renders GET /dashboard/history. ?tool= filters by tool and ?before=
// pages back through older generations.
func (h *HistoryHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	tool := r.URL.Query().Get("tool")

	var before time.Time
	if b := r.URL.Query().Get("before"); b != "" {
		t, err := time.Parse(time.RFC3339Nano, b)
		if err != nil {
			http.Error(w, "invalid before parameter", http.StatusBadRequest)
			return
		}
		before = t
	}

	gens, err := h.generations.ListPage(r.Context(), user.ID, tool, before, historyPageSize+1)
	if err != nil {
		http.Error(w, "could not load history", http.StatusInternalServerError)
		return
	}

	data := HistoryPage{
		BasePage: newBasePage(r, user),
		Names:    toolNames(h.catalog),
		Tool:     tool,
	}
	if len(gens) > historyPageSize {
		gens = gens[:historyPageSize]
		data.Next = gens[len(gens)-1].CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	data.Generations = gens

	if isHTMX(r) {
		renderPageFragment(w, "history/index.html", "history_rows", data)
		return
	}
	render(w, "history/index.html", data)
}

// load fetches the {id} generation for the current user, writing a 404 when
// it does not exist or belongs to someone else.
func (h *HistoryHandler) load(w http.ResponseWriter, r *http.Request) (*store.Generation, bool) {
	user := auth.UserFromContext(r.Context())
	g, err := h.generations.GetForUser(r.Context(), chi.URLParam(r, "id"), user)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		http.Error(w, "could not load generation", http.StatusInternalServerError)
		return nil, false
	}
	return g, true
}

// generationMarkdown returns the rendered markdown stored with a successful
// generation, or "".
func generationMarkdown(g *store.Generation) string {
	if !g.OutputJSON.Valid {
		return ""
	}
	return gjson.Get(g.OutputJSON.String, "markdown").String()
}

// Show renders GET /dashboard/history/{id}.
func (h *HistoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	g, ok := h.load(w, r)
	if !ok {
		return
	}

	input := g.InputJSON
	var buf bytes.Buffer
	if json.Indent(&buf, []byte(g.InputJSON), "", "  ") == nil {
		input = buf.String()
	}

	name := g.ToolSlug
	if e, ok := h.catalog.Get(g.ToolSlug); ok {
		name = e.Name
	}

	render(w, "history/show.html", GenerationPage{
		BasePage:   newBasePage(r, user),
		Generation: g,
		ToolName:   name,
		Input:      input,
		Result:     newResultView(g.ToolSlug, generationMarkdown(g)),
	})
}

// Download serves GET /dashboard/history/{id}/download as a markdown file.
func (h *HistoryHandler) Download(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r)
	if !ok {
		return
	}
	md := generationMarkdown(g)
	if md == "" {
		http.Error(w, "this generation has no content to download", http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("%s-%s.md", g.ToolSlug, g.CreatedAt.UTC().Format("2006-01-02-1504"))
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write([]byte(md))
}
