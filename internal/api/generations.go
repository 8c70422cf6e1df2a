package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
)

type generationsAPIHandler struct {
	generations *store.GenerationStore
}

func registerGenerationRoutes(r chi.Router, gs *store.GenerationStore) {
	h := &generationsAPIHandler{generations: gs}
	r.Get("/generations", h.List)
	r.Get("/generations/{id}", h.Get)
}

// List returns the caller's generations, newest first.
//
// @Summary      List generations
// @Description  Returns a page of the caller's generation history. Pass next_cursor back as cursor for the next page.
// @Tags         Generations
// @Produce      json
// @Param        tool    query     string  false  "Filter by tool slug"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Param        cursor  query     string  false  "Pagination cursor"
// @Success      200     {object}  GenerationListResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Security     BearerToken
// @Router       /generations [get]
func (h *generationsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	cursor, limit := parsePagination(r)
	before, ok := decodeCursor(cursor)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid cursor", "BAD_REQUEST")
		return
	}

	// One extra row tells whether another page exists.
	gens, err := h.generations.ListPage(r.Context(), user.ID, r.URL.Query().Get("tool"), before, limit+1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := GenerationListResponse{Generations: make([]GenerationResponse, 0, len(gens))}
	if len(gens) > limit {
		gens = gens[:limit]
		next := encodeCursor(gens[len(gens)-1].CreatedAt)
		resp.NextCursor = &next
	}
	for _, g := range gens {
		resp.Generations = append(resp.Generations, generationResponse(g, false))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one generation with its input and output.
//
// @Summary      Get a generation
// @Description  Returns a generation owned by the caller. Admins may read any generation.
// @Tags         Generations
// @Produce      json
// @Param        id   path      string  true  "Generation ID"
// @Success      200  {object}  GenerationResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /generations/{id} [get]
func (h *generationsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	g, err := h.generations.GetForUser(r.Context(), chi.URLParam(r, "id"), user)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "generation not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, generationResponse(g, true))
}
