package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/tools"
)

type toolsAPIHandler struct {
	runner  *tools.Runner
	tools   *store.ToolStore
	maxBody int64
	log     *zap.Logger
}

func registerToolRoutes(r chi.Router, deps Deps) {
	h := &toolsAPIHandler{runner: deps.Runner, tools: deps.ToolStore, maxBody: deps.MaxBodyBytes, log: deps.Log.Named("api")}
	r.Get("/tools", h.List)
	r.Post("/tools/{slug}", h.Generate)
}

// List returns the tools the caller may use.
//
// @Summary      List usable tools
// @Description  Returns the catalog entries the caller has access to, in catalog order.
// @Tags         Tools
// @Produce      json
// @Success      200  {object}  ToolListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /tools [get]
func (h *toolsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	list, err := h.tools.ListUsable(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := ToolListResponse{Tools: make([]ToolResponse, 0, len(list))}
	for _, t := range list {
		resp.Tools = append(resp.Tools, ToolResponse{
			Slug:        t.Slug,
			Name:        t.Name,
			Description: t.Description,
			Icon:        t.Icon,
			Implemented: t.Implemented && h.runner.Registry().Has(t.Slug),
			Public:      t.IsPublic,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Generate runs a tool with the JSON body as its input.
//
// @Summary      Run a tool
// @Description  Validates the body against the tool's input rules, calls the model and validates the result. Input errors return per-field details; model output that fails the response schema returns VALIDATION_ERROR with the violations.
// @Tags         Tools
// @Accept       json
// @Produce      json
// @Param        slug  path      string  true  "Tool slug, e.g. lesson-planner"
// @Param        body  body      object  true  "Tool input"
// @Success      200   {object}  GenerateResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      413   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      501   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Failure      504   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /tools/{slug} [post]
func (h *toolsAPIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	tool, err := h.tools.GetBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "tool not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	ok, err := h.tools.CanUse(r.Context(), user, slug)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "you do not have access to this tool", "FORBIDDEN")
		return
	}
	if !tool.Implemented || !h.runner.Registry().Has(slug) {
		writeError(w, http.StatusNotImplemented, "this tool is not available yet", "NOT_IMPLEMENTED")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "TOO_LARGE")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	run, err := h.runner.RunJSON(r.Context(), user, slug, body)
	if err != nil {
		h.log.Debug("tool run failed", zap.String("tool", slug), zap.Error(err))
		writeRunError(w, err)
		return
	}

	out := run.Output
	writeJSON(w, http.StatusOK, GenerateResponse{
		Data:     out.Data,
		Markdown: out.Markdown,
		Usage: UsageResponse{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
			TotalTokens:  out.Usage.TotalTokens,
		},
		Model:        out.Model,
		GenerationID: run.ID,
	})
}
