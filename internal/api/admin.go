package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/store"
)

type adminAPIHandler struct {
	users       *store.UserStore
	generations *store.GenerationStore
}

// registerAdminRoutes registers admin routes inside a group that requires
// the admin role.
func registerAdminRoutes(r chi.Router, users *store.UserStore, generations *store.GenerationStore) {
	h := &adminAPIHandler{users: users, generations: generations}

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(requireAdmin)

		admin.Get("/stats", h.Stats)
		admin.Get("/users", h.ListUsers)
		admin.Put("/users/{id}/role", h.UpdateRole)
	})
}

// requireAdmin is middleware that enforces role = admin on all routes in the group.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
			return
		}
		if !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "FORBIDDEN")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stats returns the user count and per-tool generation totals.
//
// @Summary      Usage statistics (admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  StatsResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/stats [get]
func (h *adminAPIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.users.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	stats, err := h.generations.StatsByTool(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := StatsResponse{Users: count, Tools: make([]ToolStatsResponse, 0, len(stats))}
	for _, s := range stats {
		resp.Tools = append(resp.Tools, ToolStatsResponse{
			Tool:         s.ToolSlug,
			Total:        s.Total,
			Failed:       s.Failed,
			Canceled:     s.Canceled,
			InputTokens:  s.InputTokens,
			OutputTokens: s.OutputTokens,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListUsers returns all users in the system.
//
// @Summary      List all users (admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  UserListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users [get]
func (h *adminAPIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := &UserListResponse{Users: make([]*UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, userResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateRole changes a user's role.
//
// @Summary      Update user role (admin)
// @Description  Changes a user's role. Valid values: "user", "admin".
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User ID"
// @Param        body  body      UpdateRoleRequest  true  "New role"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users/{id}/role [put]
func (h *adminAPIHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if err := store.ValidateUserRole(req.Role); err != nil {
		writeError(w, http.StatusBadRequest, `role must be "user" or "admin"`, "BAD_REQUEST")
		return
	}

	updated, err := h.users.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, userResponse(updated))
}
