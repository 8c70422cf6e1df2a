package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edify-labs/edify/internal/auth"
)

type usersAPIHandler struct{}

func registerUserRoutes(r chi.Router) {
	h := &usersAPIHandler{}
	r.Get("/users/me", h.Me)
}

// Me returns the authenticated caller's profile.
//
// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /users/me [get]
func (h *usersAPIHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	writeJSON(w, http.StatusOK, userResponse(user))
}
