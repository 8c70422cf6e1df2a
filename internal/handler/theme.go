package handler

import (
	"encoding/json"
	"net/http"
)

// ThemeHandler handles the theme toggle endpoint.
type ThemeHandler struct{}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Toggle handles POST /dashboard/theme.
// No auth required; sets the theme cookie and returns HX-Trigger for client-side swap.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	theme := r.FormValue("theme")
	if theme != themeLight && theme != themeDark {
		http.Error(w, "invalid theme", http.StatusBadRequest)
		return
	}

	// Not HttpOnly: the anti-flash script in base.html reads it.
	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	})

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"theme": theme},
	})
	w.Header().Set("HX-Trigger", string(trigger))
	w.WriteHeader(http.StatusOK)
}
