package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealthz(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
	}{
		{"no database", nil, http.StatusOK},
		{"healthy", pinger{}, http.StatusOK},
		{"down", pinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthz(tt.db)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestThemeToggle(t *testing.T) {
	h := NewThemeHandler()

	rec := httptest.NewRecorder()
	h.Toggle(rec, postForm("/dashboard/theme", url.Values{"theme": {themeDark}}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "theme" || cookies[0].Value != themeDark {
		t.Errorf("cookies = %v", cookies)
	}
	if rec.Header().Get("HX-Trigger") == "" {
		t.Error("missing HX-Trigger header")
	}

	rec = httptest.NewRecorder()
	h.Toggle(rec, postForm("/dashboard/theme", url.Values{"theme": {"dracula"}}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d, want 400", rec.Code)
	}
}

func TestThemeFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := themeFromRequest(req); got != "" {
		t.Errorf("no cookie: got %q", got)
	}
	req.AddCookie(&http.Cookie{Name: "theme", Value: "neon"})
	if got := themeFromRequest(req); got != "" {
		t.Errorf("unknown theme: got %q", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: themeLight})
	if got := themeFromRequest(req); got != themeLight {
		t.Errorf("got %q, want %q", got, themeLight)
	}
}

func TestPageCache(t *testing.T) {
	for _, key := range []string{
		"landing.html", "dashboard.html", "tokens.html",
		"tools/form.html", "tools/result.html",
		"history/index.html", "history/show.html",
		"admin/dashboard.html", "admin/users.html", "admin/organizations.html",
		"admin/organization.html", "admin/tools.html", "admin/tool.html",
	} {
		if _, ok := pageCache[key]; !ok {
			t.Errorf("page %q not in cache", key)
		}
	}
	for _, name := range []string{"token_list", "upload_result", "confirm_delete", "toast", "result"} {
		if fragmentTmpl.Lookup(name) == nil {
			t.Errorf("fragment %q not defined", name)
		}
	}
}
