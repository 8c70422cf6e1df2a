package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/edify-labs/edify/internal/markdown"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/web"
)

const (
	themeLight = "edify-light"
	themeDark  = "edify-dark"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Theme string      // themeLight, themeDark, or "" (let inline script decide)
	User  *store.User // nil for unauthenticated pages
	Flash *Flash
}

func newBasePage(r *http.Request, user *store.User) BasePage {
	return BasePage{Theme: themeFromRequest(r), User: user}
}

// themeFromRequest reads the "theme" cookie. Returns "" if absent or invalid,
// so the server omits data-theme and lets the anti-flash inline script handle it.
func themeFromRequest(r *http.Request) string {
	c, err := r.Cookie("theme")
	if err != nil {
		return ""
	}
	if c.Value == themeLight || c.Value == themeDark {
		return c.Value
	}
	return ""
}

var funcs = template.FuncMap{
	"markdown": markdown.ToHTML,
	"join":     strings.Join,
	"add":      func(a, b int) int { return a + b },
	// checked reports whether the posted values for key include val.
	"checked": func(v url.Values, key, val string) bool {
		return slices.Contains(v[key], val)
	},
	"userRow": func(u *store.User, orgs []*store.OrganizationSummary, current *store.User) UserRow {
		return UserRow{User: u, Organizations: orgs, Self: current != nil && current.ID == u.ID}
	},
}

// pageCache maps a render key (e.g. "dashboard.html", "admin/users.html") to a
// compiled template set containing base.html + partials + that one page file.
// Each page gets its own set so {{define "content"}} blocks don't collide.
var (
	pageCache    map[string]*template.Template
	fragmentTmpl *template.Template
)

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}

	// Standalone set for global HTMX fragment rendering (partials only).
	fragmentTmpl = template.Must(template.New("").Funcs(funcs).ParseFS(web.TemplateFS, partials...))

	// Count how many page files share each basename to detect collisions.
	baseCount := map[string]int{}
	_ = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}
		baseCount[filepath.Base(p)]++
		return nil
	})

	pageCache = make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}

		files := make([]string, 0, 2+len(partials))
		files = append(files, "templates/base.html")
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New("").Funcs(funcs).ParseFS(web.TemplateFS, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		rel, _ := strings.CutPrefix(p, "templates/pages/")
		pageCache[rel] = t

		// Alias under bare basename when it is unique across all page files.
		base := filepath.Base(p)
		if baseCount[base] == 1 {
			pageCache[base] = t
		}

		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// ConfirmDeleteData feeds the shared confirmation modal.
type ConfirmDeleteData struct {
	Name      string
	DeleteURL string
	Target    string
}

// isHTMX returns true when the request was sent by HTMX.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render executes a full-page template (base layout + named page).
// tmpl is the render key, e.g. "dashboard.html" or "admin/users.html".
func render(w http.ResponseWriter, tmpl string, data any) {
	renderStatus(w, http.StatusOK, tmpl, data)
}

// renderStatus is render with a non-200 status, used to redisplay forms
// with validation errors.
func renderStatus(w http.ResponseWriter, status int, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// renderFragment executes a named template from the global partials set.
// Use for standalone HTMX partials (token_list, upload_result, etc.).
func renderFragment(w http.ResponseWriter, tmpl string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fragmentTmpl.ExecuteTemplate(w, tmpl, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// renderPageFragment executes a named template from a specific page's template set.
// Use for HTMX partial renders that need a page-local named template
// (e.g. "user_row" in admin/users.html).
func renderPageFragment(w http.ResponseWriter, page, tmpl string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t, ok := pageCache[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, tmpl, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}
