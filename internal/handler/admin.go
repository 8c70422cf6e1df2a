package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/metrics"
	"github.com/edify-labs/edify/internal/store"
)

// AdminHandler serves admin views.
type AdminHandler struct {
	users       *store.UserStore
	orgs        *store.OrganizationStore
	tools       *store.ToolStore
	generations *store.GenerationStore
	catalog     *catalog.Catalog
	log         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(us *store.UserStore, orgs *store.OrganizationStore, ts *store.ToolStore, gs *store.GenerationStore, c *catalog.Catalog, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: us, orgs: orgs, tools: ts, generations: gs, catalog: c, log: log.Named("admin")}
}

// AdminDashboardPage is the template data for the admin overview.
type AdminDashboardPage struct {
	BasePage
	UserCount         int
	OrganizationCount int
	ToolCount         int
	Stats             []store.ToolStats
	Names             map[string]string
}

// AdminUsersPage is the template data for the user management list.
type AdminUsersPage struct {
	BasePage
	Users         []*store.User
	Organizations []*store.OrganizationSummary
}

// UserRow is the data for one row of the user table.
type UserRow struct {
	User          *store.User
	Organizations []*store.OrganizationSummary
	Self          bool
}

// Dashboard renders the admin overview with summary stats.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	users, err := h.users.Count(r.Context())
	if err != nil {
		http.Error(w, "could not load stats", http.StatusInternalServerError)
		return
	}
	metrics.UsersTotal.Set(float64(users))
	orgs, _ := h.orgs.List(r.Context())
	tools, _ := h.tools.List(r.Context())
	stats, err := h.generations.StatsByTool(r.Context())
	if err != nil {
		http.Error(w, "could not load stats", http.StatusInternalServerError)
		return
	}

	render(w, "admin/dashboard.html", AdminDashboardPage{
		BasePage:          newBasePage(r, user),
		UserCount:         users,
		OrganizationCount: len(orgs),
		ToolCount:         len(tools),
		Stats:             stats,
		Names:             toolNames(h.catalog),
	})
}

// Users renders the user management list.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		http.Error(w, "could not load users", http.StatusInternalServerError)
		return
	}
	orgs, _ := h.orgs.List(r.Context())
	render(w, "admin/users.html", AdminUsersPage{
		BasePage:      newBasePage(r, user),
		Users:         users,
		Organizations: orgs,
	})
}

func (h *AdminHandler) userRow(w http.ResponseWriter, r *http.Request, target *store.User) {
	orgs, _ := h.orgs.List(r.Context())
	current := auth.UserFromContext(r.Context())
	renderPageFragment(w, "admin/users.html", "user_row", UserRow{
		User:          target,
		Organizations: orgs,
		Self:          current != nil && current.ID == target.ID,
	})
}

// UpdateRole handles PUT /admin/users/{id}/role and returns the updated row fragment.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	role := r.FormValue("role")
	if err := store.ValidateUserRole(role); err != nil {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}
	if current := auth.UserFromContext(r.Context()); current.ID == id && role != store.RoleAdmin {
		http.Error(w, "you cannot remove your own admin role", http.StatusBadRequest)
		return
	}
	target, err := h.users.UpdateRole(r.Context(), id, role)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	h.log.Info("user role changed", zap.String("user_id", id), zap.String("role", role))
	h.userRow(w, r, target)
}

// UpdateOrganization handles PUT /admin/users/{id}/organization. The user
// is added to the organization as a member when not already one.
func (h *AdminHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	orgID := r.FormValue("organization_id")
	if orgID != "" {
		if _, err := h.orgs.GetByID(r.Context(), orgID); err != nil {
			http.Error(w, "unknown organization", http.StatusBadRequest)
			return
		}
		err := h.orgs.AddMember(r.Context(), orgID, id, store.MemberRole)
		if err != nil && !errors.Is(err, store.ErrAlreadyMember) {
			http.Error(w, "update failed", http.StatusInternalServerError)
			return
		}
	}
	target, err := h.users.SetOrganization(r.Context(), id, orgID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	h.userRow(w, r, target)
}

// ConfirmDeleteUser renders the delete confirmation modal for a user.
func (h *AdminHandler) ConfirmDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	renderFragment(w, "confirm_delete", ConfirmDeleteData{
		Name:      target.DisplayName,
		DeleteURL: "/admin/users/" + id,
		Target:    "#user-" + id,
	})
}

// DeleteUser handles DELETE /admin/users/{id}. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if current := auth.UserFromContext(r.Context()); current.ID == id {
		http.Error(w, "you cannot delete your own account", http.StatusBadRequest)
		return
	}
	err := h.users.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	h.log.Info("user deleted", zap.String("user_id", id))
	toast(w, "User deleted.")
}

// toast writes an out-of-band success alert. The swapped element itself is
// replaced by the empty body.
func toast(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = fragmentTmpl.ExecuteTemplate(w, "toast", Flash{Type: "success", Message: msg})
}

// --- Organizations ---

// AdminOrganizationsPage is the template data for the organization list.
type AdminOrganizationsPage struct {
	BasePage
	Organizations []*store.OrganizationSummary
	Name          string
	Slug          string
	Error         string
}

// AdminOrganizationPage is the template data for one organization.
type AdminOrganizationPage struct {
	BasePage
	Organization *store.Organization
	Members      []*store.Member
	Roles        []string
	Error        string
}

// Organizations renders GET /admin/organizations.
func (h *AdminHandler) Organizations(w http.ResponseWriter, r *http.Request) {
	h.renderOrganizations(w, r, http.StatusOK, AdminOrganizationsPage{})
}

func (h *AdminHandler) renderOrganizations(w http.ResponseWriter, r *http.Request, status int, data AdminOrganizationsPage) {
	orgs, err := h.orgs.List(r.Context())
	if err != nil {
		http.Error(w, "could not load organizations", http.StatusInternalServerError)
		return
	}
	data.BasePage = newBasePage(r, auth.UserFromContext(r.Context()))
	data.Organizations = orgs
	renderStatus(w, status, "admin/organizations.html", data)
}

// CreateOrganization handles POST /admin/organizations. An empty slug is
// derived from the name.
func (h *AdminHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	slug := strings.TrimSpace(r.FormValue("slug"))
	data := AdminOrganizationsPage{Name: name, Slug: slug}
	if name == "" {
		data.Error = "Organization name is required."
		h.renderOrganizations(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	org, err := h.orgs.Create(r.Context(), name, slug, strings.TrimSpace(r.FormValue("logo_url")))
	switch {
	case errors.Is(err, store.ErrSlugTaken):
		data.Error = "That slug is already used by another organization."
	case errors.Is(err, store.ErrSlugInvalid), errors.Is(err, store.ErrSlugReserved):
		data.Error = "Slugs use lowercase letters, digits and hyphens, and cannot be a reserved word."
	case err != nil:
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	if data.Error != "" {
		h.renderOrganizations(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	h.log.Info("organization created", zap.String("organization_id", org.ID), zap.String("slug", org.Slug))
	http.Redirect(w, r, "/admin/organizations/"+org.ID, http.StatusSeeOther)
}

// Organization renders GET /admin/organizations/{id} with its members.
func (h *AdminHandler) Organization(w http.ResponseWriter, r *http.Request) {
	h.renderOrganization(w, r, http.StatusOK, "")
}

func (h *AdminHandler) renderOrganization(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	org, err := h.orgs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "could not load organization", http.StatusInternalServerError)
		return
	}
	members, err := h.orgs.ListMembers(r.Context(), org.ID)
	if err != nil {
		http.Error(w, "could not load members", http.StatusInternalServerError)
		return
	}
	renderStatus(w, status, "admin/organization.html", AdminOrganizationPage{
		BasePage:     newBasePage(r, auth.UserFromContext(r.Context())),
		Organization: org,
		Members:      members,
		Roles:        []string{store.MemberRole, store.MemberAdmin, store.MemberOwner},
		Error:        errMsg,
	})
}

// AddMember handles POST /admin/organizations/{id}/members by email.
func (h *AdminHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	role := r.FormValue("role")

	member, err := h.users.GetByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		h.renderOrganization(w, r, http.StatusUnprocessableEntity, "No user has signed in with that email yet.")
		return
	}
	if err != nil {
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	err = h.orgs.AddMember(r.Context(), orgID, member.ID, role)
	switch {
	case errors.Is(err, store.ErrAlreadyMember):
		h.renderOrganization(w, r, http.StatusUnprocessableEntity, "That user is already a member.")
		return
	case errors.Is(err, store.ErrInvalidRole):
		h.renderOrganization(w, r, http.StatusUnprocessableEntity, "Choose a member role.")
		return
	case err != nil:
		http.Error(w, "add member failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/organizations/"+orgID, http.StatusSeeOther)
}

// RemoveMember handles DELETE /admin/organizations/{id}/members/{uid}.
func (h *AdminHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.orgs.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "uid"))
	if errors.Is(err, store.ErrNotMember) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "remove failed", http.StatusInternalServerError)
		return
	}
	toast(w, "Member removed.")
}

// ConfirmDeleteOrganization renders the delete confirmation modal for an organization.
func (h *AdminHandler) ConfirmDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	org, err := h.orgs.GetByID(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	renderFragment(w, "confirm_delete", ConfirmDeleteData{
		Name:      org.Name,
		DeleteURL: "/admin/organizations/" + id,
		Target:    "#org-" + id,
	})
}

// DeleteOrganization handles DELETE /admin/organizations/{id}.
func (h *AdminHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.orgs.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}
	h.log.Info("organization deleted", zap.String("organization_id", id))
	toast(w, "Organization deleted.")
}

// --- Tools ---

// AdminToolsPage is the template data for the tool access list.
type AdminToolsPage struct {
	BasePage
	Tools []*store.Tool
}

// AdminToolPage is the template data for one tool's grants.
type AdminToolPage struct {
	BasePage
	Tool          *store.Tool
	Grants        []*store.ToolGrant
	Organizations []*store.OrganizationSummary
	Error         string
}

// Tools renders GET /admin/tools.
func (h *AdminHandler) Tools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.tools.List(r.Context())
	if err != nil {
		http.Error(w, "could not load tools", http.StatusInternalServerError)
		return
	}
	render(w, "admin/tools.html", AdminToolsPage{
		BasePage: newBasePage(r, auth.UserFromContext(r.Context())),
		Tools:    tools,
	})
}

// SetPublic handles PUT /admin/tools/{slug}/public and returns the updated row.
func (h *AdminHandler) SetPublic(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	public := r.FormValue("public") == "true"
	tool, err := h.tools.SetPublic(r.Context(), chi.URLParam(r, "slug"), public)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	h.log.Info("tool visibility changed", zap.String("tool", tool.Slug), zap.Bool("public", public))
	renderPageFragment(w, "admin/tools.html", "tool_row", tool)
}

// Tool renders GET /admin/tools/{slug} with its grants.
func (h *AdminHandler) Tool(w http.ResponseWriter, r *http.Request) {
	h.renderTool(w, r, http.StatusOK, "")
}

func (h *AdminHandler) renderTool(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	tool, err := h.tools.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "could not load tool", http.StatusInternalServerError)
		return
	}
	grants, err := h.tools.ListGrants(r.Context(), tool.Slug)
	if err != nil {
		http.Error(w, "could not load grants", http.StatusInternalServerError)
		return
	}
	orgs, _ := h.orgs.List(r.Context())
	renderStatus(w, status, "admin/tool.html", AdminToolPage{
		BasePage:      newBasePage(r, auth.UserFromContext(r.Context())),
		Tool:          tool,
		Grants:        grants,
		Organizations: orgs,
		Error:         errMsg,
	})
}

// Grant handles POST /admin/tools/{slug}/grants. kind=user grants by email,
// kind=organization by organization id.
func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var err error
	switch r.FormValue("kind") {
	case "user":
		var u *store.User
		u, err = h.users.GetByEmail(r.Context(), strings.TrimSpace(r.FormValue("email")))
		if errors.Is(err, store.ErrNotFound) {
			h.renderTool(w, r, http.StatusUnprocessableEntity, "No user has signed in with that email yet.")
			return
		}
		if err == nil {
			err = h.tools.GrantUser(r.Context(), slug, u.ID)
		}
	case "organization":
		orgID := r.FormValue("organization_id")
		if _, err = h.orgs.GetByID(r.Context(), orgID); errors.Is(err, store.ErrNotFound) {
			h.renderTool(w, r, http.StatusUnprocessableEntity, "Choose an organization.")
			return
		}
		if err == nil {
			err = h.tools.GrantOrganization(r.Context(), slug, orgID)
		}
	default:
		http.Error(w, "invalid grant kind", http.StatusBadRequest)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "grant failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/tools/"+slug, http.StatusSeeOther)
}

// Revoke handles DELETE /admin/tools/{slug}/grants/{kind}/{id}.
func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	slug, id := chi.URLParam(r, "slug"), chi.URLParam(r, "id")

	var err error
	switch chi.URLParam(r, "kind") {
	case "user":
		err = h.tools.RevokeUser(r.Context(), slug, id)
	case "organization":
		err = h.tools.RevokeOrganization(r.Context(), slug, id)
	default:
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "revoke failed", http.StatusInternalServerError)
		return
	}
	toast(w, "Access revoked.")
}
