package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Tool is a row in ai_tools.
type Tool struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Icon        string    `db:"icon"`
	Implemented bool      `db:"implemented"`
	IsPublic    bool      `db:"is_public"`
	SortOrder   int       `db:"sort_order"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToolDef is the catalog data synced into ai_tools.
type ToolDef struct {
	Slug        string
	Name        string
	Description string
	Icon        string
	Implemented bool
}

// ToolGrant describes who was given access to a non-public tool.
type ToolGrant struct {
	Kind      string    `db:"kind"` // "user" or "organization"
	SubjectID string    `db:"subject_id"`
	Label     string    `db:"label"`
	GrantedAt time.Time `db:"granted_at"`
}

// ToolStore manages ai_tools and the user/organization access tables.
type ToolStore struct {
	db *sqlx.DB
}

func NewToolStore(db *sqlx.DB) *ToolStore {
	return &ToolStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *ToolStore) q(query string) string { return s.db.Rebind(query) }

// Sync upserts the catalog into ai_tools. Existing rows keep their id and
// is_public flag so admin decisions survive restarts.
func (s *ToolStore) Sync(ctx context.Context, defs []ToolDef) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for i, d := range defs {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE ai_tools SET name = ?, description = ?, icon = ?, implemented = ?, sort_order = ?, updated_at = ?
			WHERE slug = ?
		`), d.Name, d.Description, d.Icon, d.Implemented, i, now, d.Slug)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			continue
		}
		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO ai_tools (id, slug, name, description, icon, implemented, is_public, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), uuid.New().String(), d.Slug, d.Name, d.Description, d.Icon, d.Implemented, true, i, now, now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns every tool in catalog order.
func (s *ToolStore) List(ctx context.Context) ([]*Tool, error) {
	var tools []*Tool
	if err := s.db.SelectContext(ctx, &tools, `SELECT * FROM ai_tools ORDER BY sort_order ASC, name ASC`); err != nil {
		return nil, err
	}
	return tools, nil
}

func (s *ToolStore) GetBySlug(ctx context.Context, slug string) (*Tool, error) {
	var t Tool
	if err := s.db.GetContext(ctx, &t, s.q(`SELECT * FROM ai_tools WHERE slug = ?`), slug); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// SetPublic toggles whether a tool is open to every signed-in user.
func (s *ToolStore) SetPublic(ctx context.Context, slug string, public bool) (*Tool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE ai_tools SET is_public = ?, updated_at = ? WHERE slug = ?`),
		public, time.Now().UTC(), slug)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetBySlug(ctx, slug)
}

// GrantUser gives userID access to the tool. Granting twice is a no-op.
func (s *ToolStore) GrantUser(ctx context.Context, slug, userID string) error {
	return s.grant(ctx, `INSERT INTO user_tool_access (user_id, tool_id, granted_at) VALUES (?, ?, ?)`, slug, userID)
}

// RevokeUser removes a user grant.
func (s *ToolStore) RevokeUser(ctx context.Context, slug, userID string) error {
	return s.revoke(ctx, `DELETE FROM user_tool_access WHERE user_id = ? AND tool_id = ?`, slug, userID)
}

// GrantOrganization gives every member of orgID access to the tool.
func (s *ToolStore) GrantOrganization(ctx context.Context, slug, orgID string) error {
	return s.grant(ctx, `INSERT INTO organization_tool_access (organization_id, tool_id, granted_at) VALUES (?, ?, ?)`, slug, orgID)
}

// RevokeOrganization removes an organization grant.
func (s *ToolStore) RevokeOrganization(ctx context.Context, slug, orgID string) error {
	return s.revoke(ctx, `DELETE FROM organization_tool_access WHERE organization_id = ? AND tool_id = ?`, slug, orgID)
}

func (s *ToolStore) grant(ctx context.Context, query, slug, subjectID string) error {
	tool, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(query), subjectID, tool.ID, time.Now().UTC())
	if isUniqueConstraintError(err) {
		return nil
	}
	return err
}

func (s *ToolStore) revoke(ctx context.Context, query, slug, subjectID string) error {
	tool, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.q(query), subjectID, tool.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGrants returns the user grants followed by the organization grants for a tool.
func (s *ToolStore) ListGrants(ctx context.Context, slug string) ([]*ToolGrant, error) {
	var users, orgs []*ToolGrant
	err := s.db.SelectContext(ctx, &users, s.q(`
		SELECT 'user' AS kind, u.id AS subject_id, u.email AS label, a.granted_at
		FROM user_tool_access a
		INNER JOIN users u ON u.id = a.user_id
		INNER JOIN ai_tools t ON t.id = a.tool_id
		WHERE t.slug = ?
		ORDER BY u.email
	`), slug)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &orgs, s.q(`
		SELECT 'organization' AS kind, o.id AS subject_id, o.name AS label, a.granted_at
		FROM organization_tool_access a
		INNER JOIN organizations o ON o.id = a.organization_id
		INNER JOIN ai_tools t ON t.id = a.tool_id
		WHERE t.slug = ?
		ORDER BY o.name
	`), slug)
	if err != nil {
		return nil, err
	}
	return append(users, orgs...), nil
}

// usableWhere is the access rule shared by CanUse and ListUsable: a tool is
// usable when it is public, when the user holds a direct grant, or when any
// organization the user belongs to holds a grant.
const usableWhere = `(
	t.is_public = ?
	OR EXISTS (SELECT 1 FROM user_tool_access ua WHERE ua.tool_id = t.id AND ua.user_id = ?)
	OR EXISTS (
		SELECT 1 FROM organization_tool_access oa
		INNER JOIN organization_members m ON m.organization_id = oa.organization_id
		WHERE oa.tool_id = t.id AND m.user_id = ?
	)
)`

// CanUse reports whether user may run the tool. Admins may run every tool.
func (s *ToolStore) CanUse(ctx context.Context, user *User, slug string) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		_, err := s.GetBySlug(ctx, slug)
		if err == ErrNotFound {
			return false, nil
		}
		return err == nil, err
	}
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM ai_tools t WHERE t.slug = ? AND `+usableWhere),
		slug, true, user.ID, user.ID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListUsable returns the tools user may run, in catalog order.
func (s *ToolStore) ListUsable(ctx context.Context, user *User) ([]*Tool, error) {
	if user.IsAdmin() {
		return s.List(ctx)
	}
	var tools []*Tool
	err := s.db.SelectContext(ctx, &tools, s.q(`SELECT t.* FROM ai_tools t WHERE `+usableWhere+` ORDER BY t.sort_order ASC, t.name ASC`),
		true, user.ID, user.ID)
	if err != nil {
		return nil, err
	}
	return tools, nil
}
