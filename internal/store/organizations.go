package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Organization member roles.
const (
	MemberOwner = "owner"
	MemberAdmin = "admin"
	MemberRole  = "member"
)

type Organization struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	LogoURL   string    `db:"logo_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// OrganizationSummary is an organization with its member count for listings.
type OrganizationSummary struct {
	Organization
	MemberCount int `db:"member_count"`
}

// Member is a user joined with their organization role.
type Member struct {
	User
	MemberRole string `db:"member_role"`
}

// OrganizationStore manages organizations and organization_members.
type OrganizationStore struct {
	db *sqlx.DB
}

func NewOrganizationStore(db *sqlx.DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *OrganizationStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts an organization. When slug is empty it is derived from name.
func (s *OrganizationStore) Create(ctx context.Context, name, slug, logoURL string) (*Organization, error) {
	if slug == "" {
		slug = Slugify(name)
	}
	if err := ValidateSlugFormat(slug); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO organizations (id, name, slug, logo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, name, slug, logoURL, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *OrganizationStore) GetByID(ctx context.Context, id string) (*Organization, error) {
	var o Organization
	if err := s.db.GetContext(ctx, &o, s.q(`SELECT * FROM organizations WHERE id = ?`), id); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *OrganizationStore) GetBySlug(ctx context.Context, slug string) (*Organization, error) {
	var o Organization
	if err := s.db.GetContext(ctx, &o, s.q(`SELECT * FROM organizations WHERE slug = ?`), slug); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// List returns all organizations with member counts, ordered by name.
func (s *OrganizationStore) List(ctx context.Context) ([]*OrganizationSummary, error) {
	var orgs []*OrganizationSummary
	err := s.db.SelectContext(ctx, &orgs, `
		SELECT o.*, COUNT(m.user_id) AS member_count
		FROM organizations o
		LEFT JOIN organization_members m ON m.organization_id = o.id
		GROUP BY o.id, o.name, o.slug, o.logo_url, o.created_at, o.updated_at
		ORDER BY o.name ASC
	`)
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// Delete removes an organization. Members and grants cascade; users whose
// primary organization it was are detached.
func (s *OrganizationStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q(`UPDATE users SET organization_id = NULL WHERE organization_id = ?`), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM organizations WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// AddMember adds userID to the organization with the given role. The first
// organization a user joins becomes their primary organization.
func (s *OrganizationStore) AddMember(ctx context.Context, orgID, userID, role string) error {
	if err := ValidateMemberRole(role); err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO organization_members (organization_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)
	`), orgID, userID, role, time.Now().UTC())
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyMember
		}
		return err
	}
	_, err = tx.ExecContext(ctx, s.q(`
		UPDATE users SET organization_id = ? WHERE id = ? AND organization_id IS NULL
	`), orgID, userID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveMember removes userID from the organization and clears it as their
// primary organization.
func (s *OrganizationStore) RemoveMember(ctx context.Context, orgID, userID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM organization_members WHERE organization_id = ? AND user_id = ?
	`), orgID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotMember
	}
	_, err = tx.ExecContext(ctx, s.q(`
		UPDATE users SET organization_id = NULL WHERE id = ? AND organization_id = ?
	`), userID, orgID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ListMembers returns the organization's members ordered by display name.
func (s *OrganizationStore) ListMembers(ctx context.Context, orgID string) ([]*Member, error) {
	var members []*Member
	err := s.db.SelectContext(ctx, &members, s.q(`
		SELECT u.*, m.role AS member_role FROM users u
		INNER JOIN organization_members m ON m.user_id = u.id
		WHERE m.organization_id = ?
		ORDER BY u.display_name ASC
	`), orgID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListForUser returns the organizations userID belongs to.
func (s *OrganizationStore) ListForUser(ctx context.Context, userID string) ([]*Organization, error) {
	var orgs []*Organization
	err := s.db.SelectContext(ctx, &orgs, s.q(`
		SELECT o.* FROM organizations o
		INNER JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = ?
		ORDER BY o.name ASC
	`), userID)
	if err != nil {
		return nil, err
	}
	return orgs, nil
}
