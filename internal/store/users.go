package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string         `db:"id"`
	Provider       string         `db:"provider"`
	Subject        string         `db:"subject"`
	Email          string         `db:"email"`
	DisplayName    string         `db:"display_name"`
	AvatarURL      string         `db:"avatar_url"`
	OrganizationID sql.NullString `db:"organization_id"`
	Role           string         `db:"role"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// OrgID returns the user's primary organization id, or "".
func (u *User) OrgID() string {
	if u.OrganizationID.Valid {
		return u.OrganizationID.String
	}
	return ""
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Upsert creates or updates a user record on OIDC login.
// adminEmail: if non-empty and matches email on INSERT, role is set to "admin".
// Returning users keep their stored role and organization.
func (s *UserStore) Upsert(ctx context.Context, provider, subject, email, displayName, avatarURL, adminEmail string) (*User, error) {
	now := time.Now().UTC()

	existing, err := s.getBySubject(ctx, provider, subject)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, s.q(`
			UPDATE users SET email = ?, display_name = ?, avatar_url = ?, updated_at = ?
			WHERE id = ?
		`), email, displayName, avatarURL, now, existing.ID)
		if err != nil {
			return nil, err
		}
		return s.GetByID(ctx, existing.ID)
	case err != ErrNotFound:
		return nil, err
	}

	role := RoleUser
	if adminEmail != "" && email == adminEmail {
		role = RoleAdmin
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, provider, subject, email, display_name, avatar_url, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, provider, subject, email, displayName, avatarURL, role, now, now)
	if err != nil {
		// A concurrent first login for the same subject won the insert.
		if isUniqueConstraintError(err) {
			return s.getBySubject(ctx, provider, subject)
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) getBySubject(ctx context.Context, provider, subject string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE provider = ? AND subject = ?`), provider, subject)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ListAll returns all users ordered by display name.
func (s *UserStore) ListAll(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY display_name ASC, email ASC`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of registered users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// UpdateRole sets the role for the given user and returns the updated record.
func (s *UserStore) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`),
		role, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// SetOrganization sets the user's primary organization. An empty orgID clears it.
func (s *UserStore) SetOrganization(ctx context.Context, id, orgID string) (*User, error) {
	var org sql.NullString
	if orgID != "" {
		org = sql.NullString{String: orgID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET organization_id = ?, updated_at = ? WHERE id = ?`),
		org, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a user. Memberships, grants, tokens and generations cascade.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
