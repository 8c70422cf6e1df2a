package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edify-labs/edify/internal/store"
)

// TokenPrefix marks Edify personal access tokens so they are recognisable in
// logs and secret scanners.
const TokenPrefix = "ed_"

// tokenBytes is the entropy of a personal access token.
const tokenBytes = 32

// TokenRecord is one personal access token. The plaintext is never stored.
type TokenRecord struct {
	ID         string       `db:"id"`
	UserID     string       `db:"user_id"`
	Name       string       `db:"name"`
	TokenHash  string       `db:"token_hash"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
	ExpiresAt  sql.NullTime `db:"expires_at"`
	CreatedAt  time.Time    `db:"created_at"`
	RevokedAt  sql.NullTime `db:"revoked_at"`
}

// Active reports whether the token may still authenticate at now.
func (t *TokenRecord) Active(now time.Time) bool {
	if t.RevokedAt.Valid {
		return false
	}
	return !t.ExpiresAt.Valid || t.ExpiresAt.Time.After(now)
}

// TokenStore persists personal access tokens.
type TokenStore interface {
	Create(ctx context.Context, userID, name, tokenHash string, expiresAt *time.Time) (*TokenRecord, error)
	GetByHash(ctx context.Context, hash string) (*TokenRecord, error)
	// ListByUser returns the user's tokens, newest first. Revoked tokens
	// are left out unless includeRevoked is set.
	ListByUser(ctx context.Context, userID string, includeRevoked bool) ([]*TokenRecord, error)
	Revoke(ctx context.Context, id, userID string) error
	UpdateLastUsed(ctx context.Context, id string) error
}

// SQLTokenStore keeps tokens in the api_tokens table.
type SQLTokenStore struct {
	db *sqlx.DB
}

func NewSQLTokenStore(db *sqlx.DB) *SQLTokenStore {
	return &SQLTokenStore{db: db}
}

const tokenColumns = `id, user_id, name, token_hash, last_used_at, expires_at, created_at, revoked_at`

func (s *SQLTokenStore) q(query string) string { return s.db.Rebind(query) }

func (s *SQLTokenStore) Create(ctx context.Context, userID, name, tokenHash string, expiresAt *time.Time) (*TokenRecord, error) {
	rec := &TokenRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		TokenHash: tokenHash,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if expiresAt != nil {
		rec.ExpiresAt = sql.NullTime{Time: expiresAt.UTC(), Valid: true}
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO api_tokens (id, user_id, name, token_hash, expires_at, created_at)
		VALUES (:id, :user_id, :name, :token_hash, :expires_at, :created_at)`, rec)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByHash looks a token up by its hash, revoked or not. Callers decide
// whether it may authenticate with Active.
func (s *SQLTokenStore) GetByHash(ctx context.Context, hash string) (*TokenRecord, error) {
	var rec TokenRecord
	err := s.db.GetContext(ctx, &rec, s.q(`SELECT `+tokenColumns+` FROM api_tokens WHERE token_hash = ?`), hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLTokenStore) ListByUser(ctx context.Context, userID string, includeRevoked bool) ([]*TokenRecord, error) {
	query := `SELECT ` + tokenColumns + ` FROM api_tokens WHERE user_id = ?`
	if !includeRevoked {
		query += ` AND revoked_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	records := []*TokenRecord{}
	if err := s.db.SelectContext(ctx, &records, s.q(query), userID); err != nil {
		return nil, err
	}
	return records, nil
}

// Revoke stamps revoked_at on one of the user's live tokens. A token that
// is missing, already revoked or owned by someone else is store.ErrNotFound.
func (s *SQLTokenStore) Revoke(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE api_tokens SET revoked_at = ?
		WHERE id = ? AND user_id = ? AND revoked_at IS NULL`),
		time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLTokenStore) UpdateLastUsed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE api_tokens SET last_used_at = ? WHERE id = ?`), time.Now().UTC(), id)
	return err
}

// GenerateToken returns a new plaintext token and the hash to persist.
// The plaintext is TokenPrefix followed by 32 random bytes in base62.
func GenerateToken() (plaintext, hash string, err error) {
	b := make([]byte, tokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	plaintext = TokenPrefix + new(big.Int).SetBytes(b).Text(62)
	return plaintext, HashToken(plaintext), nil
}

// HashToken returns the hex-encoded SHA-256 of a plaintext token.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
