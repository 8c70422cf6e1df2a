package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Generation statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	// StatusCanceled marks a run the caller abandoned before the model
	// answered. It is not counted as a failure.
	StatusCanceled = "canceled"
)

// Generation is one tool run: the submitted input and, on success, the
// validated output.
type Generation struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	ToolSlug     string         `db:"tool_slug"`
	Status       string         `db:"status"`
	ErrorCode    string         `db:"error_code"`
	Model        string         `db:"model"`
	InputTokens  int            `db:"input_tokens"`
	OutputTokens int            `db:"output_tokens"`
	DurationMs   int64          `db:"duration_ms"`
	InputJSON    string         `db:"input_json"`
	OutputJSON   sql.NullString `db:"output_json"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Succeeded reports whether the run produced a validated output.
func (g *Generation) Succeeded() bool { return g.Status == StatusSucceeded }

// ToolStats aggregates generations for a single tool.
type ToolStats struct {
	ToolSlug     string `db:"tool_slug"`
	Total        int64  `db:"total"`
	Failed       int64  `db:"failed"`
	Canceled     int64  `db:"canceled"`
	InputTokens  int64  `db:"input_tokens"`
	OutputTokens int64  `db:"output_tokens"`
}

// GenerationStore is the sqlx-backed store for generation history.
type GenerationStore struct {
	db *sqlx.DB
}

// NewGenerationStore creates a new GenerationStore.
func NewGenerationStore(db *sqlx.DB) *GenerationStore {
	return &GenerationStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *GenerationStore) q(query string) string { return s.db.Rebind(query) }

// Record inserts a generation row. The caller assigns ID and CreatedAt.
func (s *GenerationStore) Record(ctx context.Context, g *Generation) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO generations (id, user_id, tool_slug, status, error_code, model,
			input_tokens, output_tokens, duration_ms, input_json, output_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), g.ID, g.UserID, g.ToolSlug, g.Status, g.ErrorCode, g.Model,
		g.InputTokens, g.OutputTokens, g.DurationMs, g.InputJSON, g.OutputJSON, g.CreatedAt)
	return err
}

// GetByID returns a generation by id, or ErrNotFound.
func (s *GenerationStore) GetByID(ctx context.Context, id string) (*Generation, error) {
	var g Generation
	if err := s.db.GetContext(ctx, &g, s.q(`SELECT * FROM generations WHERE id = ?`), id); err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// GetForUser returns the generation when user owns it or is an admin.
// Other users' generations report ErrNotFound.
func (s *GenerationStore) GetForUser(ctx context.Context, id string, user *User) (*Generation, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != user.ID && !user.IsAdmin() {
		return nil, ErrNotFound
	}
	return g, nil
}

// ListByUser returns the user's most recent generations, newest first.
// toolSlug filters by tool when non-empty.
func (s *GenerationStore) ListByUser(ctx context.Context, userID, toolSlug string, limit int) ([]*Generation, error) {
	return s.ListPage(ctx, userID, toolSlug, time.Time{}, limit)
}

// ListPage is ListByUser restricted to generations created strictly before
// before. A zero before means no bound.
func (s *GenerationStore) ListPage(ctx context.Context, userID, toolSlug string, before time.Time, limit int) ([]*Generation, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT * FROM generations WHERE user_id = ?`
	args := []any{userID}
	if toolSlug != "" {
		query += ` AND tool_slug = ?`
		args = append(args, toolSlug)
	}
	if !before.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	var gens []*Generation
	if err := s.db.SelectContext(ctx, &gens, s.q(query), args...); err != nil {
		return nil, err
	}
	return gens, nil
}

// StatsByTool aggregates all generations per tool.
func (s *GenerationStore) StatsByTool(ctx context.Context) ([]ToolStats, error) {
	var stats []ToolStats
	err := s.db.SelectContext(ctx, &stats, s.q(`
		SELECT tool_slug,
		       COUNT(*) AS total,
		       SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS failed,
		       SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS canceled,
		       COALESCE(SUM(input_tokens), 0) AS input_tokens,
		       COALESCE(SUM(output_tokens), 0) AS output_tokens
		FROM generations
		GROUP BY tool_slug
		ORDER BY tool_slug
	`), StatusFailed, StatusCanceled)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
