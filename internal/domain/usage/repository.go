package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

var ErrInternal = errors.New("internal error")

// Repository persists request log entries in Postgres.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Record appends one request log entry.
func (r *Repository) Record(ctx context.Context, entry Entry) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO request_logs (id, auth_code, category, credits_left, success, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, entry.ID, entry.AuthCode, entry.Category, entry.CreditsLeft, entry.Success)
	if err != nil {
		return fmt.Errorf("%w: record request", ErrInternal)
	}

	return nil
}

// LastUsage returns the timestamp of the most recent request. found is
// false when the log is empty.
func (r *Repository) LastUsage(ctx context.Context) (time.Time, bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var createdAt time.Time
	err := r.db.GetContext(ctx2, &createdAt, `
		SELECT created_at FROM request_logs
		ORDER BY created_at DESC
		LIMIT 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: last usage", ErrInternal)
	}

	return createdAt, true, nil
}

// List returns recent entries, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	entries := make([]Entry, 0)
	err := r.db.SelectContext(ctx2, &entries, `
		SELECT id, auth_code, category, credits_left, success, created_at
		FROM request_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list requests", ErrInternal)
	}

	return entries, nil
}
