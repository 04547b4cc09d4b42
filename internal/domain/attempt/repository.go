package attempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

var ErrInternal = errors.New("internal error")

// Repository stores failed attempts in Postgres. It implements the
// gate's AttemptLedger contract.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Record appends one failed attempt for the identifier.
func (r *Repository) Record(ctx context.Context, identifier string) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO failed_attempts (id, identifier, created_at)
		VALUES ($1, $2, now())
	`, uuid.New(), identifier)
	if err != nil {
		return fmt.Errorf("%w: record attempt", ErrInternal)
	}

	return nil
}

// CountSince returns the number of failed attempts for the identifier
// with a timestamp at or after since.
func (r *Repository) CountSince(ctx context.Context, identifier string, since time.Time) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := r.db.GetContext(ctx2, &count, `
		SELECT COUNT(*) FROM failed_attempts
		WHERE identifier = $1 AND created_at >= $2
	`, identifier, since)
	if err != nil {
		return 0, fmt.Errorf("%w: count attempts", ErrInternal)
	}

	return count, nil
}
