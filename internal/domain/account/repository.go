package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

// Repository provides credit account storage. It implements the gate's
// CreditStore contract: Credits and Reserve.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Credits returns the balance for a sanitized code. found is false when
// no account matches.
func (r *Repository) Credits(ctx context.Context, code string) (int, bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var credits int
	err := r.db.GetContext(ctx2, &credits, `SELECT credits FROM credit_accounts WHERE code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: get credits", ErrInternal)
	}

	return credits, true, nil
}

// Reserve decrements one credit in a single conditional statement. The
// balance guard makes two concurrent reservations against one remaining
// credit impossible: exactly one UPDATE matches, the other sees ok=false.
func (r *Repository) Reserve(ctx context.Context, code string) (int, bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var remaining int
	err := r.db.QueryRowContext(ctx2, `
		UPDATE credit_accounts
		SET credits = credits - 1, updated_at = now()
		WHERE code = $1 AND credits > 0
		RETURNING credits
	`, code).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: reserve credit", ErrInternal)
	}

	return remaining, true, nil
}

// Refund returns one credit to the account. Used only when the refund
// policy for failed upstream classification is enabled.
func (r *Repository) Refund(ctx context.Context, code string) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE credit_accounts
		SET credits = credits + 1, updated_at = now()
		WHERE code = $1
	`, code)
	if err != nil {
		return fmt.Errorf("%w: refund credit", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Create provisions a new account with an initial balance.
func (r *Repository) Create(ctx context.Context, code string, credits int) error {
	if credits < 0 {
		return ErrInvalidAmount
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO credit_accounts (code, credits, created_at, updated_at)
		VALUES ($1, $2, now(), now())
	`, code, credits)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("%w: create account", ErrInternal)
	}

	return nil
}

// Grant adds credits to an existing account.
func (r *Repository) Grant(ctx context.Context, code string, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE credit_accounts
		SET credits = credits + $2, updated_at = now()
		WHERE code = $1
	`, code, amount)
	if err != nil {
		return fmt.Errorf("%w: grant credits", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByCode fetches a single account.
func (r *Repository) GetByCode(ctx context.Context, code string) (*CreditAccount, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var acc CreditAccount
	err := r.db.GetContext(ctx2, &acc, `
		SELECT code, credits, created_at, updated_at
		FROM credit_accounts
		WHERE code = $1
	`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get account", ErrInternal)
	}

	return &acc, nil
}

// List returns accounts ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]CreditAccount, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	accounts := make([]CreditAccount, 0)
	err := r.db.SelectContext(ctx2, &accounts, `
		SELECT code, credits, created_at, updated_at
		FROM credit_accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts", ErrInternal)
	}

	return accounts, nil
}
