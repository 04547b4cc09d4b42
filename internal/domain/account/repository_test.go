package account

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

/* =========================
   Test setup
   ========================= */

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS credit_accounts (
			code       TEXT PRIMARY KEY,
			credits    INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	t.Cleanup(func() {
		db.Exec(`DELETE FROM credit_accounts WHERE code LIKE 'TST%'`)
		db.Close()
	})

	return db
}

func testCode(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("TST%d", os.Getpid()) + t.Name()[len(t.Name())-4:]
}

/* =========================
   Tests
   ========================= */

func TestRepositoryCreateAndCredits(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	code := testCode(t)

	if err := repo.Create(ctx, code, 5); err != nil {
		t.Fatalf("create: %v", err)
	}

	credits, found, err := repo.Credits(ctx, code)
	if err != nil {
		t.Fatalf("credits: %v", err)
	}
	if !found || credits != 5 {
		t.Errorf("got credits=%d found=%v, want 5 true", credits, found)
	}

	if err := repo.Create(ctx, code, 5); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate create: got %v, want ErrAlreadyExists", err)
	}
}

func TestRepositoryCreditsUnknownCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, found, err := repo.Credits(context.Background(), "TSTMISSING")
	if err != nil {
		t.Fatalf("credits: %v", err)
	}
	if found {
		t.Error("expected found=false for unknown code")
	}
}

func TestRepositoryReserve(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	code := testCode(t)

	if err := repo.Create(ctx, code, 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	remaining, ok, err := repo.Reserve(ctx, code)
	if err != nil || !ok || remaining != 1 {
		t.Fatalf("first reserve: remaining=%d ok=%v err=%v, want 1 true nil", remaining, ok, err)
	}

	remaining, ok, err = repo.Reserve(ctx, code)
	if err != nil || !ok || remaining != 0 {
		t.Fatalf("second reserve: remaining=%d ok=%v err=%v, want 0 true nil", remaining, ok, err)
	}

	// Balance exhausted: the conditional update matches no row
	_, ok, err = repo.Reserve(ctx, code)
	if err != nil {
		t.Fatalf("third reserve: %v", err)
	}
	if ok {
		t.Error("expected ok=false on exhausted balance")
	}
}

func TestRepositoryReserveUnknownCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, ok, err := repo.Reserve(context.Background(), "TSTMISSING")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if ok {
		t.Error("expected ok=false for unknown code")
	}
}

func TestRepositoryConcurrentReserveNeverOverspends(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	code := testCode(t)

	const credits = 3
	const workers = 10

	if err := repo.Create(ctx, code, credits); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.Reserve(ctx, code)
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != credits {
		t.Errorf("granted %d reservations, want exactly %d", granted, credits)
	}

	final, found, err := repo.Credits(ctx, code)
	if err != nil || !found {
		t.Fatalf("credits: found=%v err=%v", found, err)
	}
	if final != 0 {
		t.Errorf("final balance = %d, want 0", final)
	}
}

func TestRepositoryRefundAndGrant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	code := testCode(t)

	if err := repo.Create(ctx, code, 1); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := repo.Reserve(ctx, code); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := repo.Refund(ctx, code); err != nil {
		t.Fatalf("refund: %v", err)
	}

	if err := repo.Grant(ctx, code, 10); err != nil {
		t.Fatalf("grant: %v", err)
	}
	credits, _, err := repo.Credits(ctx, code)
	if err != nil {
		t.Fatalf("credits: %v", err)
	}
	if credits != 11 {
		t.Errorf("credits = %d, want 11", credits)
	}

	if err := repo.Grant(ctx, code, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero grant: got %v, want ErrInvalidAmount", err)
	}
	if err := repo.Grant(ctx, "TSTMISSING", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("grant unknown: got %v, want ErrNotFound", err)
	}
	if err := repo.Refund(ctx, "TSTMISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("refund unknown: got %v, want ErrNotFound", err)
	}
}

func TestRepositoryGetAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	code := testCode(t)

	if err := repo.Create(ctx, code, 7); err != nil {
		t.Fatalf("create: %v", err)
	}

	acc, err := repo.GetByCode(ctx, code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.Code != code || acc.Credits != 7 {
		t.Errorf("got %+v", acc)
	}

	if _, err := repo.GetByCode(ctx, "TSTMISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get unknown: got %v, want ErrNotFound", err)
	}

	accounts, err := repo.List(ctx, 100, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := false
	for _, a := range accounts {
		if a.Code == code {
			seen = true
		}
	}
	if !seen {
		t.Errorf("created account missing from list of %d", len(accounts))
	}
}
