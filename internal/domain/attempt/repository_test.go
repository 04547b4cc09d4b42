package attempt

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

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
		CREATE TABLE IF NOT EXISTS failed_attempts (
			id         UUID PRIMARY KEY,
			identifier TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_failed_attempts_identifier
			ON failed_attempts (identifier, created_at)
	`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	t.Cleanup(func() {
		db.Exec(`DELETE FROM failed_attempts WHERE identifier LIKE 'tst-%'`)
		db.Close()
	})

	return db
}

func TestRepositoryRecordAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	id := fmt.Sprintf("tst-%d-%s", os.Getpid(), t.Name())

	since := time.Now().Add(-time.Minute)

	count, err := repo.CountSince(ctx, id, since)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}

	for i := 0; i < 3; i++ {
		if err := repo.Record(ctx, id); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	count, err = repo.CountSince(ctx, id, since)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	// A window opening in the future sees none of them
	count, err = repo.CountSince(ctx, id, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 outside window", count)
	}
}

func TestRepositoryCountIsPerIdentifier(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := fmt.Sprintf("tst-%d-%s", os.Getpid(), t.Name())

	if err := repo.Record(ctx, base+"-a"); err != nil {
		t.Fatalf("record: %v", err)
	}

	count, err := repo.CountSince(ctx, base+"-b", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 for unrelated identifier", count)
	}
}
