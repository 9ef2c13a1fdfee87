package database

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDatabaseURLEnv names the variable that enables integration tests.
const TestDatabaseURLEnv = "TEST_DATABASE_URL"

var (
	sharedOnce sync.Once
	sharedPool *pgxpool.Pool
	sharedErr  error
)

func testURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skip(TestDatabaseURLEnv + " not set, skipping integration test")
	}
	return url
}

// TestDB opens a pool owned by the calling test. The schema is not migrated.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := Connect(context.Background(), testURL(t))
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// TestPool returns a migrated pool shared by every test in the binary.
func TestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := testURL(t)
	sharedOnce.Do(func() {
		ctx := context.Background()
		if sharedPool, sharedErr = Connect(ctx, url); sharedErr == nil {
			sharedErr = RunMigrations(ctx, sharedPool)
		}
	})
	if sharedErr != nil {
		t.Fatalf("failed to set up test database: %v", sharedErr)
	}
	return sharedPool
}

// TestTx opens a transaction on the shared pool and rolls it back when the test ends,
// so parallel tests never see each other's rows.
func TestTx(t *testing.T) PGXDB {
	t.Helper()
	tx, err := TestPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// CleanupTables empties every application table.
func CleanupTables(t *testing.T, db PGXDB) {
	t.Helper()
	for _, table := range []string{"bills", "employees"} {
		if _, err := db.Exec(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}
