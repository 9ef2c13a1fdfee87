package database

import (
	"context"
	"fmt"
)

// RunMigrations creates the database schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, db PGXDB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS bills (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			vat DECIMAL(12, 2) NOT NULL DEFAULT 0,
			amount DECIMAL(12, 2) NOT NULL DEFAULT 0,
			pct INTEGER NOT NULL DEFAULT 20,
			date TEXT NOT NULL,
			commentary TEXT NOT NULL DEFAULT '',
			file_url TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`DROP INDEX IF EXISTS idx_bills_email`,
		`CREATE INDEX IF NOT EXISTS idx_bills_email_lower ON bills (LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_bills_status ON bills(status)`,
		`ALTER TABLE bills DROP CONSTRAINT IF EXISTS bills_status_check`,
		`ALTER TABLE bills ADD CONSTRAINT bills_status_check
			CHECK (status IN ('pending', 'accepted', 'refused'))`,
		`ALTER TABLE bills DROP CONSTRAINT IF EXISTS bills_amounts_check`,
		`ALTER TABLE bills ADD CONSTRAINT bills_amounts_check
			CHECK (amount >= 0 AND pct >= 0)`,
		`CREATE TABLE IF NOT EXISTS employees (
			telegram_id BIGINT PRIMARY KEY,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
