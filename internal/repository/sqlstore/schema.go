package sqlstore

import (
	"context"
	"fmt"
)

// Dates are ISO text in SQLite and DATE in PostgreSQL; domain.Date scans both.
// AUTOINCREMENT and identity columns never hand out a deleted id again.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		po_number        TEXT NOT NULL,
		customer         TEXT NOT NULL,
		order_date       TEXT NOT NULL,
		expected_eta     TEXT NOT NULL,
		actual_eta       TEXT,
		notes            TEXT NOT NULL DEFAULT '',
		sales_engineer   TEXT NOT NULL DEFAULT '',
		division         TEXT NOT NULL DEFAULT '',
		quotation_number TEXT NOT NULL DEFAULT '',
		nominal          TEXT NOT NULL DEFAULT '0',
		payment_terms    TEXT NOT NULL DEFAULT '',
		payment_progress INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMP NOT NULL,
		updated_at       TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_orders_order_date ON purchase_orders (order_date)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		po_number        TEXT NOT NULL,
		customer         TEXT NOT NULL,
		order_date       DATE NOT NULL,
		expected_eta     DATE NOT NULL,
		actual_eta       DATE,
		notes            TEXT NOT NULL DEFAULT '',
		sales_engineer   TEXT NOT NULL DEFAULT '',
		division         TEXT NOT NULL DEFAULT '',
		quotation_number TEXT NOT NULL DEFAULT '',
		nominal          NUMERIC(18,2) NOT NULL DEFAULT 0,
		payment_terms    TEXT NOT NULL DEFAULT '',
		payment_progress INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_orders_order_date ON purchase_orders (order_date)`,
}

// Migrate creates the purchase_orders table if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	statements := postgresSchema
	if db.isSQLite() {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
