package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL sentencias idempotentes; se aplican al arrancar con DB_AUTO_MIGRATE=true.
var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		unit            TEXT NOT NULL CHECK (unit IN ('kg', 'l', 'unit')),
		quantity        NUMERIC(20,6) NOT NULL DEFAULT 0,
		critical_stock  NUMERIC(20,6) NOT NULL DEFAULT 0,
		department      TEXT NOT NULL DEFAULT '',
		average_weight  NUMERIC(20,6) NOT NULL DEFAULT 0,
		version         BIGINT NOT NULL DEFAULT 1,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_department ON products (department)`,
	`CREATE TABLE IF NOT EXISTS lots (
		id                  TEXT PRIMARY KEY,
		product_id          TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		position            INT NOT NULL,
		code                TEXT NOT NULL,
		invoice_ref         TEXT NOT NULL DEFAULT '',
		quantity_received   NUMERIC(20,6) NOT NULL,
		quantity_remaining  NUMERIC(20,6) NOT NULL CHECK (quantity_remaining >= 0),
		expires_at          TIMESTAMPTZ,
		received_at         TIMESTAMPTZ NOT NULL,
		active              BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (product_id, code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lots_expiry ON lots (expires_at) WHERE active`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		name_key         TEXT NOT NULL UNIQUE,
		yield_per_batch  NUMERIC(20,6) NOT NULL DEFAULT 0,
		ingredients      JSONB NOT NULL DEFAULT '[]',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS production_runs (
		id                TEXT PRIMARY KEY,
		recipe_id         TEXT NOT NULL,
		recipe_name       TEXT NOT NULL,
		planned_output    NUMERIC(20,6) NOT NULL,
		actual_output     NUMERIC(20,6) NOT NULL DEFAULT 0,
		required          JSONB NOT NULL DEFAULT '[]',
		consumed          JSONB NOT NULL DEFAULT '[]',
		started_at        TIMESTAMPTZ NOT NULL,
		ended_at          TIMESTAMPTZ,
		duration_sec      BIGINT NOT NULL DEFAULT 0,
		status            TEXT NOT NULL CHECK (status IN ('open', 'closed', 'cancelled')),
		created_by        TEXT NOT NULL DEFAULT '',
		final_product_id  TEXT NOT NULL DEFAULT '',
		final_lot_id      TEXT NOT NULL DEFAULT '',
		cancel_reason     TEXT NOT NULL DEFAULT '',
		version           BIGINT NOT NULL DEFAULT 1,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created ON production_runs (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_status ON production_runs (status)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id                 TEXT PRIMARY KEY,
		type               TEXT NOT NULL,
		product_id         TEXT NOT NULL,
		delta              NUMERIC(20,6) NOT NULL,
		unit               TEXT NOT NULL,
		production_run_id  TEXT NOT NULL DEFAULT '',
		recipe_id          TEXT NOT NULL DEFAULT '',
		lot_id             TEXT NOT NULL DEFAULT '',
		note               TEXT NOT NULL DEFAULT '',
		created_by         TEXT NOT NULL DEFAULT '',
		ts                 TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements (product_id, ts DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_run ON stock_movements (production_run_id) WHERE production_run_id <> ''`,
	`ALTER TABLE stock_movements DROP CONSTRAINT IF EXISTS stock_movements_type_check`,
	`ALTER TABLE stock_movements ADD CONSTRAINT stock_movements_type_check
		CHECK (type IN ('INGRESS', 'PRODUCTION', 'ADJUSTMENT', 'USAGE'))`,
	`CREATE TABLE IF NOT EXISTS usage_log (
		id            TEXT PRIMARY KEY,
		product_id    TEXT NOT NULL,
		product_name  TEXT NOT NULL,
		unit          TEXT NOT NULL,
		used          NUMERIC(20,6) NOT NULL CHECK (used > 0),
		units         INT NOT NULL DEFAULT 0 CHECK (units >= 0),
		useful        NUMERIC(20,6) NOT NULL DEFAULT 0,
		waste         NUMERIC(20,6) NOT NULL DEFAULT 0 CHECK (waste >= 0),
		movement_id   TEXT NOT NULL DEFAULT '',
		note          TEXT NOT NULL DEFAULT '',
		created_by    TEXT NOT NULL DEFAULT '',
		recorded_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_recorded ON usage_log (recorded_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_product ON usage_log (product_id, recorded_at DESC)`,
}

// EnsureSchema crea tablas e índices si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schemaSQL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	return nil
}
