package postgres

import (
	"context"
	"fmt"

	"marketbill/pkg/logger"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS markets (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		address    TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS shops (
		id          UUID PRIMARY KEY,
		market_id   UUID NOT NULL REFERENCES markets(id),
		code        TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		floor       TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		area_sqft   NUMERIC(14,2) CHECK (area_sqft IS NULL OR area_sqft >= 0),
		owner_name  TEXT NOT NULL DEFAULT '',
		owner_phone TEXT NOT NULL DEFAULT '',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_shops_code UNIQUE (code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shops_market ON shops (market_id)`,

	`CREATE TABLE IF NOT EXISTS meters (
		id           UUID PRIMARY KEY,
		shop_id      UUID NOT NULL REFERENCES shops(id),
		utility_type TEXT NOT NULL CHECK (utility_type IN ('ELECTRIC', 'WATER', 'GAS')),
		serial       TEXT NOT NULL,
		multiplier   NUMERIC(12,4) NOT NULL DEFAULT 1 CHECK (multiplier > 0),
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_meters_shop_serial UNIQUE (shop_id, utility_type, serial)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meters_shop ON meters (shop_id)`,

	`CREATE TABLE IF NOT EXISTS tariffs (
		id                 UUID PRIMARY KEY,
		utility_type       TEXT NOT NULL CHECK (utility_type IN ('ELECTRIC', 'WATER', 'GAS')),
		flat_rate_per_unit NUMERIC(14,4) NOT NULL CHECK (flat_rate_per_unit >= 0),
		effective_from     DATE NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_tariffs_utility_from UNIQUE (utility_type, effective_from)
	)`,

	`CREATE TABLE IF NOT EXISTS meter_readings (
		id           UUID PRIMARY KEY,
		meter_id     UUID NOT NULL REFERENCES meters(id),
		period       DATE NOT NULL,
		prev_reading NUMERIC(14,3) NOT NULL,
		curr_reading NUMERIC(14,3) NOT NULL,
		multiplier   NUMERIC(12,4) NOT NULL DEFAULT 1,
		consumption  NUMERIC(16,3) NOT NULL,
		read_at      TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_readings_meter_period UNIQUE (meter_id, period),
		CONSTRAINT chk_readings_order CHECK (curr_reading >= prev_reading)
	)`,

	`CREATE TABLE IF NOT EXISTS monthly_costs (
		id                      UUID PRIMARY KEY,
		market_id               UUID NOT NULL REFERENCES markets(id),
		period                  DATE NOT NULL,
		total_ac_units          NUMERIC(14,2) NOT NULL DEFAULT 0,
		ac_unit_price           NUMERIC(14,4) NOT NULL DEFAULT 0,
		guard_cost              NUMERIC(14,2) NOT NULL DEFAULT 0,
		maid_cost               NUMERIC(14,2) NOT NULL DEFAULT 0,
		other_cost              NUMERIC(14,2) NOT NULL DEFAULT 0,
		generator_cost          NUMERIC(14,2) NOT NULL DEFAULT 0,
		special_cost            NUMERIC(14,2) NOT NULL DEFAULT 0,
		special_name            TEXT NOT NULL DEFAULT '',
		ac_enabled              BOOLEAN NOT NULL DEFAULT TRUE,
		service_enabled         BOOLEAN NOT NULL DEFAULT TRUE,
		generator_enabled       BOOLEAN NOT NULL DEFAULT TRUE,
		special_enabled         BOOLEAN NOT NULL DEFAULT FALSE,
		area_override           NUMERIC(14,2),
		billing_area            NUMERIC(14,2) NOT NULL DEFAULT 0,
		ac_rate_override        NUMERIC(14,6),
		service_rate_override   NUMERIC(14,6),
		generator_rate_override NUMERIC(14,6),
		special_rate_override   NUMERIC(14,6),
		issue_date              DATE,
		due_date                DATE,
		remarks                 TEXT NOT NULL DEFAULT '',
		locked                  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_monthly_costs_market_period UNIQUE (market_id, period)
	)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id         UUID PRIMARY KEY,
		period     DATE NOT NULL,
		shop_id    UUID NOT NULL REFERENCES shops(id),
		total      NUMERIC(14,2) NOT NULL DEFAULT 0,
		status     TEXT NOT NULL DEFAULT 'UNPAID',
		locked     BOOLEAN NOT NULL DEFAULT FALSE,
		revision   INTEGER NOT NULL DEFAULT 1,
		meta       JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_invoices_period_shop UNIQUE (period, shop_id)
	)`,

	`CREATE TABLE IF NOT EXISTS invoice_items (
		id              UUID PRIMARY KEY,
		invoice_id      UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		item_type       TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		quantity        NUMERIC(16,3) NOT NULL DEFAULT 0,
		unit            TEXT NOT NULL DEFAULT '',
		unit_price      NUMERIC(14,6) NOT NULL DEFAULT 0,
		amount          NUMERIC(14,2) NOT NULL DEFAULT 0,
		is_overridden   BOOLEAN NOT NULL DEFAULT FALSE,
		override_reason TEXT NOT NULL DEFAULT '',
		CONSTRAINT uq_invoice_items_type UNIQUE (invoice_id, item_type)
	)`,

	`CREATE TABLE IF NOT EXISTS invoice_adjustments (
		id         UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		item_type  TEXT,
		label      TEXT NOT NULL,
		amount     NUMERIC(14,2) NOT NULL,
		created_by TEXT NOT NULL DEFAULT 'system',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_adjustments_invoice ON invoice_adjustments (invoice_id)`,

	`CREATE TABLE IF NOT EXISTS sys_outbox (
		id             UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id   UUID NOT NULL,
		event_type     TEXT NOT NULL,
		payload        JSONB NOT NULL,
		status         TEXT NOT NULL DEFAULT 'pending',
		retry_count    INTEGER NOT NULL DEFAULT 0,
		last_error     TEXT,
		next_retry_at  TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		published_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON sys_outbox (created_at) WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS sys_billing_runs (
		id                 UUID PRIMARY KEY,
		market_id          UUID NOT NULL,
		period             DATE NOT NULL,
		force              BOOLEAN NOT NULL,
		success            BOOLEAN NOT NULL,
		processed_count    INTEGER NOT NULL,
		skipped_count      INTEGER NOT NULL,
		actor              TEXT NOT NULL,
		summary            JSONB,
		summary_compressed BYTEA,
		compression_algo   TEXT NOT NULL DEFAULT 'none',
		duration_ms        BIGINT NOT NULL DEFAULT 0,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_billing_runs_market ON sys_billing_runs (market_id, created_at DESC)`,
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, pool *Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Info(ctx, "database schema ready", "statements", len(schema))
	return nil
}
