package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS payments (
	pay_id     BIGINT PRIMARY KEY,
	order_id   TEXT        NOT NULL,
	status     TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_order_status ON payments (order_id, status);

CREATE TABLE IF NOT EXISTS outbox_events (
	event_id   BIGINT PRIMARY KEY,
	group_name TEXT        NOT NULL,
	topic      TEXT        NOT NULL,
	tag        TEXT        NOT NULL,
	dedup_key  TEXT        NOT NULL,
	body       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outbox_events_created_at ON outbox_events (created_at);
`

// Migrate applies the schema idempotently at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
