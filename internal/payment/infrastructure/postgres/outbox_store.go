package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopmesh/payment-service/pkg/outbox"
)

type OutboxStore struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewOutboxStore(log *slog.Logger, pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{log: log, pool: pool}
}

func (s *OutboxStore) Ack(ctx context.Context, eventID int64) error {
	// Deleting an already-deleted row is fine: a normal-path worker and a
	// sweep-triggered resend may race on the same event.
	_, err := s.pool.Exec(ctx, `DELETE FROM outbox_events WHERE event_id=$1`, eventID)
	return err
}

func (s *OutboxStore) ListOlderThan(ctx context.Context, age time.Duration) ([]outbox.Event, error) {
	cutoff := time.Now().UTC().Add(-age)

	rows, err := s.pool.Query(ctx, `
		SELECT event_id, group_name, topic, tag, dedup_key, body, created_at
		FROM outbox_events
		WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var event outbox.Event
		if err := rows.Scan(&event.ID, &event.GroupName, &event.Topic, &event.Tag, &event.DedupKey, &event.Body, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
