package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopmesh/payment-service/internal/payment/application"
	"github.com/shopmesh/payment-service/internal/payment/domain"
	"github.com/shopmesh/payment-service/pkg/outbox"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, p domain.Payment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var paid int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM payments WHERE order_id=$1 AND status=$2`,
		p.OrderID, domain.StatusPaid).Scan(&paid)
	if err != nil {
		return err
	}
	if paid > 0 {
		return domain.ErrAlreadyPaid
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payments (pay_id, order_id, status, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		p.PayID, p.OrderID, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, payID int64) (domain.Payment, error) {
	var p domain.Payment
	err := r.pool.QueryRow(ctx,
		`SELECT pay_id, order_id, status, created_at, updated_at FROM payments WHERE pay_id=$1`,
		payID).Scan(&p.PayID, &p.OrderID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}

func (r *Repository) MarkPaidWithEvent(ctx context.Context, payID int64, eventFor application.EventFactory) (domain.Payment, *outbox.Event, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Payment{}, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var p domain.Payment
	err = tx.QueryRow(ctx,
		`SELECT pay_id, order_id, status, created_at, updated_at FROM payments WHERE pay_id=$1 FOR UPDATE`,
		payID).Scan(&p.PayID, &p.OrderID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Payment{}, nil, err
	}

	// Compare-and-set on the stored status: a replayed callback against a
	// paid row changes nothing and stages nothing.
	if !p.MarkPaid(time.Now().UTC()) {
		return p, nil, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx,
		`UPDATE payments SET status=$2, updated_at=$3 WHERE pay_id=$1`,
		p.PayID, p.Status, p.UpdatedAt)
	if err != nil {
		return domain.Payment{}, nil, err
	}

	event, err := eventFor(p)
	if err != nil {
		return domain.Payment{}, nil, err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO outbox_events (event_id, group_name, topic, tag, dedup_key, body, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		event.ID, event.GroupName, event.Topic, event.Tag, event.DedupKey, event.Body, event.CreatedAt)
	if err != nil {
		return domain.Payment{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Payment{}, nil, err
	}
	return p, &event, nil
}
