package outbox

import (
	"context"
	"log/slog"
	"time"
)

// Submitter is where the sweeper hands recovered events; in production it
// is the delivery Pool.
type Submitter interface {
	Submit(ctx context.Context, event Event) error
}

// Sweeper periodically rescans the store for events that were staged but
// never acked and re-submits them. This is what turns the async best-effort
// send into an at-least-once guarantee: anything left behind by a crash, a
// dropped task or a broker outage is re-attempted within one interval.
type Sweeper struct {
	log      *slog.Logger
	store    Store
	pool     Submitter
	interval time.Duration
	grace    time.Duration
}

// NewSweeper builds a sweeper. grace must exceed the worst-case latency of
// a legitimately in-flight send, otherwise a slow success races a resend.
func NewSweeper(log *slog.Logger, store Store, pool Submitter, interval, grace time.Duration) *Sweeper {
	return &Sweeper{log: log, store: store, pool: pool, interval: interval, grace: grace}
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("outbox sweeper stopping")
			return nil
		case <-t.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.log.Error("outbox sweep failed", "err", err)
			}
		}
	}
}

// SweepOnce re-submits every event older than the grace window and returns
// how many were queued.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	events, err := s.store.ListOlderThan(ctx, s.grace)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, event := range events {
		if err := s.pool.Submit(ctx, event); err != nil {
			return queued, err
		}
		queued++
	}
	if queued > 0 {
		s.log.Info("outbox sweep requeued stale events", "count", queued)
	}
	return queued, nil
}
