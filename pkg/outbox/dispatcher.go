package outbox

import (
	"context"
	"errors"
	"log/slog"
)

// Dispatcher performs a single delivery attempt: send, then ack. It never
// retries; an event that fails to send remains staged and is picked up by
// the sweeper after the grace window.
type Dispatcher struct {
	log    *slog.Logger
	broker Broker
	store  Store
}

func NewDispatcher(log *slog.Logger, broker Broker, store Store) *Dispatcher {
	return &Dispatcher{log: log, broker: broker, store: store}
}

func (d *Dispatcher) Deliver(ctx context.Context, event Event) {
	if err := d.broker.Send(ctx, event); err != nil {
		if errors.Is(err, ErrTopicRequired) || errors.Is(err, ErrBodyRequired) {
			// Config bug: the sweeper will retry, but retrying cannot help
			// until the routing config is fixed.
			d.log.Error("outbox event rejected before send", "event_id", event.ID, "err", err)
			return
		}
		d.log.Warn("outbox send failed, event stays staged", "event_id", event.ID, "err", err)
		return
	}

	if err := d.store.Ack(ctx, event.ID); err != nil {
		// The send succeeded but the row survived; the sweeper resends it
		// and consumers dedup on the key.
		d.log.Warn("outbox ack failed after send", "event_id", event.ID, "err", err)
		return
	}
	d.log.Info("outbox event delivered", "event_id", event.ID, "dedup_key", event.DedupKey)
}
