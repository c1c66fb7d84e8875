package outbox

import (
	"context"
	"errors"
	"time"
)

// Event is one staged outgoing message. A row exists from the moment the
// owning state change commits until a broker ack confirms delivery; there is
// no persisted failure state, a failed send simply leaves the row in place
// for the sweeper.
type Event struct {
	ID        int64
	GroupName string
	Topic     string
	Tag       string
	DedupKey  string
	Body      []byte
	CreatedAt time.Time
}

var (
	// ErrTopicRequired and ErrBodyRequired are raised by a Broker before any
	// network attempt. They indicate a wiring bug, not a transport failure.
	ErrTopicRequired = errors.New("outbox: topic is required")
	ErrBodyRequired  = errors.New("outbox: body is required")
)

// Broker sends a single event to the message bus, blocking up to its
// configured timeout. Any transport error or timeout is an ordinary error;
// the event stays staged and is retried by the sweeper.
type Broker interface {
	Send(ctx context.Context, event Event) error
}

// Store is the durable side of the outbox. Staging happens inside the
// ledger transaction and is therefore not part of this interface.
type Store interface {
	// Ack deletes a delivered event. Deleting an absent id is not an error.
	Ack(ctx context.Context, eventID int64) error
	// ListOlderThan returns events staged before now-age. Ordering is
	// unspecified; callers must treat the result as a set.
	ListOlderThan(ctx context.Context, age time.Duration) ([]Event, error)
}
