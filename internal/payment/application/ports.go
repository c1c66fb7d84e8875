package application

import (
	"context"

	"github.com/shopmesh/payment-service/internal/payment/domain"
	"github.com/shopmesh/payment-service/pkg/outbox"
)

// EventFactory builds the outbox event for a payment snapshot taken after
// the status flip, inside the same transaction.
type EventFactory func(p domain.Payment) (outbox.Event, error)

type Repository interface {
	// Create inserts an UNPAID payment. It returns domain.ErrAlreadyPaid
	// when a PAID payment already exists for the same order.
	Create(ctx context.Context, p domain.Payment) error

	Get(ctx context.Context, payID int64) (domain.Payment, error)

	// MarkPaidWithEvent flips the stored status UNPAID -> PAID and stages
	// the event produced by eventFor in one transaction. If either write
	// fails, both roll back. For an already-PAID payment it is a no-op and
	// the returned event is nil.
	MarkPaidWithEvent(ctx context.Context, payID int64, eventFor EventFactory) (domain.Payment, *outbox.Event, error)
}

type IDGenerator interface {
	NextID() int64
}

// DeliveryPool receives fire-and-forget delivery tasks after the
// transaction commits. The request path never waits for the broker.
type DeliveryPool interface {
	Submit(ctx context.Context, event outbox.Event) error
}
