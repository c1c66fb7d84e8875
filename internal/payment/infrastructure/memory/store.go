package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopmesh/payment-service/internal/payment/application"
	"github.com/shopmesh/payment-service/internal/payment/domain"
	"github.com/shopmesh/payment-service/pkg/outbox"
)

// Store is a mutex-guarded in-memory ledger plus outbox. It backs unit
// tests and local runs; both writes of MarkPaidWithEvent happen under one
// lock, mirroring the single transaction of the Postgres store.
type Store struct {
	mu       sync.RWMutex
	payments map[int64]domain.Payment
	events   map[int64]outbox.Event
}

func NewStore() *Store {
	return &Store{
		payments: make(map[int64]domain.Payment),
		events:   make(map[int64]outbox.Event),
	}
}

func (s *Store) Create(_ context.Context, p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payments {
		if existing.OrderID == p.OrderID && existing.Status == domain.StatusPaid {
			return domain.ErrAlreadyPaid
		}
	}
	s.payments[p.PayID] = p
	return nil
}

func (s *Store) Get(_ context.Context, payID int64) (domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[payID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return p, nil
}

func (s *Store) MarkPaidWithEvent(_ context.Context, payID int64, eventFor application.EventFactory) (domain.Payment, *outbox.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[payID]
	if !ok {
		return domain.Payment{}, nil, domain.ErrPaymentNotFound
	}
	if !p.MarkPaid(time.Now().UTC()) {
		return p, nil, nil
	}

	event, err := eventFor(p)
	if err != nil {
		return domain.Payment{}, nil, err
	}
	s.payments[payID] = p
	s.events[event.ID] = event
	return p, &event, nil
}

func (s *Store) Ack(_ context.Context, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.events, eventID)
	return nil
}

func (s *Store) ListOlderThan(_ context.Context, age time.Duration) ([]outbox.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-age)
	var events []outbox.Event
	for _, event := range s.events {
		if event.CreatedAt.Before(cutoff) {
			events = append(events, event)
		}
	}
	return events, nil
}

// Events returns a snapshot of the staged events, for tests.
func (s *Store) Events() []outbox.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]outbox.Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event)
	}
	return events
}
