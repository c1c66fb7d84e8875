package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopmesh/payment-service/internal/payment/domain"
	"github.com/shopmesh/payment-service/pkg/outbox"
)

// Route carries the static broker routing config for paid events.
type Route struct {
	GroupName string
	Topic     string
	Tag       string
}

type Service struct {
	log   *slog.Logger
	repo  Repository
	ids   IDGenerator
	pool  DeliveryPool
	route Route
}

func NewService(log *slog.Logger, repo Repository, ids IDGenerator, pool DeliveryPool, route Route) *Service {
	return &Service{log: log, repo: repo, ids: ids, pool: pool, route: route}
}

func (s *Service) CreatePayment(ctx context.Context, orderID string) (domain.Payment, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Payment{}, domain.ErrOrderIDRequired
	}

	now := time.Now().UTC()
	p := domain.Payment{
		PayID:     s.ids.NextID(),
		OrderID:   orderID,
		Status:    domain.StatusUnpaid,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return domain.Payment{}, err
	}
	s.log.Info("payment created", "pay_id", p.PayID, "order_id", orderID)
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, payID int64) (domain.Payment, error) {
	return s.repo.Get(ctx, payID)
}

// MarkPaid confirms a payment. The status flip and the outbox staging
// commit together; delivery is handed to the pool afterwards so the caller
// never waits on the broker. A callback against an already-paid payment is
// an idempotent no-op: the stored status is checked, not the caller's claim.
func (s *Service) MarkPaid(ctx context.Context, payID int64) (domain.Payment, error) {
	p, event, err := s.repo.MarkPaidWithEvent(ctx, payID, s.paidEventFor)
	if err != nil {
		return domain.Payment{}, err
	}
	if event == nil {
		s.log.Info("payment already paid, callback ignored", "pay_id", payID)
		return p, nil
	}

	s.log.Info("payment marked paid", "pay_id", p.PayID, "event_id", event.ID)
	if err := s.pool.Submit(ctx, *event); err != nil {
		// The event is durably staged; the sweeper picks it up.
		s.log.Warn("delivery submit dropped", "event_id", event.ID, "err", err)
	}
	return p, nil
}

func (s *Service) paidEventFor(p domain.Payment) (outbox.Event, error) {
	body, err := json.Marshal(domain.NewPaymentPaid(p))
	if err != nil {
		return outbox.Event{}, err
	}
	return outbox.Event{
		ID:        s.ids.NextID(),
		GroupName: s.route.GroupName,
		Topic:     s.route.Topic,
		Tag:       s.route.Tag,
		DedupKey:  strconv.FormatInt(p.PayID, 10),
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}, nil
}
