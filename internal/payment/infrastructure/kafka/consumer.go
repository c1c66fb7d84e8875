package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/shopmesh/payment-service/internal/payment/domain"
	"github.com/shopmesh/payment-service/pkg/idempotency"
	"github.com/shopmesh/payment-service/pkg/tracing"
)

// Consumer is the reference downstream consumer for paid events. Delivery
// is at-least-once on the wire, so it dedups on the message key (the pay
// id) before acting.
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	idem   *idempotency.Store
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{log: log, reader: r, idem: idem}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		key := c.idem.Key(msg.Topic, string(msg.Key))
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("dedup check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate paid event skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)

		var event domain.PaymentPaid
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("paid event unmarshal failed", "err", err)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		c.handle(msgCtx, event)
		_ = c.reader.CommitMessages(ctx, msg)
	}
}

func (c *Consumer) handle(_ context.Context, event domain.PaymentPaid) {
	c.log.Info("payment confirmed downstream",
		"pay_id", event.PayID,
		"order_id", event.OrderID,
		"schema_version", event.SchemaVersion)
}
