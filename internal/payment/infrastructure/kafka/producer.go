package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/shopmesh/payment-service/pkg/outbox"
	"github.com/shopmesh/payment-service/pkg/tracing"
)

// Client sends outbox events to Kafka with a hard per-send timeout. It is
// pure transport: no durable state, no retries.
type Client struct {
	log     *slog.Logger
	writer  *kafka.Writer
	timeout time.Duration
}

func NewClient(log *slog.Logger, brokers []string, timeout time.Duration) *Client {
	return &Client{
		log: log,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
		timeout: timeout,
	}
}

func (c *Client) Send(ctx context.Context, event outbox.Event) error {
	// Malformed input is rejected before any network attempt.
	if event.Topic == "" {
		return outbox.ErrTopicRequired
	}
	if len(event.Body) == 0 {
		return outbox.ErrBodyRequired
	}

	headers := []kafka.Header{
		{Key: "group", Value: []byte(event.GroupName)},
		{Key: "tag", Value: []byte(event.Tag)},
		{Key: "message_id", Value: []byte(uuid.NewString())},
	}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	msg := kafka.Message{
		Topic:   event.Topic,
		Key:     []byte(event.DedupKey),
		Value:   event.Body,
		Headers: headers,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Broker error and timeout collapse into one failure: the sweeper
	// treats both identically.
	if err := c.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("broker send: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.writer.Close()
}
