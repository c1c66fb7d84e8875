package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopmesh/payment-service/pkg/outbox"
)

// Malformed sends must be rejected before any network attempt, so these
// run against an unreachable broker address without ever dialing it.
func TestSendRejectsEmptyTopic(t *testing.T) {
	c := NewClient(slog.New(slog.DiscardHandler), []string{"localhost:1"}, time.Second)
	defer c.Close()

	err := c.Send(context.Background(), outbox.Event{
		ID:       1,
		Tag:      "paid",
		DedupKey: "42",
		Body:     []byte(`{}`),
	})
	require.ErrorIs(t, err, outbox.ErrTopicRequired)
}

func TestSendRejectsEmptyBody(t *testing.T) {
	c := NewClient(slog.New(slog.DiscardHandler), []string{"localhost:1"}, time.Second)
	defer c.Close()

	err := c.Send(context.Background(), outbox.Event{
		ID:       1,
		Topic:    "payment.events",
		Tag:      "paid",
		DedupKey: "42",
	})
	require.ErrorIs(t, err, outbox.ErrBodyRequired)
}
