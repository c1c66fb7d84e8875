package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	paymentkafka "github.com/shopmesh/payment-service/internal/payment/infrastructure/kafka"
	"github.com/shopmesh/payment-service/pkg/idempotency"
	"github.com/shopmesh/payment-service/pkg/logging"
	"github.com/shopmesh/payment-service/pkg/shutdown"
	"github.com/shopmesh/payment-service/pkg/tracing"
)

// Reference consumer for paid events: dedups on the message key, so the
// at-least-once wire contract looks exactly-once from here on.
func main() {
	log := logging.New(env("LOG_LEVEL", "info"))
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tracing.Setup()

	kafkaAddr := env("KAFKA_ADDR", "localhost:9092")
	redisAddr := env("REDIS_ADDR", "localhost:6379")
	topic := env("TOPIC", "payment.events")
	group := env("GROUP_ID", "payment-consumer")

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	idem := idempotency.NewStore(rdb, 24*time.Hour)

	consumer := paymentkafka.NewConsumer(log, []string{kafkaAddr}, topic, group, idem)

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "err", err)
		os.Exit(1)
	}
	log.Info("payment-consumer shutdown complete")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
