package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store marks dedup keys as seen with a TTL. Keys are derived from the
// event dedup key rather than topic/partition/offset, since a swept resend
// lands at a new offset but carries the same key.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(topic, dedupKey string) string {
	return fmt.Sprintf("dedup:%s:%s", topic, dedupKey)
}

// Seen returns true when the key was already claimed by an earlier
// delivery. The first caller claims it atomically.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
