// Package redisstore backs the chat rate limiter with Redis counters.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Allow increments the fixed-window counter for key and reports whether
// the caller is still under limit. The window expiry is set when the
// counter is first created.
func (s *Store) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n <= limit, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
