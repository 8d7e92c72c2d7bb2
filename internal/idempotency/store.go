// Package idempotency records which Stripe events are being or have been processed.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "majaz:stripe-event:"

type Config struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	// TTL only needs to outlive one webhook delivery. The events table rejects
	// replays for good, so a claim left behind by a crash must not outlast Stripe's
	// next retry.
	TTL time.Duration `env:"REDIS_CLAIM_TTL" env-default:"1m"`
}

func (c *Config) Enabled() bool {
	return c.Addr != ""
}

type Store interface {
	// Claim returns false when key is already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	err := client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	err := s.client.Del(ctx, keyPrefix+key).Err()
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}

// Noop claims everything. The database unique key on events still rejects replays.
type Noop struct{}

func (Noop) Claim(context.Context, string) (bool, error) { return true, nil }
func (Noop) Release(context.Context, string) error       { return nil }
