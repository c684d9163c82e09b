package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mld/backend/internal/infrastructure/config"
)

// RunLock guards against overlapping sync runs. A lock is held for at most
// its TTL; a crashed run releases implicitly when the TTL expires.
type RunLock interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

// RedisRunLock implements RunLock using Redis SETNX. Suitable for
// deployments where multiple instances share the sync schedule.
type RedisRunLock struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRunLock creates a Redis-backed run lock
func NewRedisRunLock(cfg *config.RedisConfig) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunLock{
		client:    client,
		keyPrefix: "sync:lock:",
	}, nil
}

// NewRedisRunLockWithClient creates a run lock with an existing Redis client
func NewRedisRunLockWithClient(client *redis.Client, keyPrefix string) *RedisRunLock {
	if keyPrefix == "" {
		keyPrefix = "sync:lock:"
	}
	return &RedisRunLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the named lock for ttl. Returns false when another run
// already holds it.
func (l *RedisRunLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+name, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

// Release drops the named lock
func (l *RedisRunLock) Release(ctx context.Context, name string) error {
	if err := l.client.Del(ctx, l.keyPrefix+name).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisRunLock) Close() error {
	return l.client.Close()
}

// Ensure RedisRunLock implements RunLock
var _ RunLock = (*RedisRunLock)(nil)
