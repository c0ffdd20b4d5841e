package integrity

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lease elects a single scheduler run across instances.
type Lease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLease holds the lease as a Redis key with a TTL.
type RedisLease struct {
	rdb   *redis.Client
	owner string
}

// NewRedisLease creates a lease backed by the given client.
func NewRedisLease(rdb *redis.Client) *RedisLease {
	host, _ := os.Hostname()
	return &RedisLease{rdb: rdb, owner: fmt.Sprintf("%s:%s", host, uuid.NewString())}
}

// Acquire sets the key only if nobody holds it.
func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	return ok, nil
}

// LocalLease is always granted; used when no Redis is configured.
type LocalLease struct{}

// Acquire always succeeds.
func (LocalLease) Acquire(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
