// Package throttle limits how often a notification key may fire. A key that is
// allowed is reserved for the whole interval; later calls inside the interval
// are refused.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "dispatch:throttle"

// RedisThrottle reserves keys with SET NX PX, so the limit holds across instances.
type RedisThrottle struct {
	client *redis.Client
	prefix string
}

// NewRedisThrottle creates a throttle. An empty prefix uses DefaultKeyPrefix.
func NewRedisThrottle(client *redis.Client, prefix string) *RedisThrottle {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisThrottle{client: client, prefix: prefix}
}

func (t *RedisThrottle) Allow(ctx context.Context, key string, interval time.Duration) (bool, error) {
	ok, err := t.client.SetNX(ctx, fmt.Sprintf("%s:%s", t.prefix, key), time.Now().UTC().Unix(), interval).Result()
	if err != nil {
		return false, fmt.Errorf("throttle %s: %w", key, err)
	}
	return ok, nil
}

// MemoryThrottle is the single-instance throttle.
type MemoryThrottle struct {
	mu     sync.Mutex
	clock  kernel.Clock
	expiry map[string]time.Time
}

// NewMemoryThrottle creates a throttle reading time from clock.
func NewMemoryThrottle(clock kernel.Clock) *MemoryThrottle {
	if clock == nil {
		clock = kernel.SystemClock{}
	}
	return &MemoryThrottle{clock: clock, expiry: make(map[string]time.Time)}
}

func (t *MemoryThrottle) Allow(_ context.Context, key string, interval time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if until, ok := t.expiry[key]; ok && now.Before(until) {
		return false, nil
	}
	t.expiry[key] = now.Add(interval)

	// sweep
	for k, until := range t.expiry {
		if !now.Before(until) {
			delete(t.expiry, k)
		}
	}
	return true, nil
}
