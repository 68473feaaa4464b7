package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptThrottle counts authentication attempts per scope and email inside
// a rolling window backed by Redis.
// Key format: attempts:<scope>:<email>
type AttemptThrottle struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewAttemptThrottle wraps the given Redis client. max is the number of
// attempts allowed inside each window.
func NewAttemptThrottle(client *redis.Client, max int, window time.Duration) *AttemptThrottle {
	return &AttemptThrottle{client: client, max: int64(max), window: window}
}

// Allow records one attempt and reports whether the caller is still inside
// the limit. The window TTL is armed on the first attempt.
func (t *AttemptThrottle) Allow(ctx context.Context, scope, email string) (bool, error) {
	key := t.key(scope, email)

	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("attempt incr: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return false, fmt.Errorf("attempt expire: %w", err)
		}
	}
	return count <= t.max, nil
}

func (t *AttemptThrottle) key(scope, email string) string {
	return fmt.Sprintf("attempts:%s:%s", scope, email)
}
