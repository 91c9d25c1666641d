package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrExpireScript increments the window counter and starts the window on
// first hit, atomically. Returns {count, ttl_ms}.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimiter is a fixed-window request counter backed by Redis.
// Key format: rl:<key>
type RateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewRateLimiter allows max hits per key within window.
func NewRateLimiter(client *redis.Client, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, max: max, window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
// When denied, retryAfter is the time left in the current window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error) {
	res, err := incrExpireScript.Run(ctx, l.client, []string{"rl:" + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return true, 0, fmt.Errorf("rate limit: %w", err)
	}
	if len(res) != 2 {
		return true, 0, fmt.Errorf("rate limit: unexpected script result %v", res)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if count > int64(l.max) {
		return false, ttl, nil
	}
	return true, 0, nil
}
