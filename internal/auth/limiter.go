package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter bounds login attempts per username within a fixed window.
type LoginLimiter interface {
	// Allow reserves one attempt and reports whether it may proceed. The
	// reservation is counted before the password is checked, so concurrent
	// attempts cannot overrun the limit.
	Allow(ctx context.Context, username string) (bool, error)
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, username string) error
}

// reserveScript increments the counter and makes sure it carries the window
// TTL in the same step. A key left without TTL gets one on the next attempt.
var reserveScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RedisLoginLimiter stores counters in Redis with the window as TTL.
type RedisLoginLimiter struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
	prefix      string
}

// NewRedisLoginLimiter builds a limiter. maxAttempts <= 0 yields a limiter
// that always allows.
func NewRedisLoginLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLoginLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
		prefix:      "myflix:login:attempts:",
	}
}

func (l *RedisLoginLimiter) key(username string) string {
	return l.prefix + strings.ToLower(username)
}

// Allow reserves an attempt for username. Redis errors allow the attempt and
// are returned for logging.
func (l *RedisLoginLimiter) Allow(ctx context.Context, username string) (bool, error) {
	if l.maxAttempts <= 0 {
		return true, nil
	}
	count, err := reserveScript.Run(ctx, l.client, []string{l.key(username)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true, err
	}
	return count <= l.maxAttempts, nil
}

// Reset clears the counter after a successful login.
func (l *RedisLoginLimiter) Reset(ctx context.Context, username string) error {
	if l.maxAttempts <= 0 {
		return nil
	}
	return l.client.Del(ctx, l.key(username)).Err()
}

// NoopLoginLimiter never throttles.
type NoopLoginLimiter struct{}

func (NoopLoginLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopLoginLimiter) Reset(context.Context, string) error         { return nil }
