package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// KeyedLimiter is an in-process token bucket per key.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	lastGC   time.Time
	now      func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows rps requests per second per key with the given burst.
// Keys unused for ten minutes are dropped.
func NewKeyedLimiter(rps float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (l *KeyedLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// evictIdle sweeps at most once per idle period. Callers hold mu.
func (l *KeyedLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastGC) < l.idle {
		return
	}
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idle {
			delete(l.limiters, key)
		}
	}
	l.lastGC = now
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// windowScript counts one hit and arms the window expiry in one atomic step.
// A key left without a TTL gets one on its next hit.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter is a fixed-window counter shared by every API instance.
// When Redis errors it lets the request through.
type RedisLimiter struct {
	client redis.Scripter
	limit  int64
	window time.Duration
	logger *slog.Logger
}

// NewRedisLimiter allows limit requests per key per window.
func NewRedisLimiter(client redis.Scripter, limit int64, window time.Duration, logger *slog.Logger) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, logger: logger}
}

// NewRedisRateLimiter matches KeyedLimiter's sustained rate: rps (rounded up)
// per one-second window. Fixed windows have no separate burst.
func NewRedisRateLimiter(client redis.Scripter, rps float64, logger *slog.Logger) *RedisLimiter {
	return NewRedisLimiter(client, max(1, int64(math.Ceil(rps))), time.Second, logger)
}

// Allow increments key's counter for the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	count, err := windowScript.Run(ctx, l.client, []string{"rate_limit:" + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn("rate limit counter unavailable", "key", key, "error", err)
		return true
	}
	return count <= l.limit
}

// RateLimit rejects requests over limiter's budget with 429, keyed by client IP.
func RateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests", "code": "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}
