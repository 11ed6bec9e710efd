package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocaso/ocaso-api/internal/auth"
	"github.com/ocaso/ocaso-api/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	all := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "admin": IsAdmin(c)})
	})
	r.GET("/x", all...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	r := newRouter(AuthMiddleware(tokens))

	good, err := tokens.GenerateToken("user-7", "seller")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + good, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := do(r, "Bearer "+good)
	assert.JSONEq(t, `{"user":"user-7","admin":false}`, w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	r := newRouter(AuthMiddleware(tokens), AdminMiddleware())

	seller, err := tokens.GenerateToken("s", "seller")
	require.NoError(t, err)
	admin, err := tokens.GenerateToken("a", auth.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+seller).Code)

	w := do(r, "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"a","admin":true}`, w.Body.String())

	// Without AuthMiddleware in front there is no user at all.
	bare := newRouter(AdminMiddleware())
	assert.Equal(t, http.StatusUnauthorized, do(bare, "Bearer "+admin).Code)
}

func TestKeyedLimiter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewKeyedLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "a"))
	assert.False(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "b"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, l.Allow(ctx, "a"), "one token refilled")

	now = now.Add(time.Hour)
	l.Allow(ctx, "c")
	assert.Equal(t, 1, l.Len(), "idle keys evicted")
}

// fakeScripter runs the window script against in-memory counters.
type fakeScripter struct {
	counts map[string]int64
	ttls   map[string]int64
	err    error
}

func newFakeScripter() *fakeScripter {
	return &fakeScripter{counts: map[string]int64{}, ttls: map[string]int64{}}
}

func (f *fakeScripter) run(keys []string, args ...interface{}) *redis.Cmd {
	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}
	key := keys[0]
	f.counts[key]++
	if _, ok := f.ttls[key]; !ok {
		f.ttls[key] = args[0].(int64)
	}
	return redis.NewCmdResult(f.counts[key], nil)
}

func (f *fakeScripter) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(keys, args...)
}

func (f *fakeScripter) EvalSha(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(keys, args...)
}

func (f *fakeScripter) EvalRO(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(keys, args...)
}

func (f *fakeScripter) EvalShaRO(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(keys, args...)
}

func (f *fakeScripter) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (f *fakeScripter) ScriptLoad(_ context.Context, _ string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func TestRedisLimiter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFakeScripter()
	l := NewRedisLimiter(fs, 2, time.Minute, logger.Discard())

	assert.True(t, l.Allow(ctx, "ip"))
	assert.True(t, l.Allow(ctx, "ip"))
	assert.False(t, l.Allow(ctx, "ip"))
	assert.Equal(t, time.Minute.Milliseconds(), fs.ttls["rate_limit:ip"])

	down := NewRedisLimiter(&fakeScripter{err: errors.New("down")}, 1, time.Minute, logger.Discard())
	assert.True(t, down.Allow(ctx, "ip"), "fails open")
}

func TestRedisLimiterArmsMissingExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFakeScripter()
	// A counter left behind without a TTL.
	fs.counts["rate_limit:ip"] = 50

	l := NewRedisLimiter(fs, 2, time.Second, logger.Discard())
	assert.False(t, l.Allow(ctx, "ip"))
	assert.Equal(t, time.Second.Milliseconds(), fs.ttls["rate_limit:ip"])
}

func TestNewRedisRateLimiterBudget(t *testing.T) {
	t.Parallel()

	l := NewRedisRateLimiter(newFakeScripter(), 10, logger.Discard())
	assert.Equal(t, int64(10), l.limit)
	assert.Equal(t, time.Second, l.window)

	slow := NewRedisRateLimiter(newFakeScripter(), 0.2, logger.Discard())
	assert.Equal(t, int64(1), slow.limit)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimit(NewKeyedLimiter(0.001, 1), "search"))

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}
