package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Describe() string
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// MemoryLimiter is a per-key token bucket refilled at rate/window.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

func NewMemoryLimiter(n int, window time.Duration) *MemoryLimiter {
	if n <= 0 {
		n = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{visitors: make(map[string]*visitor), rate: n, window: window}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)
	v, ok := l.visitors[key]
	if !ok {
		every := l.window / time.Duration(l.rate)
		v = &visitor{lim: rate.NewLimiter(rate.Every(every), l.rate)}
		l.visitors[key] = v
	}
	v.seen = now
	return v.lim.AllowN(now, 1), nil
}

// sweep drops visitors idle for longer than a window; their bucket is full again.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.seen) > l.window {
			delete(l.visitors, key)
		}
	}
}

func (l *MemoryLimiter) Describe() string {
	return fmt.Sprintf("%d requests per %v", l.rate, l.window)
}

// RedisLimiter is a fixed window counter shared by every replica.
type RedisLimiter struct {
	rdb    *redis.Client
	rate   int
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, n int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, rate: n, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := time.Now().UnixNano() / int64(l.window)
	k := "sentinel:rl:" + key + ":" + strconv.FormatInt(slot, 10)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	return incr.Val() <= int64(l.rate), nil
}

func (l *RedisLimiter) Describe() string {
	return fmt.Sprintf("%d requests per %v", l.rate, l.window)
}

// RateLimitMiddleware keys on the token subject when present, else client IP.
// Limiter errors let the request through.
func RateLimitMiddleware(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("sub")
		if key == "" {
			key = c.ClientIP()
		}
		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded: " + limiter.Describe(),
			})
			return
		}
		c.Next()
	}
}
