package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/duynhne/advocate-service/config"
)

const (
	limiterMemory = "memory"
	limiterRedis  = "redis"
)

// clientKey identifies the caller for rate limiting; there is no
// authenticated identity so the client IP is used.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func rejectRateLimited(c *gin.Context, limiter string, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	rateLimitRejected.WithLabelValues(limiter).Inc()
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
}

// RateLimitMiddleware builds the write-path limiter described by cfg. A nil
// client selects the in-memory token bucket.
func RateLimitMiddleware(cfg config.RateLimitConfig, client *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	if client != nil {
		return RedisRateLimitMiddleware(client, cfg.RPS, cfg.Burst, cfg.Window, logger)
	}
	return MemoryRateLimitMiddleware(cfg.RPS, cfg.Burst)
}

// idleLimiterTTL is how long a client's bucket is kept after its last request.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// memoryLimiters holds one token bucket per client and sweeps idle ones at
// most once per idleTTL, on the request path.
type memoryLimiters struct {
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	limiters  sync.Map // map[string]*clientLimiter
	lastSweep atomic.Int64
}

func newMemoryLimiters(rps float64, burst int, idleTTL time.Duration) *memoryLimiters {
	m := &memoryLimiters{rps: rate.Limit(rps), burst: burst, idleTTL: idleTTL, now: time.Now}
	m.lastSweep.Store(m.now().UnixNano())
	return m
}

func (m *memoryLimiters) allow(key string) bool {
	now := m.now()
	m.sweep(now)

	v, ok := m.limiters.Load(key)
	if !ok {
		v, _ = m.limiters.LoadOrStore(key, &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)})
	}
	cl := v.(*clientLimiter)
	cl.lastSeen.Store(now.UnixNano())
	return cl.limiter.AllowN(now, 1)
}

func (m *memoryLimiters) sweep(now time.Time) {
	last := m.lastSweep.Load()
	if now.UnixNano()-last < int64(m.idleTTL) || !m.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-m.idleTTL).UnixNano()
	m.limiters.Range(func(key, v any) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			m.limiters.Delete(key)
		}
		return true
	})
}

// MemoryRateLimitMiddleware enforces a per-client token bucket held in process.
// rps = allowed events per second, burst = maximum tokens in bucket.
func MemoryRateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return memoryRateLimit(newMemoryLimiters(rps, burst, idleLimiterTTL))
}

func memoryRateLimit(limiters *memoryLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiters.allow(clientKey(c)) {
			rejectRateLimited(c, limiterMemory, 1)
			return
		}
		rateLimitAllowed.WithLabelValues(limiterMemory).Inc()
		c.Next()
	}
}

// RedisRateLimitMiddleware provides a fixed-window limiter shared by all replicas.
// Algorithm: INCR a per-window key and compare against allowed = floor(rps*windowSeconds)+burst.
// When Redis is unreachable requests are let through and the failure is logged.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int64(rps*float64(windowSeconds)) + int64(burst)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		bucket := time.Now().Unix() / int64(windowSeconds)
		redisKey := fmt.Sprintf("rl:%s:%d", clientKey(c), bucket)

		cnt, err := client.Incr(ctx, redisKey).Result()
		if err != nil {
			if logger != nil {
				logger.Warn("Rate limit check failed, allowing request", zap.Error(err))
			}
			c.Next()
			return
		}
		if cnt == 1 {
			_ = client.Expire(ctx, redisKey, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if cnt > allowedPerWindow {
			rejectRateLimited(c, limiterRedis, windowSeconds)
			return
		}
		rateLimitAllowed.WithLabelValues(limiterRedis).Inc()
		c.Next()
	}
}
