package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int64
}

var rlMu sync.Mutex
var clients = make(map[string]*clientInfo)

// localHit counts a request for key in an in-process fixed window.
func localHit(key string, window time.Duration) int64 {
	rlMu.Lock()
	defer rlMu.Unlock()

	now := time.Now()
	ci, ok := clients[key]
	if !ok || now.Sub(ci.start) > window {
		ci = &clientInfo{start: now}
		clients[key] = ci
	}
	ci.count++
	return ci.count
}

func resetLocalWindows() {
	rlMu.Lock()
	clients = make(map[string]*clientInfo)
	rlMu.Unlock()
}

// hit counts a request in Redis when configured and in memory otherwise.
func hit(ctx context.Context, key string, window time.Duration) (int64, string) {
	if client := redisClient; client != nil {
		val, err := client.Incr(ctx, key).Result()
		if err == nil {
			if val == 1 {
				client.Expire(ctx, key, window)
			}
			return val, ""
		}
		return localHit(key, window), "redis-error"
	}
	return localHit(key, window), ""
}

// limit enforces maxRequests per window for key. maxRequests <= 0 disables it.
func limit(c *gin.Context, scope, key string, maxRequests int, window time.Duration) {
	if maxRequests <= 0 {
		c.Next()
		return
	}

	fullKey := "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + key
	val, rlErr := hit(c.Request.Context(), fullKey, window)
	if rlErr != "" {
		c.Header("X-RateLimit-Error", rlErr)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(scope).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(scope).Inc()
	c.Next()
}

// SimpleRateLimit blocks clients that send more than maxRequests per window,
// keyed by client IP.
func SimpleRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit(c, scope, c.ClientIP(), maxRequests, window)
	}
}
