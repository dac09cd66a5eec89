package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/ikkim/eduverify-backend/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIPAndPath limits each client per route
func KeyByIPAndPath(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return prefix + "rl:" + path + ":" + ip
	}
}

// RateLimit is a fixed-window limiter backed by Redis. Without a client it is a no-op,
// and Redis failures let the request through.
func RateLimit(rdb *goredis.Client, m *metrics.Metrics, max int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		key := keyFn(c)
		count, err := redis.Hit(c.Request.Context(), rdb, key, window)
		if err != nil {
			GetLoggerFromContext(c).Warn("Rate limiter unavailable, allowing request", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		remaining := max - count.Count
		if remaining < 0 {
			remaining = 0
		}
		resetSec := int(count.ResetIn.Round(time.Second).Seconds())
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count.Count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			m.IncrementLoginRateLimited()
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"key":   key,
				"count": count.Count,
			})
			errors.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
