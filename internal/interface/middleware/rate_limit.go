package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/quranapp/backend/pkg/response"
)

// incrWithTTL increments the counter and sets the window TTL on first hit,
// atomically.
var incrWithTTL = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type RateLimitOptions struct {
	// Limit is the number of requests allowed per Window.
	Limit int
	// Window is the fixed counting window.
	Window time.Duration
	// PerPath scopes the counter to the request path as well as the IP.
	PerPath bool
	// AllowPrivateIP exempts loopback and RFC1918 callers.
	AllowPrivateIP bool
}

// RateLimit returns a fixed-window limiter backed by Redis. On Redis failure
// the request is allowed through; availability wins over strictness here.
func RateLimit(rdb *redis.Client, logger *logrus.Logger, opts RateLimitOptions) gin.HandlerFunc {
	if opts.Limit <= 0 {
		opts.Limit = 60
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	return func(c *gin.Context) {
		ip := c.GetString("clientIP")
		if ip == "" {
			ip = c.ClientIP()
		}
		if opts.AllowPrivateIP && isPrivateIP(ip) {
			c.Next()
			return
		}

		key := "ratelimit:" + ip
		if opts.PerPath {
			key += ":" + c.FullPath()
		}

		n, err := incrWithTTL.Run(c.Request.Context(), rdb, []string{key}, opts.Window.Milliseconds()).Int64()
		if err != nil {
			logger.WithError(err).Warn("rate limit check failed, allowing request")
			c.Next()
			return
		}

		remaining := int64(opts.Limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(opts.Limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(opts.Window.Seconds())))
			response.Error[any](c, http.StatusTooManyRequests, "too many requests, slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
