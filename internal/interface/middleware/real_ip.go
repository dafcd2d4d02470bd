package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP resolves the client address behind a reverse proxy and stores it in
// the context for rate limiting. X-Forwarded-For wins, then X-Real-IP, then
// the socket peer.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		c.Set("clientIP", ip)
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xr := c.GetHeader("X-Real-IP"); xr != "" {
		if net.ParseIP(xr) != nil {
			return xr
		}
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// isPrivateIP reports whether the address belongs to a loopback or RFC1918
// range. Used to exempt health checks and internal callers from rate limits.
func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate()
}
