package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/quranapp/backend/pkg/helpers"
	"github.com/quranapp/backend/pkg/response"
)

// Auth validates the access token cookie and, when a Redis client is
// available, requires a live session for the token's user. The user id is
// stored on the context for handlers.
func Auth(jwt *helpers.JWTManager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
			return
		}

		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}

		if rdb != nil {
			exists, err := rdb.Exists(c.Request.Context(), "user:session:"+claims.UserID).Result()
			if err == nil && exists == 0 {
				response.Error[any](c, http.StatusUnauthorized, "session expired, sign in again", nil)
				c.Abort()
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}
