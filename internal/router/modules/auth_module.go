package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/quranapp/backend/internal/interface/http"
	"github.com/quranapp/backend/internal/interface/middleware"
)

// AuthModule mounts the registration, verification and login routes with
// their per-endpoint rate limits.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, Logger: logger}
}

func (m *AuthModule) Register(r *gin.RouterGroup) {
	limit := func(n int, perPath bool) gin.HandlerFunc {
		return middleware.RateLimit(m.Redis, m.Logger, middleware.RateLimitOptions{
			Limit:          n,
			Window:         time.Minute,
			PerPath:        perPath,
			AllowPrivateIP: true,
		})
	}

	auth := r.Group("/auth")
	auth.POST("/register", limit(10, false), m.Handler.Register)
	auth.POST("/verify-otp", limit(20, true), m.Handler.VerifyOTP)
	auth.POST("/resend-otp", limit(10, false), m.Handler.ResendOTP)
	auth.POST("/login", limit(10, false), m.Handler.Login)
}
