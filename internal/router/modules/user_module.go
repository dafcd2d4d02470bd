package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/quranapp/backend/internal/interface/http"
	"github.com/quranapp/backend/internal/interface/middleware"
	"github.com/quranapp/backend/pkg/helpers"
)

// UserModule mounts the profile routes. The picture upload endpoint takes the
// user id in the form payload and is left open; the profile read requires the
// auth cookie.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(r *gin.RouterGroup) {
	r.POST("/update-profile-picture", m.Handler.UpdateProfilePicture)
	if m.JWT != nil {
		r.GET("/profile", middleware.Auth(m.JWT, m.Redis), m.Handler.GetProfile)
	}
}
