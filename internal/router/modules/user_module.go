package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// ProfileModule wires the signed-in user's profile routes
// GET /api/profile, PUT /api/profile, POST /api/profile/avatar
type ProfileModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewProfileModule(h *handlers.UserHandler, rdb *redis.Client) *ProfileModule {
	return &ProfileModule{Handler: h, Redis: rdb}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/profile")
	auth.Use(middleware.RequireMember())
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("", m.Handler.GetProfile)
		auth.PUT("", m.Handler.UpdateProfile)
		// uploads are heavier; keep a tighter budget
		auth.POST("/avatar", middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadAvatar)
	}
}
