package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// AdminModule registers the admin screens under /api/admin.
type AdminModule struct {
	Products      *handlers.ProductHandler
	Catalog       *handlers.CatalogHandler
	Orders        *handlers.OrderHandler
	Users         *handlers.UserHandler
	Notifications *handlers.NotificationHandler
	Media         *handlers.MediaHandler
	Redis         *redis.Client
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.Use(middleware.RateLimit(m.Redis, 600, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.POST("/products", m.Products.Create)
		admin.PUT("/products/:id", m.Products.Update)
		admin.DELETE("/products/:id", m.Products.Delete)

		admin.POST("/categories", m.Catalog.CreateCategory)
		admin.PUT("/categories/:id", m.Catalog.UpdateCategory)
		admin.DELETE("/categories/:id", m.Catalog.DeleteCategory)
		admin.POST("/brands", m.Catalog.CreateBrand)
		admin.PUT("/brands/:id", m.Catalog.UpdateBrand)
		admin.DELETE("/brands/:id", m.Catalog.DeleteBrand)

		admin.GET("/orders", m.Orders.List)
		admin.GET("/orders/:id", m.Orders.Get)
		admin.PUT("/orders/:id/status", m.Orders.UpdateStatus)

		admin.GET("/users", m.Users.List)
		admin.GET("/users/:id", m.Users.Get)
		admin.PUT("/users/:id/role", m.Users.SetRole)
		admin.PUT("/users/:id/status", m.Users.SetStatus)
		admin.DELETE("/users/:id", m.Users.Delete)

		admin.POST("/notifications", m.Notifications.Create)
		admin.DELETE("/notifications/:id", m.Notifications.Delete)

		admin.POST("/media/products", m.Media.UploadProductImage)
	}
}
