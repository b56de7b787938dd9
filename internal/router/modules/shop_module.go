package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// ShopModule registers cart, wishlist, orders and notifications.
type ShopModule struct {
	Cart          *handlers.CartHandler
	Orders        *handlers.OrderHandler
	Notifications *handlers.NotificationHandler
	Redis         *redis.Client
}

func NewShopModule(cart *handlers.CartHandler, orders *handlers.OrderHandler, notifications *handlers.NotificationHandler, rdb *redis.Client) *ShopModule {
	return &ShopModule{Cart: cart, Orders: orders, Notifications: notifications, Redis: rdb}
}

func (m *ShopModule) Register(rg *gin.RouterGroup) {
	rg.GET("/notifications", m.Notifications.List)
	// answers false for guests so product pages can render the heart icon
	rg.GET("/wishlist/:productId", m.Cart.WishlistContains)

	member := rg.Group("/")
	member.Use(middleware.RequireMember())
	member.Use(middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByUserID(), middleware.AllowAdmin()))
	{
		member.GET("/cart", m.Cart.GetCart)
		member.DELETE("/cart", m.Cart.ClearCart)
		member.PUT("/cart/items/:productId", m.Cart.SetQuantity)
		member.DELETE("/cart/items/:productId", m.Cart.RemoveItem)

		member.GET("/wishlist", m.Cart.GetWishlist)
		member.POST("/wishlist/:productId", m.Cart.AddToWishlist)
		member.DELETE("/wishlist/:productId", m.Cart.RemoveFromWishlist)
		member.POST("/wishlist/:productId/toggle", m.Cart.ToggleWishlist)

		member.POST("/orders", middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID(), nil), m.Orders.Checkout)
		member.GET("/orders", m.Orders.Mine)
		member.GET("/orders/:id", m.Orders.Get)
	}
}
