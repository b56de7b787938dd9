package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/container"
	"github.com/oksasatya/go-storefront/internal/infrastructure/persistence"
	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/internal/router/modules"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// Services is every application service built from the container.
type Services struct {
	Sessions      *application.SessionService
	Auth          *application.AuthService
	Products      *application.ProductService
	Catalog       *application.CatalogService
	Cart          *application.CartService
	Wishlist      *application.WishlistService
	Orders        *application.OrderService
	Reviews       *application.ReviewService
	Notifications *application.NotificationService
	Users         *application.UserService
	Media         *application.MediaService
}

// BuildServices wires repositories over the container's document store and
// constructs the services.
func BuildServices() *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := container.GetStore()

	users := persistence.NewUserRepository(store)
	creds := persistence.NewCredentialRepository(store)
	products := persistence.NewProductRepository(store)
	cart := persistence.NewCartRepository(store)

	// a nil *search.Elastic must not become a non-nil interface
	var productIndex application.ProductIndex
	var userIndex application.UserIndex
	if es := container.GetSearch(); es != nil {
		productIndex = es
		userIndex = es
	}

	s := &Services{}
	s.Sessions = application.NewSessionService(container.GetKV(), users, cfg.SessionTTL, logger)

	s.Auth = application.NewAuthService(users, creds, s.Sessions, container.GetJWT(), container.GetKV(), logger)
	s.Auth.Mailer = container.GetMailer()
	s.Auth.Index = userIndex
	s.Auth.ResetURL = cfg.ResetPasswordURL
	s.Auth.OnAuthStateChanged(s.Sessions.HandleAuthEvent)
	s.Auth.OnAuthStateChanged(func(_ context.Context, ev application.AuthEvent) {
		if logger != nil {
			helpers.LogInfo(logger, "auth state changed", logrus.Fields{"user_id": ev.UserID, "event": ev.Kind})
		}
	})

	s.Products = application.NewProductService(products, productIndex, logger)
	s.Catalog = application.NewCatalogService(persistence.NewCategoryRepository(store), persistence.NewBrandRepository(store))
	s.Cart = application.NewCartService(cart, products)
	s.Wishlist = application.NewWishlistService(persistence.NewWishlistRepository(store), products)

	s.Orders = application.NewOrderService(persistence.NewOrderRepository(store), cart, products, users, logger)
	s.Orders.Events = container.GetPublisher()
	s.Orders.Topic = cfg.KafkaOrdersTopic
	s.Orders.Mailer = container.GetMailer()
	if cfg.DeliveryDays > 0 {
		s.Orders.DeliveryDays = cfg.DeliveryDays
	}

	s.Reviews = application.NewReviewService(persistence.NewReviewRepository(store), products, logger)
	s.Notifications = application.NewNotificationService(persistence.NewNotificationRepository(store), logger)
	s.Notifications.Events = container.GetPublisher()
	s.Notifications.Topic = cfg.KafkaNotificationsTopic

	s.Users = application.NewUserService(users, creds, s.Sessions, userIndex, logger)
	s.Media = application.NewMediaService(container.GetObjects(), s.Users, cfg.UploadChunkSize, logger)
	return s
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	svc := BuildServices()

	productHandler := handlers.NewProductHandler(svc.Products, logger)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog, logger)
	orderHandler := handlers.NewOrderHandler(svc.Orders, logger)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Media, logger)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications, logger)

	// every API request carries a session, guest or member
	r.Use(middleware.Session(svc.Sessions, container.GetJWT()))

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, svc.Sessions, logger, cfg.CookieDomain, cfg.CookieSecure), rdb))
	r.Add(modules.NewCatalogModule(productHandler, catalogHandler, handlers.NewReviewHandler(svc.Reviews, logger)))
	r.Add(modules.NewShopModule(handlers.NewCartHandler(svc.Cart, svc.Wishlist, logger), orderHandler, notificationHandler, rdb))
	r.Add(modules.NewProfileModule(userHandler, rdb))
	r.Add(&modules.AdminModule{
		Products:      productHandler,
		Catalog:       catalogHandler,
		Orders:        orderHandler,
		Users:         userHandler,
		Notifications: notificationHandler,
		Media:         handlers.NewMediaHandler(svc.Media, logger),
		Redis:         rdb,
	})
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
	return svc
}
