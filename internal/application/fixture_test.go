package application

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
	"github.com/oksasatya/go-storefront/internal/infrastructure/events"
	"github.com/oksasatya/go-storefront/internal/infrastructure/kv"
	"github.com/oksasatya/go-storefront/internal/infrastructure/objectstore"
	"github.com/oksasatya/go-storefront/internal/infrastructure/persistence"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// countingStore counts every call that reaches the document store.
type countingStore struct {
	docstore.Store
	calls atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, coll, id string) (docstore.Document, error) {
	c.calls.Add(1)
	return c.Store.Get(ctx, coll, id)
}

func (c *countingStore) List(ctx context.Context, coll string) ([]docstore.Document, error) {
	c.calls.Add(1)
	return c.Store.List(ctx, coll)
}

func (c *countingStore) Where(ctx context.Context, coll, field string, value any) ([]docstore.Document, error) {
	c.calls.Add(1)
	return c.Store.Where(ctx, coll, field, value)
}

func (c *countingStore) Create(ctx context.Context, coll string, data json.RawMessage) (string, error) {
	c.calls.Add(1)
	return c.Store.Create(ctx, coll, data)
}

func (c *countingStore) Set(ctx context.Context, coll, id string, data json.RawMessage) error {
	c.calls.Add(1)
	return c.Store.Set(ctx, coll, id, data)
}

func (c *countingStore) Update(ctx context.Context, coll, id string, fields map[string]any) error {
	c.calls.Add(1)
	return c.Store.Update(ctx, coll, id, fields)
}

func (c *countingStore) Delete(ctx context.Context, coll, id string) error {
	c.calls.Add(1)
	return c.Store.Delete(ctx, coll, id)
}

// recordingMailer captures enqueued emails.
type recordingMailer struct {
	mu           sync.Mutex
	resetLinks   []string
	changed      []string
	ordersPlaced []string
	statuses     []string
	clients      []ClientInfo
}

func (m *recordingMailer) PasswordReset(_ context.Context, u *entity.User, link string, _ time.Duration, client ClientInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLinks = append(m.resetLinks, link)
	m.clients = append(m.clients, client)
	return nil
}

func (m *recordingMailer) PasswordChanged(_ context.Context, u *entity.User, client ClientInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, u.ID)
	m.clients = append(m.clients, client)
	return nil
}

func (m *recordingMailer) OrderPlaced(_ context.Context, _ *entity.User, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ordersPlaced = append(m.ordersPlaced, o.ID)
	return nil
}

func (m *recordingMailer) OrderStatusChanged(_ context.Context, _ *entity.User, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, string(o.Status))
	return nil
}

type testEnv struct {
	store   *countingStore
	redis   *miniredis.Miniredis
	kv      kv.Store
	objects *objectstore.Memory
	events  *events.Recorder
	mailer  *recordingMailer

	users       *persistence.UserRepository
	credentials *persistence.CredentialRepository
	products    *persistence.ProductRepository

	sessions      *SessionService
	auth          *AuthService
	productSvc    *ProductService
	catalog       *CatalogService
	cart          *CartService
	wishlist      *WishlistService
	orders        *OrderService
	reviews       *ReviewService
	notifications *NotificationService
	userSvc       *UserService
	media         *MediaService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := &testEnv{
		store:   &countingStore{Store: docstore.NewMemory()},
		redis:   mr,
		kv:      kv.NewRedisStore(rdb),
		objects: objectstore.NewMemory("test-bucket"),
		events:  events.NewRecorder(),
		mailer:  &recordingMailer{},
	}
	e.users = persistence.NewUserRepository(e.store)
	e.credentials = persistence.NewCredentialRepository(e.store)
	e.products = persistence.NewProductRepository(e.store)
	cartRepo := persistence.NewCartRepository(e.store)

	e.sessions = NewSessionService(e.kv, e.users, time.Hour, nil)
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	e.auth = NewAuthService(e.users, e.credentials, e.sessions, jwt, e.kv, nil)
	e.auth.Mailer = e.mailer
	e.auth.ResetURL = "https://shop.test/reset"
	e.auth.OnAuthStateChanged(e.sessions.HandleAuthEvent)

	e.productSvc = NewProductService(e.products, nil, nil)
	e.catalog = NewCatalogService(persistence.NewCategoryRepository(e.store), persistence.NewBrandRepository(e.store))
	e.cart = NewCartService(cartRepo, e.products)
	e.wishlist = NewWishlistService(persistence.NewWishlistRepository(e.store), e.products)
	e.orders = NewOrderService(persistence.NewOrderRepository(e.store), cartRepo, e.products, e.users, nil)
	e.orders.Events = e.events
	e.orders.Topic = "orders"
	e.orders.Mailer = e.mailer
	e.reviews = NewReviewService(persistence.NewReviewRepository(e.store), e.products, nil)
	e.notifications = NewNotificationService(persistence.NewNotificationRepository(e.store), nil)
	e.notifications.Events = e.events
	e.notifications.Topic = "notifications"
	e.userSvc = NewUserService(e.users, e.credentials, e.sessions, nil, nil)
	e.media = NewMediaService(e.objects, e.userSvc, 4, nil)
	return e
}

// register signs up a member and returns the session.
func (e *testEnv) register(t *testing.T, username string) *Session {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Email:     username + "@example.com",
		Password:  "password123",
		FirstName: "Test",
		LastName:  username,
		Username:  username,
		Address:   "1 Main St",
	})
	require.NoError(t, err)
	return res.Session
}

// admin writes an admin profile straight to the store.
func (e *testEnv) admin(t *testing.T) *Session {
	t.Helper()
	u := &entity.User{ID: "admin-1", Email: "admin@example.com", FirstName: "Ada", Username: "admin", Role: entity.RoleAdmin, Status: entity.StatusActive}
	require.NoError(t, e.users.Put(context.Background(), u))
	return &Session{UserID: u.ID, Email: u.Email, Profile: u}
}

func (e *testEnv) product(t *testing.T, title string, price string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Title:      title,
		Price:      decimal.RequireFromString(price),
		Stock:      10,
		CategoryID: "c1",
		BrandID:    "b1",
		Colors:     []string{"red"},
		Images:     []string{"https://img.test/" + title + ".png"},
	}
	require.NoError(t, e.products.Add(context.Background(), p))
	return p
}
