package router

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/container"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
	"github.com/oksasatya/go-storefront/internal/infrastructure/events"
	"github.com/oksasatya/go-storefront/internal/infrastructure/kv"
	"github.com/oksasatya/go-storefront/internal/infrastructure/objectstore"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   json.RawMessage `json:"error"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
	svc    *Services
	jwt    *helpers.JWTManager
	events *events.Recorder
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		SessionTTL:              time.Hour,
		CookieDomain:            "localhost",
		UploadChunkSize:         4,
		DeliveryDays:            3,
		KafkaOrdersTopic:        "orders",
		KafkaNotificationsTopic: "notifications",
		ResetPasswordURL:        "http://shop.test/reset",
	}
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)
	rec := events.NewRecorder()

	container.SetConfig(cfg)
	container.SetLogger(nil)
	container.SetStore(docstore.NewMemory())
	container.SetKV(kv.NewRedisStore(rdb))
	container.SetRedis(rdb)
	container.SetObjects(objectstore.NewMemory("test-bucket"))
	container.SetSearch(nil)
	container.SetPublisher(rec)
	container.SetMailer(nil)
	container.SetJWT(jwt)

	engine := gin.New()
	reg := NewRegistry(engine)
	svc := InitModules(reg)
	reg.RegisterAll()
	return &api{t: t, engine: engine, svc: svc, jwt: jwt, events: rec}
}

func (a *api) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// register signs up through the API and returns the access token.
func (a *api) register(username string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":     username + "@example.com",
		"password":  "password123",
		"firstName": "Test",
		"username":  username,
		"address":   "1 Main St",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(a.t, data.AccessToken)
	return data.AccessToken
}

// admin stores an admin profile, establishes its session and returns a token.
func (a *api) admin() string {
	a.t.Helper()
	ctx := context.Background()
	u := &entity.User{ID: "admin-1", Email: "admin@example.com", FirstName: "Ada", Username: "admin", Role: entity.RoleAdmin, Status: entity.StatusActive}
	require.NoError(a.t, a.svc.Users.Users.Put(ctx, u))
	_, err := a.svc.Sessions.Establish(ctx, u, "sid-admin")
	require.NoError(a.t, err)
	tok, _, err := a.jwt.GenerateAccessToken(u.ID, "sid-admin")
	require.NoError(a.t, err)
	return tok
}

func (a *api) createProduct(adminTok, title, price string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/admin/products", adminTok, map[string]any{
		"title":      title,
		"price":      price,
		"stock":      5,
		"categoryId": "c1",
		"colors":     []string{"red"},
		"images":     []string{"https://img.test/" + title + ".png"},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var p entity.Product
	require.NoError(a.t, json.Unmarshal(env.Data, &p))
	return p.ID
}

func TestGuestCanBrowseButNotWrite(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()
	pid := a.createProduct(adminTok, "mug", "12.50")

	w, env := a.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)

	w, env = a.do(http.MethodGet, "/api/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"guest":true`)

	w, env = a.do(http.MethodPut, "/api/cart/items/"+pid, "", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, string(env.Error), "signup_required")

	w, _ = a.do(http.MethodPost, "/api/products/"+pid+"/reviews", "", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = a.do(http.MethodGet, "/api/wishlist/"+pid, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"wished":false}`, string(env.Data))
}

func TestGuestModeHeaderOverridesToken(t *testing.T) {
	a := newAPI(t)
	tok := a.register("alice")

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("X-Guest-Mode", "true")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShopperCheckoutFlow(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()
	mug := a.createProduct(adminTok, "mug", "12.50")
	pen := a.createProduct(adminTok, "pen", "2.00")
	tok := a.register("bob")

	w, _ := a.do(http.MethodPut, "/api/cart/items/"+mug, tok, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env := a.do(http.MethodPut, "/api/cart/items/"+pen, tok, map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var cart struct {
		Items    []json.RawMessage `json:"items"`
		Subtotal string            `json:"subtotal"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "31", cart.Subtotal)

	w, env = a.do(http.MethodPost, "/api/orders", tok, map[string]any{"paymentMethod": "cod"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order entity.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, entity.OrderPending, order.Status)
	assert.Equal(t, "1 Main St", order.DeliveryAddress)
	assert.Equal(t, "31", order.Total.String())
	assert.Len(t, a.events.Topic("orders"), 1)

	w, env = a.do(http.MethodGet, "/api/cart", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Empty(t, cart.Items)

	w, _ = a.do(http.MethodPost, "/api/orders", tok, map[string]any{"paymentMethod": "cod"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(http.MethodGet, "/api/orders", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []entity.Order
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)

	other := a.register("carol")
	w, _ = a.do(http.MethodGet, "/api/orders/"+order.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(http.MethodPut, "/api/admin/orders/"+order.ID+"/status", adminTok, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, entity.OrderShipped, order.Status)

	w, _ = a.do(http.MethodPut, "/api/admin/orders/"+order.ID+"/status", adminTok, map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewsUpdateRating(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()
	pid := a.createProduct(adminTok, "lamp", "40")

	for i, rating := range []int{5, 4, 4} {
		tok := a.register([]string{"dora", "eve", "finn"}[i])
		w, _ := a.do(http.MethodPost, "/api/products/"+pid+"/reviews", tok, map[string]any{"rating": rating, "comment": "ok"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := a.do(http.MethodGet, "/api/products/"+pid, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 4.3, p.Rating)
	assert.Equal(t, 3, p.ReviewCount)

	tok := a.register("gail")
	w, env = a.do(http.MethodPost, "/api/products/"+pid+"/reviews", tok, map[string]any{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "rating")
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	a := newAPI(t)
	tok := a.register("hank")

	w, _ := a.do(http.MethodPost, "/api/admin/categories", tok, map[string]any{"name": "Kitchen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCatalogAndNotifications(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()

	w, env := a.do(http.MethodPost, "/api/admin/categories", adminTok, map[string]any{"name": "Kitchen"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat entity.Category
	require.NoError(t, json.Unmarshal(env.Data, &cat))

	w, env = a.do(http.MethodGet, "/api/categories?q=kit", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Kitchen")

	w, env = a.do(http.MethodDelete, "/api/admin/categories/"+cat.ID, adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = a.do(http.MethodDelete, "/api/admin/categories/missing", adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodPost, "/api/admin/notifications", adminTok, map[string]any{"title": "Sale", "description": "Half off"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, a.events.Topic("notifications"), 1)

	w, env = a.do(http.MethodGet, "/api/notifications", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Half off")
}

func TestAdminBanEndsSession(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()
	tok := a.register("ivan")

	w, env := a.do(http.MethodGet, "/api/profile", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var u entity.User
	require.NoError(t, json.Unmarshal(env.Data, &u))

	w, _ = a.do(http.MethodPut, "/api/admin/users/"+u.ID+"/status", adminTok, map[string]any{"status": "banned"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = a.do(http.MethodGet, "/api/profile", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	a := newAPI(t)
	tok := a.register("judy")

	w, _ := a.do(http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodGet, "/api/cart", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductImageUploadReportsProgress(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 8)...)

	w, env := a.do(http.MethodPost, "/api/admin/media/products", adminTok, map[string]any{
		"data":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"filename": "mug.png",
		"chunked":  true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), "test-bucket")
	assert.Equal(t, []any{25.0, 50.0, 75.0, 100.0}, env.Meta["progress"])

	w, _ = a.do(http.MethodPost, "/api/admin/media/products", adminTok, map[string]any{
		"data": base64.StdEncoding.EncodeToString([]byte("plain text, not an image")),
	})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

// captureMailer records what the auth service hands to the mail queue.
type captureMailer struct {
	links   []string
	clients []application.ClientInfo
}

func (m *captureMailer) PasswordReset(_ context.Context, _ *entity.User, link string, _ time.Duration, client application.ClientInfo) error {
	m.links = append(m.links, link)
	m.clients = append(m.clients, client)
	return nil
}

func (m *captureMailer) PasswordChanged(_ context.Context, _ *entity.User, client application.ClientInfo) error {
	m.clients = append(m.clients, client)
	return nil
}

func (m *captureMailer) OrderPlaced(context.Context, *entity.User, *entity.Order) error { return nil }

func (m *captureMailer) OrderStatusChanged(context.Context, *entity.User, *entity.Order) error {
	return nil
}

func TestPasswordResetEmailsCarryCaller(t *testing.T) {
	a := newAPI(t)
	m := &captureMailer{}
	a.svc.Auth.Mailer = m
	a.register("kim")

	w, _ := a.do(http.MethodPost, "/api/auth/reset/init", "", map[string]any{"email": "KIM@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, m.links, 1)

	u, err := url.Parse(m.links[0])
	require.NoError(t, err)
	w, _ = a.do(http.MethodPost, "/api/auth/reset/confirm", "", map[string]any{
		"token":       u.Query().Get("token"),
		"newPassword": "password456",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, m.clients, 2)
	for _, c := range m.clients {
		assert.Equal(t, "192.0.2.1", c.IP)
	}
}

// staleUserIndex returns hits that do not match the stored users.
type staleUserIndex struct{ ids []string }

func (staleUserIndex) IndexUser(context.Context, *entity.User) error { return nil }
func (staleUserIndex) DeleteUser(context.Context, string) error      { return nil }
func (s staleUserIndex) SearchUsers(context.Context, string, int) ([]string, error) {
	return s.ids, nil
}

func TestAdminUserListFiltersBySubstringWithIndex(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()
	a.register("bob")
	a.register("carol")

	w, env := a.do(http.MethodGet, "/api/admin/users?q=carol", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []entity.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	carol := users[0].ID

	a.svc.Users.Index = staleUserIndex{ids: []string{carol, "ghost"}}

	w, env = a.do(http.MethodGet, "/api/admin/users?q=bob", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	w, env = a.do(http.MethodGet, "/api/admin/users?q=EXAMPLE", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 3)
	assert.Equal(t, carol, users[0].ID, "index hits rank first")
	assert.EqualValues(t, 3, env.Meta["count"])
}

// stuckCart refuses to clear.
type stuckCart struct{ repo.CartRepository }

func (stuckCart) Clear(context.Context, string) error { return errors.New("store down") }

func TestCheckoutWarnsWhenCartNotCleared(t *testing.T) {
	a := newAPI(t)
	adminTok := a.admin()
	mug := a.createProduct(adminTok, "mug", "12.50")
	tok := a.register("lena")

	w, _ := a.do(http.MethodPut, "/api/cart/items/"+mug, tok, map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	a.svc.Orders.Cart = stuckCart{a.svc.Orders.Cart}

	w, env := a.do(http.MethodPost, "/api/orders", tok, map[string]any{"paymentMethod": "cod"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, env.Meta["warning"], "cart was not cleared")
	var order entity.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))

	w, env = a.do(http.MethodGet, "/api/orders/"+order.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = a.do(http.MethodGet, "/api/cart", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), mug)
}
