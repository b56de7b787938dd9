package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/events"
)

func TestProductAddGetRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.admin(t)

	in := ProductInput{
		Title:       "Desk Lamp",
		Price:       decimal.RequireFromString("24.99"),
		Stock:       5,
		CategoryID:  "c1",
		BrandID:     "b1",
		Colors:      []string{"black", "white"},
		Images:      []string{"https://img.test/lamp.png"},
		Description: "Warm light",
	}
	p, err := e.productSvc.Add(ctx, admin, in)
	require.NoError(t, err)

	got, err := e.productSvc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, in.Title, got.Title)
	assert.True(t, in.Price.Equal(got.Price))
	assert.Equal(t, in.Stock, got.Stock)
	assert.Equal(t, in.CategoryID, got.CategoryID)
	assert.Equal(t, in.BrandID, got.BrandID)
	assert.Equal(t, in.Colors, got.Colors)
	assert.Equal(t, in.Images, got.Images)
	assert.Equal(t, in.Description, got.Description)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestProductAdminChecks(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	member := e.register(t, "ana")
	admin := e.admin(t)

	_, err := e.productSvc.Add(ctx, member, ProductInput{Title: "x", Price: decimal.NewFromInt(1), CategoryID: "c"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.productSvc.Add(ctx, admin, ProductInput{Title: "x", Price: decimal.Zero, CategoryID: "c"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be greater than 0", verr.Fields["price"])

	_, err = e.productSvc.Add(ctx, admin, ProductInput{Price: decimal.NewFromInt(1), Stock: -1})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "stock")
	assert.Contains(t, verr.Fields, "categoryId")
}

func TestProductUpdateKeepsDerivedFields(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.admin(t)
	p := e.product(t, "mug", "9.50")
	require.NoError(t, e.products.Update(ctx, p.ID, map[string]any{"rating": 4.5, "reviewCount": 2}))

	got, err := e.productSvc.Update(ctx, admin, p.ID, ProductInput{Title: "Big Mug", Price: decimal.RequireFromString("11"), CategoryID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", got.Title)
	assert.Equal(t, "c2", got.CategoryID)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 2, got.ReviewCount)

	_, err = e.productSvc.Update(ctx, admin, "missing", ProductInput{Title: "x", Price: decimal.NewFromInt(1), CategoryID: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingProductIsNoop(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.admin(t)
	e.product(t, "mug", "9.50")
	e.product(t, "cup", "4.00")

	before, err := e.productSvc.List(ctx, ProductFilter{})
	require.NoError(t, err)

	after, err := e.productSvc.Delete(ctx, admin, "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProductListFilters(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.product(t, "red mug", "9.50")
	b := e.product(t, "Blue Cup", "4.00")
	require.NoError(t, e.products.Update(ctx, b.ID, map[string]any{"categoryId": "c2", "brandId": "b2"}))

	byCat, err := e.productSvc.List(ctx, ProductFilter{CategoryID: "c2"})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, b.ID, byCat[0].ID)

	both, err := e.productSvc.List(ctx, ProductFilter{CategoryID: "c1", BrandID: "b2"})
	require.NoError(t, err)
	assert.Empty(t, both)

	found, err := e.productSvc.Search(ctx, "MUG", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)
}

type fakeProductIndex struct {
	ids     []string
	err     error
	indexed []string
	deleted []string
}

func (f *fakeProductIndex) IndexProduct(_ context.Context, p *entity.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeProductIndex) DeleteProduct(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProductIndex) SearchProducts(context.Context, string, int) ([]string, error) {
	return f.ids, f.err
}

func TestProductSearchUsesIndex(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.admin(t)
	idx := &fakeProductIndex{}
	e.productSvc.Index = idx

	p, err := e.productSvc.Add(ctx, admin, ProductInput{Title: "Lamp", Price: decimal.NewFromInt(3), CategoryID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, idx.indexed)

	idx.ids = []string{"stale-id", p.ID}
	got, err := e.productSvc.Search(ctx, "lmap", 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "ids missing from the store are skipped")
	assert.Equal(t, p.ID, got[0].ID)

	idx.err = assert.AnError
	got, err = e.productSvc.Search(ctx, "lamp", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1, "falls back to substring match")

	_, err = e.productSvc.Delete(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, idx.deleted)
}

func TestCatalogCRUD(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.admin(t)

	c, err := e.catalog.AddCategory(ctx, admin, NamedInput{Name: " Kitchen "})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", c.Name)
	_, err = e.catalog.AddCategory(ctx, admin, NamedInput{Name: "Garden"})
	require.NoError(t, err)

	list, err := e.catalog.ListCategories(ctx, "kit")
	require.NoError(t, err)
	require.Len(t, list, 1)

	c, err = e.catalog.UpdateCategory(ctx, admin, c.ID, NamedInput{Name: "Kitchenware", Image: "https://img.test/k.png"})
	require.NoError(t, err)
	assert.Equal(t, "Kitchenware", c.Name)

	_, err = e.catalog.AddCategory(ctx, admin, NamedInput{Name: "x", Image: "not a url"})
	assert.ErrorIs(t, err, ErrValidation)

	rest, err := e.catalog.DeleteCategory(ctx, admin, c.ID)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Garden", rest[0].Name)

	b, err := e.catalog.AddBrand(ctx, admin, NamedInput{Name: "Acme"})
	require.NoError(t, err)
	got, err := e.catalog.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	brands, err := e.catalog.DeleteBrand(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Empty(t, brands)
}

func TestCartAddThenRemoveLeavesCartEmpty(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.register(t, "ana")
	p := e.product(t, "mug", "9.50")

	require.NoError(t, e.cart.SetQuantity(ctx, sess, p.ID, 2))
	view, err := e.cart.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, decimal.RequireFromString("19").Equal(view.Subtotal))

	require.NoError(t, e.cart.Remove(ctx, sess, p.ID))
	view, err = e.cart.List(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Subtotal.IsZero())
}

func TestCartConcurrentSetsLastWriteWins(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.register(t, "ana")
	p := e.product(t, "mug", "9.50")
	other := &Session{UserID: sess.UserID, SID: "second-device", Profile: sess.Profile}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); errs[0] = e.cart.SetQuantity(ctx, sess, p.ID, 3) }()
	go func() { defer wg.Done(); errs[1] = e.cart.SetQuantity(ctx, other, p.ID, 5) }()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	view, err := e.cart.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Contains(t, []int{3, 5}, view.Items[0].Quantity)

	// sequential writes: the later one is what remains
	require.NoError(t, e.cart.SetQuantity(ctx, sess, p.ID, 3))
	require.NoError(t, e.cart.SetQuantity(ctx, other, p.ID, 5))
	view, err = e.cart.List(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestCartZeroQuantityRemovesAndMissingProductListed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.register(t, "ana")
	p := e.product(t, "mug", "9.50")

	require.NoError(t, e.cart.SetQuantity(ctx, sess, p.ID, 1))
	require.NoError(t, e.cart.SetQuantity(ctx, sess, "gone", 4))
	require.NoError(t, e.cart.SetQuantity(ctx, sess, p.ID, 0))

	view, err := e.cart.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "gone", view.Items[0].ProductID)
	assert.Nil(t, view.Items[0].Product)
	assert.True(t, view.Subtotal.IsZero())
}

func TestGuestWritesFailBeforeAnyStoreCall(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	guest := GuestSession()
	start := e.store.calls.Load()

	_, err := e.reviews.Add(ctx, guest, "p1", ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, ErrGuestForbidden)
	assert.ErrorIs(t, e.reviews.Delete(ctx, guest, "p1", "r1"), ErrGuestForbidden)
	assert.ErrorIs(t, e.cart.SetQuantity(ctx, guest, "p1", 1), ErrGuestForbidden)
	assert.ErrorIs(t, e.cart.Remove(ctx, guest, "p1"), ErrGuestForbidden)
	assert.ErrorIs(t, e.cart.Clear(ctx, guest), ErrGuestForbidden)
	assert.ErrorIs(t, e.wishlist.Add(ctx, guest, "p1"), ErrGuestForbidden)
	assert.ErrorIs(t, e.wishlist.Remove(ctx, guest, "p1"), ErrGuestForbidden)
	_, err = e.wishlist.Toggle(ctx, guest, "p1")
	assert.ErrorIs(t, err, ErrGuestForbidden)
	_, err = e.orders.Checkout(ctx, guest, CheckoutInput{DeliveryAddress: "x", PaymentMethod: "card"})
	assert.ErrorIs(t, err, ErrGuestForbidden)
	_, err = e.userSvc.UpdateProfile(ctx, guest, UpdateProfileInput{FirstName: "A", Username: "abc"})
	assert.ErrorIs(t, err, ErrGuestForbidden)
	_, err = e.media.UploadAvatar(ctx, guest, UploadInput{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrGuestForbidden)

	assert.Equal(t, start, e.store.calls.Load(), "guest writes must not reach the store")
	assert.Zero(t, e.objects.BucketChecks)
}

func TestWishlistToggle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.register(t, "ana")
	p := e.product(t, "mug", "9.50")
	q := e.product(t, "cup", "4.00")

	on, err := e.wishlist.Toggle(ctx, sess, p.ID)
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, e.wishlist.Add(ctx, sess, q.ID))

	list, err := e.wishlist.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, q.ID, list[0].ID)

	on, err = e.wishlist.Toggle(ctx, sess, p.ID)
	require.NoError(t, err)
	assert.False(t, on)
	in, err := e.wishlist.Contains(ctx, sess, p.ID)
	require.NoError(t, err)
	assert.False(t, in)

	in, err = e.wishlist.Contains(ctx, GuestSession(), q.ID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestCheckout(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.register(t, "ana")
	mug := e.product(t, "mug", "9.50")
	cup := e.product(t, "cup", "4.00")

	_, err := e.orders.Checkout(ctx, sess, CheckoutInput{PaymentMethod: "card"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, e.cart.SetQuantity(ctx, sess, mug.ID, 2))
	require.NoError(t, e.cart.SetQuantity(ctx, sess, cup.ID, 1))

	o, err := e.orders.Checkout(ctx, sess, CheckoutInput{PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Equal(t, "1 Main St", o.DeliveryAddress, "defaults to the profile address")
	assert.True(t, decimal.RequireFromString("23").Equal(o.Total))
	assert.True(t, o.OrderDate.AddDate(0, 0, 7).Equal(o.DeliveryDate))
	require.Len(t, o.Items, 2)
	assert.Equal(t, "https://img.test/mug.png", o.Items[0].Image)

	view, err := e.cart.List(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	placed := e.events.Topic("orders")
	require.Len(t, placed, 1)
	assert.Equal(t, events.TypeOrderPlaced, placed[0].Type)
	assert.Equal(t, []string{o.ID}, e.mailer.ordersPlaced)

	// price changes after checkout do not touch the snapshot
	require.NoError(t, e.products.Update(ctx, mug.ID, map[string]any{"price": "99"}))
	got, err := e.orders.Get(ctx, sess, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9.5").Equal(got.Items[0].Price))
}

// stuckCart refuses to clear.
type stuckCart struct{ repo.CartRepository }

func (stuckCart) Clear(context.Context, string) error { return errors.New("store down") }

func TestCheckoutKeepsOrderWhenCartClearFails(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.register(t, "ana")
	mug := e.product(t, "mug", "9.50")
	require.NoError(t, e.cart.SetQuantity(ctx, sess, mug.ID, 2))
	e.orders.Cart = stuckCart{e.orders.Cart}

	o, err := e.orders.Checkout(ctx, sess, CheckoutInput{PaymentMethod: "card"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCartNotCleared))
	require.NotNil(t, o)

	stored, err := e.orders.Get(ctx, sess, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19").Equal(stored.Total))
	assert.Len(t, e.events.Topic("orders"), 1)

	view, err := e.cart.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, mug.ID, view.Items[0].ProductID)
}

func TestCheckoutSkipsDeletedProducts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.register(t, "ana")
	admin := e.admin(t)
	mug := e.product(t, "mug", "9.50")
	cup := e.product(t, "cup", "4.00")
	require.NoError(t, e.cart.SetQuantity(ctx, sess, mug.ID, 1))
	require.NoError(t, e.cart.SetQuantity(ctx, sess, cup.ID, 2))
	_, err := e.productSvc.Delete(ctx, admin, cup.ID)
	require.NoError(t, err)

	o, err := e.orders.Checkout(ctx, sess, CheckoutInput{PaymentMethod: "card"})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, mug.ID, o.Items[0].ProductID)
	assert.True(t, decimal.RequireFromString("9.5").Equal(o.Total))

	view, err := e.cart.List(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	// only deleted products left
	require.NoError(t, e.cart.SetQuantity(ctx, sess, "gone", 1))
	_, err = e.orders.Checkout(ctx, sess, CheckoutInput{PaymentMethod: "card"})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Len(t, e.events.Topic("orders"), 1)
}

func TestOrderAccess(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ana := e.register(t, "ana")
	bob := e.register(t, "bob")
	admin := e.admin(t)
	p := e.product(t, "mug", "9.50")

	require.NoError(t, e.cart.SetQuantity(ctx, ana, p.ID, 1))
	o, err := e.orders.Checkout(ctx, ana, CheckoutInput{DeliveryAddress: "2 Side St", PaymentMethod: "cash"})
	require.NoError(t, err)

	_, err = e.orders.Get(ctx, bob, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.orders.Get(ctx, admin, o.ID)
	assert.NoError(t, err)

	mine, err := e.orders.ListMine(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = e.orders.List(ctx, ana, "")
	assert.ErrorIs(t, err, ErrForbidden)
	all, err := e.orders.List(ctx, admin, "side")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = e.orders.UpdateStatus(ctx, admin, o.ID, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	updated, err := e.orders.UpdateStatus(ctx, admin, o.ID, entity.OrderOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderOutForDelivery, updated.Status)
	assert.Equal(t, []string{"out for delivery"}, e.mailer.statuses)
	assert.Len(t, e.events.Topic("orders"), 2)
}

func TestRatingIsRecomputedFromAllReviews(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.product(t, "mug", "9.50")
	ratings := []int{5, 4, 4, 2}
	var last *entity.Review
	for i, r := range ratings {
		sess := e.register(t, "user"+string(rune('a'+i)))
		rv, err := e.reviews.Add(ctx, sess, p.ID, ReviewInput{Rating: r, Comment: "ok"})
		require.NoError(t, err)
		last = rv
	}

	got, err := e.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.8, got.Rating) // 15/4 = 3.75
	assert.Equal(t, 4, got.ReviewCount)

	stranger := e.register(t, "stranger")
	assert.ErrorIs(t, e.reviews.Delete(ctx, stranger, p.ID, last.ID), ErrForbidden)
	require.NoError(t, e.reviews.Delete(ctx, e.admin(t), p.ID, last.ID))

	got, err = e.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.3, got.Rating) // 13/3 = 4.33
	assert.Equal(t, 3, got.ReviewCount)

	_, err = e.reviews.Add(ctx, stranger, "missing", ReviewInput{Rating: 3})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.reviews.Add(ctx, stranger, p.ID, ReviewInput{Rating: 6})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAverageRating(t *testing.T) {
	cases := []struct {
		in   []int
		want float64
	}{
		{nil, 0},
		{[]int{5}, 5},
		{[]int{4, 5}, 4.5},
		{[]int{1, 2, 2}, 1.7},
		{[]int{3, 4, 4, 4}, 3.8},
		{[]int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2}, 1.1}, // 1.05 rounds up
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AverageRating(c.in), "%v", c.in)
	}
}

func TestNotifications(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.admin(t)

	_, err := e.notifications.Create(ctx, e.register(t, "ana"), NotificationInput{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := e.notifications.Create(ctx, admin, NotificationInput{Title: "Sale", Description: "Half off"})
	require.NoError(t, err)
	assert.Len(t, e.events.Topic("notifications"), 1)

	list, err := e.notifications.List(ctx, "half")
	require.NoError(t, err)
	require.Len(t, list, 1)

	rest, err := e.notifications.Delete(ctx, admin, n.ID)
	require.NoError(t, err)
	assert.Empty(t, rest)
}
