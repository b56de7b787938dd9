package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
)

// CartLine is a cart entry joined with the current product document.
// Product is nil when the product no longer exists.
type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   *entity.Product `json:"product,omitempty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type CartView struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartService stores one entry per product with an explicit quantity. Writes
// are last-write-wins and never check or reserve stock.
type CartService struct {
	Cart     repo.CartRepository
	Products repo.ProductRepository
	Now      func() time.Time
}

func NewCartService(cart repo.CartRepository, products repo.ProductRepository) *CartService {
	return &CartService{Cart: cart, Products: products, Now: time.Now}
}

func (s *CartService) List(ctx context.Context, sess *Session) (*CartView, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	items, err := s.Cart.List(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: make([]CartLine, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		line := CartLine{ProductID: it.ProductID, Quantity: it.Quantity, LineTotal: decimal.Zero}
		p, err := s.Products.Get(ctx, it.ProductID)
		switch {
		case err == nil:
			line.Product = p
			line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			view.Subtotal = view.Subtotal.Add(line.LineTotal)
		case !errors.Is(err, repo.ErrNotFound):
			return nil, err
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}

// SetQuantity writes the entry for productID. A quantity of zero or less
// removes it.
func (s *CartService) SetQuantity(ctx context.Context, sess *Session, productID string, quantity int) error {
	if err := sess.RequireMember(); err != nil {
		return err
	}
	if productID == "" {
		return fieldError("productId", "is required")
	}
	if quantity <= 0 {
		return s.Cart.Remove(ctx, sess.UserID, productID)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Cart.Set(ctx, sess.UserID, &entity.CartItem{ProductID: productID, Quantity: quantity, UpdatedAt: now().UTC()})
}

func (s *CartService) Remove(ctx context.Context, sess *Session, productID string) error {
	if err := sess.RequireMember(); err != nil {
		return err
	}
	return s.Cart.Remove(ctx, sess.UserID, productID)
}

func (s *CartService) Clear(ctx context.Context, sess *Session) error {
	if err := sess.RequireMember(); err != nil {
		return err
	}
	return s.Cart.Clear(ctx, sess.UserID)
}
