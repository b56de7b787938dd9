package application

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
)

type WishlistService struct {
	Wishlist repo.WishlistRepository
	Products repo.ProductRepository
	Now      func() time.Time
}

func NewWishlistService(wishlist repo.WishlistRepository, products repo.ProductRepository) *WishlistService {
	return &WishlistService{Wishlist: wishlist, Products: products, Now: time.Now}
}

// List returns the wished products that still exist, newest first by add time.
func (s *WishlistService) List(ctx context.Context, sess *Session) ([]*entity.Product, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	items, err := s.Wishlist.List(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		p, err := s.Products.Get(ctx, items[i].ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *WishlistService) Add(ctx context.Context, sess *Session, productID string) error {
	if err := sess.RequireMember(); err != nil {
		return err
	}
	if productID == "" {
		return fieldError("productId", "is required")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Wishlist.Add(ctx, sess.UserID, &entity.WishlistItem{ProductID: productID, AddedAt: now().UTC()})
}

func (s *WishlistService) Remove(ctx context.Context, sess *Session, productID string) error {
	if err := sess.RequireMember(); err != nil {
		return err
	}
	return s.Wishlist.Remove(ctx, sess.UserID, productID)
}

// Toggle flips the flag and reports whether the product is now wished.
func (s *WishlistService) Toggle(ctx context.Context, sess *Session, productID string) (bool, error) {
	if err := sess.RequireMember(); err != nil {
		return false, err
	}
	in, err := s.Wishlist.Contains(ctx, sess.UserID, productID)
	if err != nil {
		return false, err
	}
	if in {
		return false, s.Wishlist.Remove(ctx, sess.UserID, productID)
	}
	return true, s.Add(ctx, sess, productID)
}

// Contains is false for guests rather than an error so product pages can
// render the heart icon for everyone.
func (s *WishlistService) Contains(ctx context.Context, sess *Session, productID string) (bool, error) {
	if sess.RequireMember() != nil {
		return false, nil
	}
	return s.Wishlist.Contains(ctx, sess.UserID, productID)
}
