package persistence

import (
	"context"
	"errors"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
)

func cartPath(userID string) string     { return docstore.Path(usersCollection, userID, cartSubcollection) }
func wishlistPath(userID string) string { return docstore.Path(usersCollection, userID, wishlistSubcollection) }
func reviewsPath(productID string) string {
	return docstore.Path(productsCollection, productID, reviewsSubcollection)
}

func setCartProductID(c *entity.CartItem, id string)         { c.ProductID = id }
func setWishlistProductID(w *entity.WishlistItem, id string) { w.ProductID = id }

// ReviewRepository stores reviews under products/<pid>/reviews.
type ReviewRepository struct {
	store docstore.Store
}

func NewReviewRepository(store docstore.Store) *ReviewRepository {
	return &ReviewRepository{store: store}
}

func (r *ReviewRepository) Get(ctx context.Context, productID, id string) (*entity.Review, error) {
	return getAs(ctx, r.store, reviewsPath(productID), id, func(rv *entity.Review, id string) {
		rv.ID = id
		rv.ProductID = productID
	})
}

func (r *ReviewRepository) List(ctx context.Context, productID string) ([]*entity.Review, error) {
	return listAs(ctx, r.store, reviewsPath(productID), func(rv *entity.Review, id string) {
		rv.ID = id
		rv.ProductID = productID
	})
}

func (r *ReviewRepository) Add(ctx context.Context, rv *entity.Review) error {
	id, err := add(ctx, r.store, reviewsPath(rv.ProductID), rv.ID, rv)
	if err != nil {
		return err
	}
	rv.ID = id
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, productID, id string) error {
	return r.store.Delete(ctx, reviewsPath(productID), id)
}

// CartRepository keeps users/<uid>/cart/<productId> documents.
type CartRepository struct {
	store docstore.Store
}

func NewCartRepository(store docstore.Store) *CartRepository {
	return &CartRepository{store: store}
}

func (r *CartRepository) List(ctx context.Context, userID string) ([]*entity.CartItem, error) {
	return listAs(ctx, r.store, cartPath(userID), setCartProductID)
}

// Set overwrites the entry for item.ProductID; concurrent writers race and
// the last one wins.
func (r *CartRepository) Set(ctx context.Context, userID string, item *entity.CartItem) error {
	_, err := add(ctx, r.store, cartPath(userID), item.ProductID, item)
	return err
}

func (r *CartRepository) Remove(ctx context.Context, userID, productID string) error {
	return r.store.Delete(ctx, cartPath(userID), productID)
}

// Clear deletes entries one by one. A failure part way leaves the rest in place.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	items, err := r.List(ctx, userID)
	if err != nil {
		return err
	}
	var errs []error
	for _, it := range items {
		if err := r.Remove(ctx, userID, it.ProductID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WishlistRepository keeps users/<uid>/wishlist/<productId> documents.
type WishlistRepository struct {
	store docstore.Store
}

func NewWishlistRepository(store docstore.Store) *WishlistRepository {
	return &WishlistRepository{store: store}
}

func (r *WishlistRepository) List(ctx context.Context, userID string) ([]*entity.WishlistItem, error) {
	return listAs(ctx, r.store, wishlistPath(userID), setWishlistProductID)
}

func (r *WishlistRepository) Add(ctx context.Context, userID string, item *entity.WishlistItem) error {
	_, err := add(ctx, r.store, wishlistPath(userID), item.ProductID, item)
	return err
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	return r.store.Delete(ctx, wishlistPath(userID), productID)
}

func (r *WishlistRepository) Contains(ctx context.Context, userID, productID string) (bool, error) {
	_, err := r.store.Get(ctx, wishlistPath(userID), productID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var (
	_ repository.ReviewRepository   = (*ReviewRepository)(nil)
	_ repository.CartRepository     = (*CartRepository)(nil)
	_ repository.WishlistRepository = (*WishlistRepository)(nil)
)
