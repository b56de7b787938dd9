package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// ErrNotFound is returned by Get style methods when the document is absent.
var ErrNotFound = errors.New("not found")

// UserRepository defines profile document operations.
type UserRepository interface {
	Get(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Put(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// CredentialRepository stores password hashes keyed by user id.
type CredentialRepository interface {
	Get(ctx context.Context, id string) (*entity.Credential, error)
	FindByEmail(ctx context.Context, email string) (*entity.Credential, error)
	Put(ctx context.Context, c *entity.Credential) error
	Delete(ctx context.Context, id string) error
}

type ProductRepository interface {
	Get(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	ListBy(ctx context.Context, field string, value string) ([]*entity.Product, error)
	Add(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	Get(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Add(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type BrandRepository interface {
	Get(ctx context.Context, id string) (*entity.Brand, error)
	List(ctx context.Context) ([]*entity.Brand, error)
	Add(ctx context.Context, b *entity.Brand) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type OrderRepository interface {
	Get(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context) ([]*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
	Add(ctx context.Context, o *entity.Order) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	List(ctx context.Context) ([]*entity.Notification, error)
	Add(ctx context.Context, n *entity.Notification) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository operates on the reviews subcollection of one product.
type ReviewRepository interface {
	Get(ctx context.Context, productID, id string) (*entity.Review, error)
	List(ctx context.Context, productID string) ([]*entity.Review, error)
	Add(ctx context.Context, r *entity.Review) error
	Delete(ctx context.Context, productID, id string) error
}

// CartRepository keeps one document per product id with an explicit quantity.
type CartRepository interface {
	List(ctx context.Context, userID string) ([]*entity.CartItem, error)
	Set(ctx context.Context, userID string, item *entity.CartItem) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]*entity.WishlistItem, error)
	Add(ctx context.Context, userID string, item *entity.WishlistItem) error
	Remove(ctx context.Context, userID, productID string) error
	Contains(ctx context.Context, userID, productID string) (bool, error)
}
