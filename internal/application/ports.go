package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// ProductIndex is the full-text index kept beside the product collection.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *entity.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProducts(ctx context.Context, q string, size int) ([]string, error)
}

// UserIndex is the full-text index kept beside the users collection.
type UserIndex interface {
	IndexUser(ctx context.Context, u *entity.User) error
	DeleteUser(ctx context.Context, id string) error
	SearchUsers(ctx context.Context, q string, size int) ([]string, error)
}

// ClientInfo describes the caller of a security sensitive request. Security
// emails show it so the owner can recognise the request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Mailer enqueues transactional emails. Implementations must not block on delivery.
type Mailer interface {
	PasswordReset(ctx context.Context, u *entity.User, link string, ttl time.Duration, client ClientInfo) error
	PasswordChanged(ctx context.Context, u *entity.User, client ClientInfo) error
	OrderPlaced(ctx context.Context, u *entity.User, o *entity.Order) error
	OrderStatusChanged(ctx context.Context, u *entity.User, o *entity.Order) error
}
