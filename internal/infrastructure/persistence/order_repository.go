package persistence

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
)

func setOrderID(o *entity.Order, id string)               { o.ID = id }
func setNotificationID(n *entity.Notification, id string) { n.ID = id }

type OrderRepository struct {
	store docstore.Store
}

func NewOrderRepository(store docstore.Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*entity.Order, error) {
	return getAs(ctx, r.store, ordersCollection, id, setOrderID)
}

func (r *OrderRepository) List(ctx context.Context) ([]*entity.Order, error) {
	return listAs(ctx, r.store, ordersCollection, setOrderID)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	return whereAs(ctx, r.store, ordersCollection, "userId", userID, setOrderID)
}

func (r *OrderRepository) Add(ctx context.Context, o *entity.Order) error {
	id, err := add(ctx, r.store, ordersCollection, o.ID, o)
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, ordersCollection, id, fields)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ordersCollection, id)
}

type NotificationRepository struct {
	store docstore.Store
}

func NewNotificationRepository(store docstore.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) List(ctx context.Context) ([]*entity.Notification, error) {
	return listAs(ctx, r.store, notificationsCollection, setNotificationID)
}

func (r *NotificationRepository) Add(ctx context.Context, n *entity.Notification) error {
	id, err := add(ctx, r.store, notificationsCollection, n.ID, n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, notificationsCollection, id)
}

var (
	_ repository.OrderRepository        = (*OrderRepository)(nil)
	_ repository.NotificationRepository = (*NotificationRepository)(nil)
)
