package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/events"
)

type CheckoutInput struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"required,max=300"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,max=50"`
}

type OrderService struct {
	Orders       repo.OrderRepository
	Cart         repo.CartRepository
	Products     repo.ProductRepository
	Users        repo.UserRepository
	Events       events.Publisher
	Topic        string
	Mailer       Mailer
	DeliveryDays int
	Validate     *validator.Validate
	Logger       *logrus.Logger
	Now          func() time.Time
}

func NewOrderService(orders repo.OrderRepository, cart repo.CartRepository, products repo.ProductRepository, users repo.UserRepository, logger *logrus.Logger) *OrderService {
	return &OrderService{
		Orders:       orders,
		Cart:         cart,
		Products:     products,
		Users:        users,
		Events:       events.Noop{},
		DeliveryDays: 7,
		Validate:     defaultValidator,
		Logger:       logger,
		Now:          time.Now,
	}
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Checkout snapshots the cart into a pending order and then clears the cart.
// Lines whose product no longer exists are left out; a cart with nothing
// else fails with ErrEmptyCart. The two steps are not atomic: when clearing
// fails the created order is returned together with ErrCartNotCleared.
func (s *OrderService) Checkout(ctx context.Context, sess *Session, in CheckoutInput) (*entity.Order, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" && sess.Profile != nil {
		in.DeliveryAddress = sess.Profile.Address
	}
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	items, err := s.Cart.List(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	now := s.now()
	o := &entity.Order{
		ID:              uuid.NewString(),
		UserID:          sess.UserID,
		Items:           make([]entity.OrderItem, 0, len(items)),
		Total:           decimal.Zero,
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		PaymentMethod:   in.PaymentMethod,
		Status:          entity.OrderPending,
		OrderDate:       now,
		DeliveryDate:    now.AddDate(0, 0, s.DeliveryDays),
	}
	for _, it := range items {
		p, err := s.Products.Get(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			// deleted from the catalog; the line goes with the cart clear
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{"user_id": sess.UserID, "product_id": it.ProductID}).Warn("checkout skipped missing product")
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("checkout product %s: %w", it.ProductID, err)
		}
		line := entity.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Image:     p.Thumbnail(),
		}
		o.Items = append(o.Items, line)
		o.Total = o.Total.Add(line.LineTotal())
	}
	if len(o.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := s.Orders.Add(ctx, o); err != nil {
		return nil, err
	}

	var clearErr error
	if err := s.Cart.Clear(ctx, sess.UserID); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": sess.UserID, "order_id": o.ID}).Error("cart clear after checkout failed")
		}
		clearErr = fmt.Errorf("%w: %v", ErrCartNotCleared, err)
	}

	s.publish(ctx, events.TypeOrderPlaced, o)
	if s.Mailer != nil {
		u := sess.Profile
		if u == nil {
			u = &entity.User{ID: sess.UserID, Email: sess.Email}
		}
		if err := s.Mailer.OrderPlaced(ctx, u, o); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("order_id", o.ID).Warn("enqueue order email failed")
		}
	}
	return o, clearErr
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, sess *Session) ([]*entity.Order, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	orders, err := s.Orders.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

// Get returns an order the caller owns; admins may read any order.
func (s *OrderService) Get(ctx context.Context, sess *Session, id string) (*entity.Order, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != sess.UserID && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	return o, nil
}

// List is the admin view. q matches order id, user id, address and status.
func (s *OrderService) List(ctx context.Context, sess *Session, q string) ([]*entity.Order, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	orders, err := s.Orders.List(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return FilterBySubstring(orders, q, func(o *entity.Order) []string {
		return []string{o.ID, o.UserID, o.DeliveryAddress, string(o.Status)}
	}), nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, sess *Session, id string, status entity.OrderStatus) (*entity.Order, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if !entity.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.Orders.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeOrderStatusChanged, o)
	if s.Mailer != nil && s.Users != nil {
		u, err := s.Users.Get(ctx, o.UserID)
		if err == nil {
			err = s.Mailer.OrderStatusChanged(ctx, u, o)
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).WithField("order_id", o.ID).Warn("enqueue status email failed")
		}
	}
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, typ string, o *entity.Order) {
	if s.Events == nil {
		return
	}
	ev := events.Event{Type: typ, Key: o.ID, OccurredAt: s.now(), Payload: o}
	if err := s.Events.Publish(ctx, s.Topic, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"type": typ, "order_id": o.ID}).Warn("publish order event failed")
	}
}

func sortNewestFirst(orders []*entity.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
}
