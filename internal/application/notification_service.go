package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/events"
)

type NotificationInput struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"required,max=2000"`
}

// NotificationService manages broadcast notifications. There is no per-user
// read state.
type NotificationService struct {
	Notifications repo.NotificationRepository
	Events        events.Publisher
	Topic         string
	Validate      *validator.Validate
	Logger        *logrus.Logger
	Now           func() time.Time
}

func NewNotificationService(notifications repo.NotificationRepository, logger *logrus.Logger) *NotificationService {
	return &NotificationService{Notifications: notifications, Events: events.Noop{}, Validate: defaultValidator, Logger: logger, Now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, q string) ([]*entity.Notification, error) {
	items, err := s.Notifications.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return FilterBySubstring(items, q, func(n *entity.Notification) []string { return []string{n.Title, n.Description} }), nil
}

func (s *NotificationService) Create(ctx context.Context, sess *Session, in NotificationInput) (*entity.Notification, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	n := &entity.Notification{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now().UTC(),
	}
	if err := s.Notifications.Add(ctx, n); err != nil {
		return nil, err
	}
	if s.Events != nil {
		ev := events.Event{Type: events.TypeNotificationBroadcast, Key: n.ID, OccurredAt: n.CreatedAt, Payload: n}
		if err := s.Events.Publish(ctx, s.Topic, ev); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("notification_id", n.ID).Warn("publish notification failed")
		}
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, sess *Session, id string) ([]*entity.Notification, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := s.Notifications.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.List(ctx, "")
}
