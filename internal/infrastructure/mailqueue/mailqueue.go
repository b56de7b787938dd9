package mailqueue

import (
	"context"
	"time"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/pkg/mailer"
	tpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

// JobPublisher puts an email job on the queue consumed by cmd/email_worker.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Queue builds universal template jobs and publishes them. When sending is
// disabled every call is a no-op.
type Queue struct {
	Pub JobPublisher
	Cfg *config.Config
}

func New(pub JobPublisher, cfg *config.Config) *Queue {
	return &Queue{Pub: pub, Cfg: cfg}
}

func (q *Queue) enabled() bool {
	return q != nil && q.Pub != nil && q.Cfg != nil && q.Cfg.MailSendEnabled
}

func (q *Queue) publish(ctx context.Context, to string, data map[string]any) error {
	if !q.enabled() || to == "" {
		return nil
	}
	return q.Pub.PublishJSON(ctx, mailer.EmailJob{To: to, Template: "universal", Data: data})
}

func (q *Queue) PasswordReset(ctx context.Context, u *entity.User, link string, ttl time.Duration, client application.ClientInfo) error {
	if !q.enabled() {
		return nil
	}
	data := tpl.NewForgotPasswordData(q.Cfg, u.FullName(), u.Email, link,
		tpl.WithTime(time.Now()),
		tpl.WithExpiresIn(ttl),
		tpl.WithIP(client.IP),
		tpl.WithUserAgent(client.UserAgent),
	)
	return q.publish(ctx, u.Email, data)
}

func (q *Queue) PasswordChanged(ctx context.Context, u *entity.User, client application.ClientInfo) error {
	if !q.enabled() {
		return nil
	}
	data := tpl.NewPasswordChangedData(q.Cfg, u.FullName(), u.Email,
		tpl.WithTime(time.Now()),
		tpl.WithIP(client.IP),
		tpl.WithUserAgent(client.UserAgent),
	)
	return q.publish(ctx, u.Email, data)
}

func (q *Queue) OrderPlaced(ctx context.Context, u *entity.User, o *entity.Order) error {
	if !q.enabled() {
		return nil
	}
	data := tpl.NewOrderPlacedData(q.Cfg, u.FullName(), u.Email, orderOption(o), tpl.WithTime(o.OrderDate))
	return q.publish(ctx, u.Email, data)
}

func (q *Queue) OrderStatusChanged(ctx context.Context, u *entity.User, o *entity.Order) error {
	if !q.enabled() {
		return nil
	}
	data := tpl.NewOrderStatusData(q.Cfg, u.FullName(), u.Email, orderOption(o), tpl.WithTime(time.Now()))
	return q.publish(ctx, u.Email, data)
}

func orderOption(o *entity.Order) tpl.Option {
	lines := make([]tpl.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, tpl.OrderLine{Title: it.Title, Quantity: it.Quantity, LineTotal: it.LineTotal().StringFixed(2)})
	}
	return tpl.WithOrder(o.ID, string(o.Status), o.Total.StringFixed(2), o.PaymentMethod, o.DeliveryAddress, o.DeliveryDate, lines)
}
