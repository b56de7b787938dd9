package mailqueue

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/pkg/mailer"
)

type capture struct{ jobs []mailer.EmailJob }

func (c *capture) PublishJSON(_ context.Context, body any) error {
	c.jobs = append(c.jobs, body.(mailer.EmailJob))
	return nil
}

func TestOrderPlacedJob(t *testing.T) {
	pub := &capture{}
	q := New(pub, &config.Config{MailSendEnabled: true, OrdersURL: "https://shop.test/orders"})
	o := &entity.Order{
		ID:            "o-1",
		Status:        entity.OrderPending,
		Total:         decimal.RequireFromString("19"),
		PaymentMethod: "card",
		Items:         []entity.OrderItem{{Title: "Mug", Price: decimal.RequireFromString("9.5"), Quantity: 2}},
		OrderDate:     time.Now(),
	}
	require.NoError(t, q.OrderPlaced(context.Background(), &entity.User{Email: "ana@example.com", FirstName: "Ana"}, o))

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "ana@example.com", job.To)
	assert.Equal(t, "universal", job.Template)
	assert.Equal(t, "order_placed", job.Data["Type"])
	assert.Equal(t, "19.00", job.Data["OrderTotal"])
	assert.Equal(t, "Ana", job.Data["Name"])
}

func TestDisabledQueueIsNoop(t *testing.T) {
	pub := &capture{}
	q := New(pub, &config.Config{MailSendEnabled: false})
	require.NoError(t, q.PasswordReset(context.Background(), &entity.User{Email: "a@b.co"}, "https://x", time.Minute, application.ClientInfo{}))
	assert.Empty(t, pub.jobs)
}

func TestSecurityJobsCarryClient(t *testing.T) {
	pub := &capture{}
	q := New(pub, &config.Config{MailSendEnabled: true})
	u := &entity.User{Email: "ana@example.com"}
	client := application.ClientInfo{IP: "203.0.113.9", UserAgent: "curl/8"}
	ctx := context.Background()

	require.NoError(t, q.PasswordReset(ctx, u, "https://shop.test/reset?token=t", 30*time.Minute, client))
	require.NoError(t, q.PasswordChanged(ctx, u, client))

	require.Len(t, pub.jobs, 2)
	for _, job := range pub.jobs {
		assert.Equal(t, "203.0.113.9", job.Data["IP"])
		assert.Equal(t, "curl/8", job.Data["UserAgent"])
	}
	assert.Equal(t, "forgot_password", pub.jobs[0].Data["Type"])
	assert.Equal(t, "password_changed", pub.jobs[1].Data["Type"])
}
