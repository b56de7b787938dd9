package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends rendered messages through the Mailgun HTTP API.
type Mailgun struct {
	Sender string
	// Tags are attached to every message for Mailgun analytics.
	Tags []string

	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string, tags ...string) *Mailgun {
	return &Mailgun{Sender: sender, Tags: tags, client: mg.NewMailgun(domain, apiKey)}
}

// Send delivers one message. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	for _, t := range m.Tags {
		if err := msg.AddTag(t); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
