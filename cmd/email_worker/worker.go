package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type worker struct {
	Sender   Sender
	Resolver mailtpl.GeoResolver
	Logger   *logrus.Logger
}

type renderError struct{ err error }

func (e renderError) Error() string { return "render: " + e.err.Error() }
func (e renderError) Unwrap() error { return e.err }

// isRenderError reports failures that retrying cannot fix.
func isRenderError(err error) bool {
	var re renderError
	return errors.As(err, &re)
}

// handle renders job and sends it. Render failures are wrapped in renderError.
func (w *worker) handle(ctx context.Context, job *mailer.EmailJob) error {
	subject, text, html, err := w.render(ctx, job)
	if err != nil {
		if w.Logger != nil {
			w.Logger.WithError(err).WithField("template", job.Template).Warn("render failed")
		}
		return renderError{err}
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		if w.Logger != nil {
			w.Logger.WithError(err).WithField("to", job.To).Warn("send failed")
		}
		return err
	}
	return nil
}

func (w *worker) render(ctx context.Context, job *mailer.EmailJob) (subject, text, html string, err error) {
	helpers.EnsureRecipientAndEmail(job)
	helpers.MapLegacyToUniversal(job)
	helpers.LocalizeForIP(ctx, w.Resolver, job.Data)

	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	if !strings.EqualFold(job.Template, "universal") {
		return mailtpl.Render(job.Template, job.Data)
	}

	if html, err = mailtpl.RenderHTML("universal", job.Data); err != nil {
		return "", "", "", err
	}
	if text, err = mailtpl.RenderText("universal", job.Data); err != nil {
		return "", "", "", err
	}
	subject = job.Subject
	if subject == "" {
		subject = helpers.SubjectForUniversal(job.Data)
	}
	return subject, text, html, nil
}
