package mymailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
)

type sendgridMailer struct {
	client *sendgrid.Client
}

func New(apiKey string) Mailer {
	return &sendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
	}
}

func (m *sendgridMailer) Send(c context.Context, email Email) error {
	from := mail.NewEmail(email.FromName, email.From)
	to := mail.NewEmail("", email.To)

	message := mail.NewSingleEmail(from, email.Subject, to, email.TextBody, email.HTMLBody)
	if email.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", email.ReplyTo))
	}

	resp, err := m.client.SendWithContext(c, message)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error sending mail to %s: %s", email.To, err))
	}
	if resp.StatusCode >= 300 {
		return myerrors.NewUnavailableError(fmt.Errorf("error sending mail to %s: http-status %d", email.To, resp.StatusCode))
	}

	return nil
}
