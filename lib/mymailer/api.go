package mymailer

import "context"

type Email struct {
	From     string
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

//go:generate mockgen -source=api.go -package mymailer -destination mailer_mock.go Mailer
type Mailer interface {
	Send(c context.Context, email Email) error
}
