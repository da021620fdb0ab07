package orderemail

import (
	"context"
	"fmt"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myhttp"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mymailer"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypubsub"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderevents"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/productapi"
)

type service struct {
	logger     mylog.Logger
	pubsub     mypubsub.PubSub
	mailer     mymailer.Mailer
	sender     string
	siteOrigin string
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, pubsub mypubsub.PubSub, mailer mymailer.Mailer, sender string, siteOrigin string) *service {
	return &service{
		logger:     logger,
		pubsub:     pubsub,
		mailer:     mailer,
		sender:     sender,
		siteOrigin: siteOrigin,
	}
}

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.CreateTopic(c, orderevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", orderevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, orderevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/orderemail/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", orderevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event orderevents.CheckoutStarted) error {
	return nil
}

// OnOrderCompleted mails the buyer a confirmation with the unlock link.
// Mail failures are logged and not retried: the event UID is a payload
// checksum, so a pubsub redelivery would just send the same mail again.
func (s *service) OnOrderCompleted(c context.Context, topic string, event orderevents.OrderCompleted) error {
	s.logger.Log(c, event.OrderReference, mylog.SeverityInfo, "Sending confirmation for order %s to %s", event.OrderReference, event.BuyerEmail)

	if event.BuyerEmail == "" {
		s.logger.Log(c, event.OrderReference, mylog.SeverityWarn, "Order %s has no buyer email", event.OrderReference)
		return nil
	}

	err := s.mailer.Send(c, s.composeConfirmation(event))
	if err != nil {
		s.logger.Log(c, event.OrderReference, mylog.SeverityError, "Error sending confirmation for order %s: %s", event.OrderReference, err)
	}

	return nil
}

func (s *service) composeConfirmation(event orderevents.OrderCompleted) mymailer.Email {
	productName := event.Product
	product, found := productapi.Find(event.Product)
	if found {
		productName = product.Name
	}

	accessURL := fmt.Sprintf("%s/hozzaferes?token=%s", s.siteOrigin, event.AccessToken)

	return mymailer.Email{
		From:     s.sender,
		FromName: "Utazás Párizsba",
		To:       event.BuyerEmail,
		Subject:  fmt.Sprintf("Order confirmation: %s", productName),
		TextBody: fmt.Sprintf("Dear %s,\n\nThank you for your purchase of %s (%s %.2f).\n\nYour content is available here:\n%s\n\nUtazás Párizsba",
			event.BuyerName, productName, event.Currency, float64(event.AmountInCents)/100.0, accessURL),
		HTMLBody: fmt.Sprintf("<p>Dear %s,</p><p>Thank you for your purchase of <b>%s</b> (%s %.2f).</p><p><a href=%q>Open your content</a></p><p>Utazás Párizsba</p>",
			event.BuyerName, productName, event.Currency, float64(event.AmountInCents)/100.0, accessURL),
	}
}
