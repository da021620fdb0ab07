package checkoutstripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypublisher"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myuuid"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderevents"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/productapi"
)

const providerName = "stripe"

type service struct {
	logger     mylog.Logger
	nower      mytime.Nower
	uuider     myuuid.UUIDer
	payer      Payer
	orderStore mystore.Store[orderapi.Order]
	publisher  mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(apiKey string, logger mylog.Logger, nower mytime.Nower, uuider myuuid.UUIDer, payer Payer, orderStore mystore.Store[orderapi.Order], publisher mypublisher.Publisher) (*service, error) {
	payer.UseAPIKey(apiKey)
	return &service{
		logger:     logger,
		nower:      nower,
		uuider:     uuider,
		payer:      payer,
		orderStore: orderStore,
		publisher:  publisher,
	}, nil
}

// startCheckout opens a hosted checkout session on the Stripe platform.
// The order store is not touched here: an order only comes into existence
// when the webhook confirms the payment.
func (s *service) startCheckout(c context.Context, productTag string, buyer orderapi.Buyer, siteBaseURL string) (string, error) {
	err := buyer.Validate()
	if err != nil {
		return "", err
	}

	product, found := productapi.Find(productTag)
	if !found {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("unknown product '%s'", productTag))
	}

	s.logger.Log(c, productTag, mylog.SeverityInfo, "Start checkout of %s for %s", product.Tag, buyer.Email)

	params := composeCheckoutParams(product, buyer, siteBaseURL)
	session, err := s.payer.CreateCheckoutSession(c, params)
	if err != nil {
		return "", err
	}

	err = s.publisher.Publish(c, orderevents.TopicName, orderevents.CheckoutStarted{
		SessionUID:    session.ID,
		ProviderName:  providerName,
		Product:       product.Tag,
		AmountInCents: session.AmountTotal,
		Currency:      strings.ToUpper(string(session.Currency)),
		BuyerEmail:    buyer.Email,
	})
	if err != nil {
		// The buyer can still pay, only the analytics trail is missing
		s.logger.Log(c, session.ID, mylog.SeverityWarn, "Error publishing start of checkout %s: %s", session.ID, err)
	}

	return session.URL, nil
}

func composeCheckoutParams(product productapi.Product, buyer orderapi.Buyer, siteBaseURL string) stripe.CheckoutSessionParams {
	params := stripe.CheckoutSessionParams{
		SuccessURL:        stripe.String(siteBaseURL + "/koszonjuk?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(siteBaseURL + "/"),
		ClientReferenceID: stripe.String(product.Tag),
		CustomerEmail:     stripe.String(buyer.Email),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		Currency:          stripe.String(strings.ToLower(product.Currency)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(product.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(product.Name),
						Description: stripe.String(product.Description),
					},
					UnitAmount: stripe.Int64(product.AmountInCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	for key, value := range buyer.ToMetadata(product.Tag) {
		params.AddMetadata(key, value)
	}

	return params
}

// handleWebhookEvent processes a signature-verified gateway event. Events
// that do not belong to this site are acknowledged without side effect.
func (s *service) handleWebhookEvent(c context.Context, event stripe.Event) error {
	if event.Type != "checkout.session.completed" {
		s.logger.Log(c, event.ID, mylog.SeverityDebug, "Ignoring event %s of type %s", event.ID, event.Type)
		return nil
	}

	session := stripe.CheckoutSession{}
	err := json.Unmarshal(event.Data.Raw, &session)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error parsing session out of event %s: %s", event.ID, err))
	}

	return s.registerCompletedSession(c, session)
}

func (s *service) registerCompletedSession(c context.Context, session stripe.CheckoutSession) error {
	buyer, productTag := orderapi.BuyerFromMetadata(orderapi.MetadataFromAny(session.Metadata))
	product, found := productapi.Find(productTag)
	if !found {
		s.logger.Log(c, session.ID, mylog.SeverityInfo, "Ignoring session %s for foreign product '%s'", session.ID, productTag)
		return nil
	}

	now := s.nower.Now()

	return s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent: the gateway delivers at-least-once
		_, exists, err := s.orderStore.Get(c, session.ID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", session.ID, err))
		}
		if exists {
			s.logger.Log(c, session.ID, mylog.SeverityInfo, "Order %s already registered", session.ID)
			return nil
		}

		order := orderapi.Order{
			OrderReference:  session.ID,
			Product:         product.Tag,
			BuyerName:       buyer.Name,
			BuyerEmail:      buyer.Email,
			BuyerPhone:      buyer.Phone,
			AmountInCents:   session.AmountTotal,
			Currency:        strings.ToUpper(string(session.Currency)),
			PaymentStatus:   orderapi.PaymentStatusCompleted,
			PaymentProvider: providerName,
			AccessToken:     s.uuider.Create(),
			CreatedAt:       now,
		}

		err = s.orderStore.Put(c, session.ID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order %s: %s", session.ID, err))
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.OrderCompleted{
			OrderReference: order.OrderReference,
			ProviderName:   providerName,
			Product:        order.Product,
			AmountInCents:  order.AmountInCents,
			Currency:       order.Currency,
			BuyerName:      order.BuyerName,
			BuyerEmail:     order.BuyerEmail,
			AccessToken:    order.AccessToken,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing completion of order %s: %s", session.ID, err))
		}

		s.logger.Log(c, session.ID, mylog.SeverityInfo, "Registered order %s (%s) for %s", session.ID, product.Tag, order.BuyerEmail)

		return nil
	})
}
