package checkoutmollie

import (
	"context"
	"fmt"
	"strconv"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

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

const (
	providerName = "mollie"

	paidStatus = "paid"
)

type service struct {
	apiKey     string
	payer      Payer
	logger     mylog.Logger
	nower      mytime.Nower
	uuider     myuuid.UUIDer
	orderStore mystore.Store[orderapi.Order]
	publisher  mypublisher.Publisher
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(apiKey string, payer Payer, logger mylog.Logger, nower mytime.Nower, uuider myuuid.UUIDer, orderStore mystore.Store[orderapi.Order], publisher mypublisher.Publisher) (*service, error) {
	return &service{
		apiKey:     apiKey,
		payer:      payer,
		logger:     logger,
		nower:      nower,
		uuider:     uuider,
		orderStore: orderStore,
		publisher:  publisher,
	}, nil
}

// startCheckout initiates a Mollie payment for the city pass. Mollie does
// not hand out the payment id before creation, so a self-minted order
// reference travels in the metadata and in the redirect-back URL.
func (s *service) startCheckout(c context.Context, buyer orderapi.Buyer, siteBaseURL string) (string, error) {
	err := buyer.Validate()
	if err != nil {
		return "", err
	}

	product, _ := productapi.Find(productapi.TagParisPass)
	reference := s.uuider.Create()

	s.logger.Log(c, reference, mylog.SeverityInfo, "Start pass checkout %s for %s", reference, buyer.Email)

	metadata := buyer.ToMetadata(product.Tag)
	metadata[orderapi.MetadataKeyOrderReference] = reference

	s.payer.UseAPIKey(s.apiKey)
	payment, err := s.payer.CreatePayment(c, mollie.Payment{
		Description:  product.Name,
		BillingEmail: buyer.Email,
		ConsumerName: buyer.Name,
		RedirectURL:  fmt.Sprintf("%s/koszonjuk?session_id=%s", siteBaseURL, reference),
		WebhookURL:   siteBaseURL + "/api/pass/webhook",
		Metadata:     metadata,
		Amount: &mollie.Amount{
			Currency: product.Currency,
			Value:    fmt.Sprintf("%.2f", float64(product.AmountInCents)/100.0),
		},
	})
	if err != nil {
		return "", err
	}

	err = s.publisher.Publish(c, orderevents.TopicName, orderevents.CheckoutStarted{
		SessionUID:    reference,
		ProviderName:  providerName,
		Product:       product.Tag,
		AmountInCents: product.AmountInCents,
		Currency:      product.Currency,
		BuyerEmail:    buyer.Email,
	})
	if err != nil {
		// The buyer can still pay, only the analytics trail is missing
		s.logger.Log(c, reference, mylog.SeverityWarn, "Error publishing start of pass checkout %s: %s", reference, err)
	}

	return payment.Links.Checkout.Href, nil
}

// handleWebhook processes a payment status change. Mollie only posts the
// payment id: authenticity comes from re-fetching the payment over the
// authenticated API client.
func (s *service) handleWebhook(c context.Context, paymentID string) (mollie.Payment, error) {
	s.payer.UseAPIKey(s.apiKey)
	payment, err := s.payer.GetPaymentOnID(c, paymentID)
	if err != nil {
		return mollie.Payment{}, myerrors.NewInvalidInputError(fmt.Errorf("error fetching payment %s: %s", paymentID, err))
	}

	return payment, nil
}

func (s *service) registerPaidPayment(c context.Context, payment mollie.Payment) error {
	if payment.Status != paidStatus {
		s.logger.Log(c, payment.ID, mylog.SeverityDebug, "Ignoring payment %s with status %s", payment.ID, payment.Status)
		return nil
	}

	metadata := orderapi.MetadataFromAny(payment.Metadata)
	buyer, productTag := orderapi.BuyerFromMetadata(metadata)
	reference := metadata[orderapi.MetadataKeyOrderReference]

	product, found := productapi.Find(productTag)
	if !found || reference == "" {
		s.logger.Log(c, payment.ID, mylog.SeverityInfo, "Ignoring payment %s for foreign product '%s'", payment.ID, productTag)
		return nil
	}

	now := s.nower.Now()

	return s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent: mollie re-posts until it gets a 200
		_, exists, err := s.orderStore.Get(c, reference)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", reference, err))
		}
		if exists {
			s.logger.Log(c, reference, mylog.SeverityInfo, "Order %s already registered", reference)
			return nil
		}

		order := orderapi.Order{
			OrderReference:  reference,
			Product:         product.Tag,
			BuyerName:       buyer.Name,
			BuyerEmail:      buyer.Email,
			BuyerPhone:      buyer.Phone,
			AmountInCents:   amountInCents(payment.Amount),
			Currency:        payment.Amount.Currency,
			PaymentStatus:   orderapi.PaymentStatusCompleted,
			PaymentProvider: providerName,
			AccessToken:     s.uuider.Create(),
			CreatedAt:       now,
		}

		err = s.orderStore.Put(c, reference, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order %s: %s", reference, err))
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
			return myerrors.NewInternalError(fmt.Errorf("error publishing completion of order %s: %s", reference, err))
		}

		s.logger.Log(c, reference, mylog.SeverityInfo, "Registered order %s (%s) for %s", reference, product.Tag, order.BuyerEmail)

		return nil
	})
}

func amountInCents(amount *mollie.Amount) int64 {
	if amount == nil {
		return 0
	}
	value, _ := strconv.ParseFloat(amount.Value, 64)
	return int64(value * 100)
}
