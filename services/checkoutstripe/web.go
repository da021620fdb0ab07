package checkoutstripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mycontext"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myhttp"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypublisher"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myuuid"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
)

const maxWebhookBodySize = 64 * 1024

type sessionResponse struct {
	URL string `json:"url"`
}

type webhookAck struct {
	Received bool `json:"received"`
}

type webService struct {
	logger        mylog.Logger
	service       *service
	webhookSecret string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(apiKey string, webhookSecret string, payer Payer, nower mytime.Nower, uuider myuuid.UUIDer, orderStore mystore.Store[orderapi.Order], publisher mypublisher.Publisher) (*webService, error) {
	logger := mylog.New("checkoutstripe")
	s, err := newService(apiKey, logger, nower, uuider, payer, orderStore, publisher)
	if err != nil {
		return nil, err
	}

	return &webService{
		logger:        logger,
		service:       s,
		webhookSecret: webhookSecret,
	}, nil
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/checkout/{product}", s.startCheckoutPage()).Methods("POST")
	router.HandleFunc("/api/checkout/webhook", s.webhookPage()).Methods("POST")

	return nil
}

func (s *webService) startCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productTag := mux.Vars(r)["product"]

		buyer := orderapi.Buyer{}
		err := json.NewDecoder(r.Body).Decode(&buyer)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		redirectURL, err := s.service.startCheckout(c, productTag, buyer, myhttp.HostnameWithScheme(r))
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, sessionResponse{
			URL: redirectURL,
		})
	}
}

func (s *webService) webhookPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error reading webhook body: %s", err)))
			return
		}

		event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), s.webhookSecret)
		if err != nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("webhook signature verification failed: %s", err)))
			return
		}

		err = s.service.handleWebhookEvent(c, event)
		if err != nil {
			// A non-2xx would put the gateway in a retry loop, so after the
			// signature checks out we ack no matter what and keep the error
			// in the logs.
			s.logger.Log(c, event.ID, mylog.SeverityError, "Error handling webhook event %s: %s", event.ID, err)
		}

		responseWriter.Write(c, w, http.StatusOK, webhookAck{
			Received: true,
		})
	}
}
