package checkoutmollie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

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

type sessionResponse struct {
	URL string `json:"url"`
}

type webhookAck struct {
	Received bool `json:"received"`
}

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(apiKey string, payer Payer, nower mytime.Nower, uuider myuuid.UUIDer, orderStore mystore.Store[orderapi.Order], publisher mypublisher.Publisher) (*webService, error) {
	logger := mylog.New("checkoutmollie")
	s, err := newService(apiKey, payer, logger, nower, uuider, orderStore, publisher)
	if err != nil {
		return nil, err
	}

	return &webService{
		logger:  logger,
		service: s,
	}, nil
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/pass/checkout", s.startCheckoutPage()).Methods("POST")
	router.HandleFunc("/api/pass/webhook", s.webhookPage()).Methods("POST")

	return nil
}

func (s *webService) startCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		buyer := orderapi.Buyer{}
		err := json.NewDecoder(r.Body).Decode(&buyer)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		redirectURL, err := s.service.startCheckout(c, buyer, myhttp.HostnameWithScheme(r))
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

		err := r.ParseForm()
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		paymentID := r.FormValue("id")
		if paymentID == "" {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing id")))
			return
		}

		payment, err := s.service.handleWebhook(c, paymentID)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		err = s.service.registerPaidPayment(c, payment)
		if err != nil {
			// A non-2xx would put the gateway in a retry loop, so once the
			// payment is authenticated we ack no matter what and keep the
			// error in the logs.
			s.logger.Log(c, paymentID, mylog.SeverityError, "Error handling payment %s: %s", paymentID, err)
		}

		responseWriter.Write(c, w, http.StatusOK, webhookAck{
			Received: true,
		})
	}
}
