package orders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mycontext"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myhttp"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
)

const adminAPIKeyHeader = "X-Admin-Api-Key"

type webService struct {
	logger      mylog.Logger
	service     *service
	adminAPIKey string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(adminAPIKey string, orderStore mystore.Store[orderapi.Order]) *webService {
	logger := mylog.New("orders")
	return &webService{
		logger:      logger,
		service:     newService(logger, orderStore),
		adminAPIKey: adminAPIKey,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/orders", s.listOrdersPage()).Methods("GET")
	router.HandleFunc("/api/orders/{reference}", s.getOrderPage()).Methods("GET")

	return nil
}

func (s *webService) getOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		reference := mux.Vars(r)["reference"]

		order, err := s.service.getOrder(c, reference)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, order)
	}
}

func (s *webService) listOrdersPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		if r.Header.Get(adminAPIKeyHeader) != s.adminAPIKey {
			responseWriter.WriteError(c, w, 1, myerrors.NewAuthenticationError(fmt.Errorf("invalid admin api key")))
			return
		}

		orders, err := s.service.listOrders(c)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, orders)
	}
}
