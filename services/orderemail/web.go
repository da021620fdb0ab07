package orderemail

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mycontext"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myhttp"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mymailer"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypubsub"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderevents"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(pubsub mypubsub.PubSub, mailer mymailer.Mailer, sender string, siteOrigin string) *webService {
	logger := mylog.New("orderemail")
	return &webService{
		logger:  logger,
		service: newService(logger, pubsub, mailer, sender, siteOrigin),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/orderemail/event", s.eventPage()).Methods("POST")

	return s.service.Subscribe(c)
}

func (s *webService) eventPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := orderevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "event processed"})
	}
}
