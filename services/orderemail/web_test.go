package orderemail

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myevents"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mymailer"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypubsub"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderevents"
)

func TestOrderEmailService(t *testing.T) {

	t.Run("Send confirmation on order completion", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, mailer := setup(t, ctrl)

		// given
		mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(c context.Context, email mymailer.Email) error {
				assert.Equal(t, "eva@example.com", email.To)
				assert.Equal(t, "noreply@utazasparizsba.hu", email.From)
				assert.Contains(t, email.Subject, "Interactive museum guide")
				assert.Contains(t, email.TextBody, "https://utazasparizsba.hu/hozzaferes?token=ticket-token-456")
				return nil
			})

		// when
		response := postEvent(t, router, orderevents.OrderCompleted{
			OrderReference: "cs_test_123",
			ProviderName:   "stripe",
			Product:        "museum-guide",
			AmountInCents:  1900,
			Currency:       "EUR",
			BuyerName:      "Kovács Éva",
			BuyerEmail:     "eva@example.com",
			AccessToken:    "ticket-token-456",
		})

		// then
		assert.Equal(t, 200, response.Code)
	})

	t.Run("Mail failure is swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, mailer := setup(t, ctrl)

		// given
		mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(assert.AnError)

		// when: pubsub must not see an error, the send is not retried
		response := postEvent(t, router, orderevents.OrderCompleted{
			OrderReference: "cs_test_123",
			Product:        "museum-guide",
			BuyerEmail:     "eva@example.com",
		})

		// then
		assert.Equal(t, 200, response.Code)
	})

	t.Run("Checkout-started events are ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		router, _ := setup(t, ctrl)

		// when: no mail goes out
		response := postEvent(t, router, orderevents.CheckoutStarted{
			SessionUID: "cs_test_123",
			Product:    "museum-guide",
		})

		// then
		assert.Equal(t, 200, response.Code)
	})
}

func postEvent(t *testing.T, router *mux.Router, event myevents.Event) *httptest.ResponseRecorder {
	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	envelope, err := json.Marshal(myevents.EventEnvelope{
		UID:           "event-uid-1",
		Topic:         orderevents.TopicName,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	})
	assert.NoError(t, err)

	body, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{
			Data: envelope,
			ID:   "push-msg-1",
		},
		Subscription: "order",
	})
	assert.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, "/api/orderemail/event", bytes.NewReader(body))
	assert.NoError(t, err)

	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	return response
}

func setup(t *testing.T, ctrl *gomock.Controller) (*mux.Router, *mymailer.MockMailer) {
	c := context.TODO()
	pubsub := mypubsub.NewMockPubSub(ctrl)
	mailer := mymailer.NewMockMailer(ctrl)

	sut := NewWebService(pubsub, mailer, "noreply@utazasparizsba.hu", "https://utazasparizsba.hu")
	router := mux.NewRouter()

	// These are called by the following call to RegisterEndpoints
	pubsub.EXPECT().CreateTopic(c, orderevents.TopicName).Return(nil)
	pubsub.EXPECT().Subscribe(c, orderevents.TopicName, "http://localhost:8080/api/orderemail/event").Return(nil)

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return router, mailer
}
