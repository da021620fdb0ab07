package checkoutmollie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mypublisher"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myuuid"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderevents"
)

const testAPIKey = "test_api_key"

func paidPayment() mollie.Payment {
	return mollie.Payment{
		ID:     "tr_123",
		Status: "paid",
		Amount: &mollie.Amount{
			Value:    "99.00",
			Currency: "EUR",
		},
		Metadata: map[string]any{
			"orderReference": "ref-1",
			"product":        "paris-pass",
			"buyerName":      "Kovács Éva",
			"buyerEmail":     "eva@example.com",
			"buyerPhone":     "+36201234567",
		},
	}
}

func TestPassCheckoutService(t *testing.T) {

	t.Run("Start pass checkout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, payer, _, uuider, publisher := setup(t, ctrl)

		// given
		uuider.EXPECT().Create().Return("ref-1")
		payer.EXPECT().UseAPIKey(testAPIKey)
		payer.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(mollie.Payment{
			ID: "tr_123",
			Links: mollie.PaymentLinks{
				Checkout: &mollie.URL{
					Href: "https://www.mollie.com/checkout/select-method/tr_123",
				},
			},
		}, nil)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.CheckoutStarted{
			SessionUID:    "ref-1",
			ProviderName:  "mollie",
			Product:       "paris-pass",
			AmountInCents: 9900,
			Currency:      "EUR",
			BuyerEmail:    "eva@example.com",
		}).Return(nil)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/pass/checkout", strings.NewReader(`{"name":"Kovács Éva","email":"eva@example.com","phone":"+36201234567"}`))
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"url": "https://www.mollie.com/checkout/select-method/tr_123"`)
	})

	t.Run("Start pass checkout with missing email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl)

		// when: no payment is created on the gateway
		request, err := http.NewRequest(http.MethodPost, "/api/pass/checkout", strings.NewReader(`{"name":"Kovács Éva"}`))
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 400, response.Code)
		assert.Contains(t, response.Body.String(), "email")
	})

	t.Run("Handle webhook for paid payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, payer, nower, uuider, publisher := setup(t, ctrl)

		// given
		payer.EXPECT().UseAPIKey(testAPIKey)
		payer.EXPECT().GetPaymentOnID(gomock.Any(), "tr_123").Return(paidPayment(), nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("pass-token-789")
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderCompleted{
			OrderReference: "ref-1",
			ProviderName:   "mollie",
			Product:        "paris-pass",
			AmountInCents:  9900,
			Currency:       "EUR",
			BuyerName:      "Kovács Éva",
			BuyerEmail:     "eva@example.com",
			AccessToken:    "pass-token-789",
		}).Return(nil)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, webhookRequest(t))

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"received": true`)

		order, exists, _ := storer.Get(ctx, "ref-1")
		assert.True(t, exists)
		assert.Equal(t, "paris-pass", order.Product)
		assert.Equal(t, "mollie", order.PaymentProvider)
		assert.Equal(t, int64(9900), order.AmountInCents)
		assert.Equal(t, orderapi.PaymentStatusCompleted, order.PaymentStatus)
		assert.Equal(t, "pass-token-789", order.AccessToken)
	})

	t.Run("Handle webhook delivered twice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, payer, nower, uuider, publisher := setup(t, ctrl)

		// given: the order is only created and published once
		payer.EXPECT().UseAPIKey(testAPIKey).Times(2)
		payer.EXPECT().GetPaymentOnID(gomock.Any(), "tr_123").Return(paidPayment(), nil).Times(2)
		nower.EXPECT().Now().Return(mytime.ExampleTime).Times(2)
		uuider.EXPECT().Create().Return("pass-token-789")
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil)

		// when
		for i := 0; i < 2; i++ {
			response := httptest.NewRecorder()
			router.ServeHTTP(response, webhookRequest(t))
			assert.Equal(t, 200, response.Code)
		}

		// then
		order, exists, _ := storer.Get(ctx, "ref-1")
		assert.True(t, exists)
		assert.Equal(t, "pass-token-789", order.AccessToken)
	})

	t.Run("Handle webhook for unpaid payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, payer, _, _, _ := setup(t, ctrl)

		// given
		payment := paidPayment()
		payment.Status = "open"
		payer.EXPECT().UseAPIKey(testAPIKey)
		payer.EXPECT().GetPaymentOnID(gomock.Any(), "tr_123").Return(payment, nil)

		// when: acked but nothing is stored or published
		response := httptest.NewRecorder()
		router.ServeHTTP(response, webhookRequest(t))

		// then
		assert.Equal(t, 200, response.Code)
		_, exists, _ := storer.Get(ctx, "ref-1")
		assert.False(t, exists)
	})

	t.Run("Handle webhook without payment id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/pass/webhook", strings.NewReader(``))
		assert.NoError(t, err)
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 400, response.Code)
	})
}

func webhookRequest(t *testing.T) *http.Request {
	request, err := http.NewRequest(http.MethodPost, "/api/pass/webhook", strings.NewReader(`id=tr_123`))
	assert.NoError(t, err)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return request
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[orderapi.Order], *MockPayer, *mytime.MockNower, *myuuid.MockUUIDer, *mypublisher.MockPublisher) {
	c := context.TODO()
	storer, _, _ := mystore.New[orderapi.Order](c)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)
	payer := NewMockPayer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	sut, err := NewWebService(testAPIKey, payer, nower, uuider, storer, publisher)
	assert.NoError(t, err)
	router := mux.NewRouter()

	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, storer, payer, nower, uuider, publisher
}
