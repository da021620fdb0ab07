package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
)

const testAdminAPIKey = "test_admin_key"

func TestOrderService(t *testing.T) {

	t.Run("Get existing order", func(t *testing.T) {
		// setup
		ctx, router, storer := setup(t)

		// given
		_ = storer.Put(ctx, "cs_test_123", orderapi.Order{
			OrderReference:  "cs_test_123",
			Product:         "museum-guide",
			BuyerName:       "Kovács Éva",
			BuyerEmail:      "eva@example.com",
			AmountInCents:   1900,
			Currency:        "EUR",
			PaymentStatus:   orderapi.PaymentStatusCompleted,
			PaymentProvider: "stripe",
			AccessToken:     "ticket-token-456",
			CreatedAt:       mytime.ExampleTime,
		})

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/orders/cs_test_123", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"paymentStatus": "completed"`)
		assert.Contains(t, response.Body.String(), `"accessToken": "ticket-token-456"`)
	})

	t.Run("Get unknown order", func(t *testing.T) {
		// setup
		_, router, _ := setup(t)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/orders/cs_does_not_exist", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("List orders as admin", func(t *testing.T) {
		// setup
		ctx, router, storer := setup(t)

		// given
		_ = storer.Put(ctx, "cs_1", orderapi.Order{
			OrderReference: "cs_1",
			Product:        "walking-tour",
			CreatedAt:      mytime.ExampleTime,
		})
		_ = storer.Put(ctx, "cs_2", orderapi.Order{
			OrderReference: "cs_2",
			Product:        "paris-pass",
			CreatedAt:      mytime.ExampleTime.Add(time.Hour),
		})

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/orders", nil)
		assert.NoError(t, err)
		request.Header.Set(adminAPIKeyHeader, testAdminAPIKey)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "cs_1")
		assert.Contains(t, response.Body.String(), "cs_2")
	})

	t.Run("List orders without admin key", func(t *testing.T) {
		// setup
		_, router, _ := setup(t)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/orders", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 403, response.Code)
	})
}

func setup(t *testing.T) (context.Context, *mux.Router, mystore.Store[orderapi.Order]) {
	c := context.TODO()
	storer, _, _ := mystore.New[orderapi.Order](c)

	sut := NewWebService(testAdminAPIKey, storer)
	router := mux.NewRouter()

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, storer
}
