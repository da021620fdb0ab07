package confirmation

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orderapi"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/orders"
)

var confirmedOrder = orderapi.Order{
	OrderReference:  "cs_test_123",
	Product:         "museum-guide",
	BuyerName:       "Kovács Éva",
	BuyerEmail:      "eva@example.com",
	AmountInCents:   1900,
	Currency:        "EUR",
	PaymentStatus:   orderapi.PaymentStatusCompleted,
	PaymentProvider: "stripe",
	AccessToken:     "ticket-token-456",
}

func TestPoller(t *testing.T) {

	t.Run("Confirmation on second attempt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		fetcher := NewMockOrderFetcher(ctrl)
		fetcher.EXPECT().Fetch(gomock.Any(), "cs_test_123").Return(orderapi.Order{}, false, nil)
		fetcher.EXPECT().Fetch(gomock.Any(), "cs_test_123").Return(confirmedOrder, true, nil)
		tokens := NewInMemoryTokenStore()

		// when
		sut := NewPoller(fetcher, tokens, time.Millisecond, 5)
		endState, err := sut.Await(context.TODO(), "cs_test_123")

		// then
		assert.NoError(t, err)
		assert.Equal(t, EndStateSuccessWithToken, endState)

		token, found, _ := tokens.Get("cs_test_123")
		assert.True(t, found)
		assert.Equal(t, "ticket-token-456", token)
	})

	t.Run("Budget exhausted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		fetcher := NewMockOrderFetcher(ctrl)
		fetcher.EXPECT().Fetch(gomock.Any(), "cs_test_123").Return(orderapi.Order{}, false, nil).Times(3)
		tokens := NewInMemoryTokenStore()

		// when
		sut := NewPoller(fetcher, tokens, time.Millisecond, 3)
		endState, err := sut.Await(context.TODO(), "cs_test_123")

		// then
		assert.NoError(t, err)
		assert.Equal(t, EndStateSuccessWithoutToken, endState)

		_, found, _ := tokens.Get("cs_test_123")
		assert.False(t, found)
	})

	t.Run("Fetch errors count as attempts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		fetcher := NewMockOrderFetcher(ctrl)
		fetcher.EXPECT().Fetch(gomock.Any(), "cs_test_123").Return(orderapi.Order{}, false, myerrors.NewUnavailableError(assert.AnError)).Times(2)
		fetcher.EXPECT().Fetch(gomock.Any(), "cs_test_123").Return(confirmedOrder, true, nil)
		tokens := NewInMemoryTokenStore()

		// when
		sut := NewPoller(fetcher, tokens, time.Millisecond, 3)
		endState, err := sut.Await(context.TODO(), "cs_test_123")

		// then
		assert.NoError(t, err)
		assert.Equal(t, EndStateSuccessWithToken, endState)
	})

	t.Run("Context cancellation stops polling", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		fetcher := NewMockOrderFetcher(ctrl)
		fetcher.EXPECT().Fetch(gomock.Any(), "cs_test_123").Return(orderapi.Order{}, false, nil).MinTimes(1)
		tokens := NewInMemoryTokenStore()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		// when
		sut := NewPoller(fetcher, tokens, time.Hour, 10)
		endState, err := sut.Await(ctx, "cs_test_123")

		// then
		assert.Error(t, err)
		assert.Equal(t, EndStateSuccessWithoutToken, endState)
	})

	t.Run("Poll a live confirmation endpoint", func(t *testing.T) {
		// setup: the confirmation endpoint as the buyer's device sees it
		c := context.TODO()
		storer, _, _ := mystore.New[orderapi.Order](c)
		router := mux.NewRouter()
		err := orders.NewWebService("admin_key", storer).RegisterEndpoints(c, router)
		assert.NoError(t, err)
		server := httptest.NewServer(router)
		defer server.Close()

		tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
		sut := NewPoller(NewOrderFetcher(server.URL), tokens, 10*time.Millisecond, 50)

		// given: the first attempts miss, then the webhook lands
		go func() {
			time.Sleep(30 * time.Millisecond)
			order := confirmedOrder
			order.CreatedAt = mytime.ExampleTime
			_ = storer.Put(c, "cs_test_123", order)
		}()

		// when
		endState, err := sut.Await(c, "cs_test_123")

		// then
		assert.NoError(t, err)
		assert.Equal(t, EndStateSuccessWithToken, endState)

		token, found, _ := tokens.Get("cs_test_123")
		assert.True(t, found)
		assert.Equal(t, "ticket-token-456", token)
	})
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	sut := NewFileTokenStore(path)

	_, found, err := sut.Get("cs_test_123")
	assert.NoError(t, err)
	assert.False(t, found)

	err = sut.Put("cs_test_123", "ticket-token-456")
	assert.NoError(t, err)

	// a new store over the same file sees the token
	token, found, err := NewFileTokenStore(path).Get("cs_test_123")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ticket-token-456", token)
}
