package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
)

const testAdminAPIKey = "test_admin_key"

func TestContentService(t *testing.T) {

	t.Run("List published tours", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, tourStore, _, _ := setup(t, ctrl)

		// given
		_ = tourStore.Put(ctx, "marais-walk", Tour{UID: "marais-walk", Title: "Marais walk", Published: true})
		_ = tourStore.Put(ctx, "montmartre-draft", Tour{UID: "montmartre-draft", Title: "Montmartre draft", Published: false})

		// when
		response := doRequest(t, router, http.MethodGet, "/api/tours", "", false)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "marais-walk")
		assert.NotContains(t, response.Body.String(), "montmartre-draft")
	})

	t.Run("Get unpublished tour", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, tourStore, _, _ := setup(t, ctrl)

		// given
		_ = tourStore.Put(ctx, "montmartre-draft", Tour{UID: "montmartre-draft", Published: false})

		// when
		response := doRequest(t, router, http.MethodGet, "/api/tours/montmartre-draft", "", false)

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("Create tour as admin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, tourStore, _, nower := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		response := doRequest(t, router, http.MethodPut, "/api/tours/marais-walk", `{"title":"Marais walk","summary":"Three hours on foot","published":true}`, true)

		// then
		assert.Equal(t, 200, response.Code)

		tour, exists, _ := tourStore.Get(ctx, "marais-walk")
		assert.True(t, exists)
		assert.Equal(t, "Marais walk", tour.Title)
		assert.Equal(t, mytime.ExampleTime, tour.CreatedAt)
		assert.Nil(t, tour.LastModified)
	})

	t.Run("Update tour keeps creation time", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, tourStore, _, nower := setup(t, ctrl)

		// given
		_ = tourStore.Put(ctx, "marais-walk", Tour{UID: "marais-walk", Title: "Marais walk", CreatedAt: mytime.ExampleTime, Published: true})
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(time.Hour))

		// when
		response := doRequest(t, router, http.MethodPut, "/api/tours/marais-walk", `{"title":"Marais and island walk","published":true}`, true)

		// then
		assert.Equal(t, 200, response.Code)

		tour, _, _ := tourStore.Get(ctx, "marais-walk")
		assert.Equal(t, mytime.ExampleTime, tour.CreatedAt)
		assert.NotNil(t, tour.LastModified)
	})

	t.Run("Mutation without admin key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _ := setup(t, ctrl)

		// when
		response := doRequest(t, router, http.MethodPut, "/api/tours/marais-walk", `{"title":"Marais walk"}`, false)

		// then
		assert.Equal(t, 403, response.Code)
	})

	t.Run("Unpublish tour empties the public listing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, tourStore, _, nower := setup(t, ctrl)

		// given
		_ = tourStore.Put(ctx, "marais-walk", Tour{UID: "marais-walk", Title: "Marais walk", Published: true})
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// warm the cache
		listing := doRequest(t, router, http.MethodGet, "/api/tours", "", false)
		assert.Contains(t, listing.Body.String(), "marais-walk")

		// when
		response := doRequest(t, router, http.MethodDelete, "/api/tours/marais-walk", "", true)

		// then: the cache was invalidated along with the mutation
		assert.Equal(t, 200, response.Code)
		listing = doRequest(t, router, http.MethodGet, "/api/tours", "", false)
		assert.NotContains(t, listing.Body.String(), "marais-walk")
	})

	t.Run("Blog post lifecycle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, _, postStore, nower := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		response := doRequest(t, router, http.MethodPut, "/api/blog/top-10-cafes", `{"title":"Top 10 cafés","published":true}`, true)

		// then
		assert.Equal(t, 200, response.Code)
		post, exists, _ := postStore.Get(ctx, "top-10-cafes")
		assert.True(t, exists)
		assert.Equal(t, "Top 10 cafés", post.Title)

		listing := doRequest(t, router, http.MethodGet, "/api/blog", "", false)
		assert.Equal(t, 200, listing.Code)
		assert.Contains(t, listing.Body.String(), "top-10-cafes")
	})

	t.Run("List products", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _ := setup(t, ctrl)

		// when
		response := doRequest(t, router, http.MethodGet, "/api/products", "", false)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "walking-tour")
		assert.Contains(t, response.Body.String(), "museum-guide")
		assert.Contains(t, response.Body.String(), "paris-pass")
	})
}

func doRequest(t *testing.T, router *mux.Router, method string, url string, body string, asAdmin bool) *httptest.ResponseRecorder {
	request, err := http.NewRequest(method, url, strings.NewReader(body))
	assert.NoError(t, err)
	if asAdmin {
		request.Header.Set(adminAPIKeyHeader, testAdminAPIKey)
	}

	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	return response
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[Tour], mystore.Store[BlogPost], *mytime.MockNower) {
	c := context.TODO()
	tourStore, _, _ := mystore.New[Tour](c)
	postStore, _, _ := mystore.New[BlogPost](c)
	nower := mytime.NewMockNower(ctrl)

	sut := NewWebService(testAdminAPIKey, nower, tourStore, postStore)
	router := mux.NewRouter()

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, tourStore, postStore, nower
}
