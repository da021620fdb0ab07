package content

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
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
	"github.com/mkiss03/utazasparizsbaoff-sub002/services/productapi"
)

const adminAPIKeyHeader = "X-Admin-Api-Key"

type webService struct {
	logger      mylog.Logger
	service     *service
	adminAPIKey string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(adminAPIKey string, nower mytime.Nower, tourStore mystore.Store[Tour], postStore mystore.Store[BlogPost]) *webService {
	logger := mylog.New("content")
	return &webService{
		logger:      logger,
		service:     newService(logger, nower, tourStore, postStore),
		adminAPIKey: adminAPIKey,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/products", s.listProductsPage()).Methods("GET")

	router.HandleFunc("/api/tours", s.listToursPage()).Methods("GET")
	router.HandleFunc("/api/tours/{uid}", s.getTourPage()).Methods("GET")
	router.HandleFunc("/api/tours/{uid}", s.authenticated(s.upsertTourPage())).Methods("PUT")
	router.HandleFunc("/api/tours/{uid}", s.authenticated(s.unpublishTourPage())).Methods("DELETE")

	router.HandleFunc("/api/blog", s.listPostsPage()).Methods("GET")
	router.HandleFunc("/api/blog/{slug}", s.getPostPage()).Methods("GET")
	router.HandleFunc("/api/blog/{slug}", s.authenticated(s.upsertPostPage())).Methods("PUT")
	router.HandleFunc("/api/blog/{slug}", s.authenticated(s.unpublishPostPage())).Methods("DELETE")

	return nil
}

func (s *webService) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(adminAPIKeyHeader) != s.adminAPIKey {
			c := mycontext.ContextFromHTTPRequest(r)
			myhttp.NewWriter(s.logger).WriteError(c, w, 1, myerrors.NewAuthenticationError(fmt.Errorf("invalid admin api key")))
			return
		}

		next(w, r)
	}
}

func (s *webService) listProductsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		myhttp.NewWriter(s.logger).Write(c, w, http.StatusOK, productapi.All())
	}
}

func (s *webService) listToursPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		tours, err := s.service.listPublishedTours(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, tours)
	}
}

func (s *webService) getTourPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		tour, err := s.service.getTour(c, mux.Vars(r)["uid"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, tour)
	}
}

func (s *webService) upsertTourPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		tour := Tour{}
		err := json.NewDecoder(r.Body).Decode(&tour)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		stored, err := s.service.upsertTour(c, mux.Vars(r)["uid"], tour)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, stored)
	}
}

func (s *webService) unpublishTourPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := s.service.unpublishTour(c, mux.Vars(r)["uid"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "unpublished"})
	}
}

func (s *webService) listPostsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		posts, err := s.service.listPublishedPosts(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, posts)
	}
}

func (s *webService) getPostPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		post, err := s.service.getPost(c, mux.Vars(r)["slug"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, post)
	}
}

func (s *webService) upsertPostPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		post := BlogPost{}
		err := json.NewDecoder(r.Body).Decode(&post)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		stored, err := s.service.upsertPost(c, mux.Vars(r)["slug"], post)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, stored)
	}
}

func (s *webService) unpublishPostPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := s.service.unpublishPost(c, mux.Vars(r)["slug"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "unpublished"})
	}
}
