package content

import (
	"context"
	"fmt"

	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mycache"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/myerrors"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mylog"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mystore"
	"github.com/mkiss03/utazasparizsbaoff-sub002/lib/mytime"
)

const (
	publishedToursCacheKey = "tours.published"
	publishedPostsCacheKey = "blog.published"
)

type service struct {
	logger    mylog.Logger
	nower     mytime.Nower
	tourStore mystore.Store[Tour]
	postStore mystore.Store[BlogPost]
	tourCache mycache.Cache[[]Tour]
	postCache mycache.Cache[[]BlogPost]
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, nower mytime.Nower, tourStore mystore.Store[Tour], postStore mystore.Store[BlogPost]) *service {
	return &service{
		logger:    logger,
		nower:     nower,
		tourStore: tourStore,
		postStore: postStore,
		tourCache: mycache.New[[]Tour](),
		postCache: mycache.New[[]BlogPost](),
	}
}

func (s *service) listPublishedTours(c context.Context) ([]Tour, error) {
	tours, found := s.tourCache.Get(c, publishedToursCacheKey)
	if found {
		return tours, nil
	}

	all, err := s.tourStore.List(c)
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error listing tours: %s", err))
	}

	tours = []Tour{}
	for _, tour := range all {
		if tour.Published {
			tours = append(tours, tour)
		}
	}

	s.tourCache.Put(c, publishedToursCacheKey, tours)

	return tours, nil
}

func (s *service) getTour(c context.Context, uid string) (Tour, error) {
	tour, found, err := s.tourStore.Get(c, uid)
	if err != nil {
		return Tour{}, myerrors.NewUnavailableError(fmt.Errorf("error fetching tour %s: %s", uid, err))
	}
	if !found || !tour.Published {
		return Tour{}, myerrors.NewNotFoundError(fmt.Errorf("tour %s not found", uid))
	}

	return tour, nil
}

func (s *service) upsertTour(c context.Context, uid string, tour Tour) (Tour, error) {
	now := s.nower.Now()

	err := s.tourStore.RunInTransaction(c, func(c context.Context) error {
		existing, found, err := s.tourStore.Get(c, uid)
		if err != nil {
			return myerrors.NewUnavailableError(fmt.Errorf("error fetching tour %s: %s", uid, err))
		}

		tour.UID = uid
		if found {
			tour.CreatedAt = existing.CreatedAt
			tour.LastModified = &now
		} else {
			tour.CreatedAt = now
		}

		return s.tourStore.Put(c, uid, tour)
	})
	if err != nil {
		return Tour{}, err
	}

	s.tourCache.Invalidate(c, publishedToursCacheKey)
	s.logger.Log(c, uid, mylog.SeverityInfo, "Stored tour %s", uid)

	return tour, nil
}

func (s *service) unpublishTour(c context.Context, uid string) error {
	now := s.nower.Now()

	err := s.tourStore.RunInTransaction(c, func(c context.Context) error {
		tour, found, err := s.tourStore.Get(c, uid)
		if err != nil {
			return myerrors.NewUnavailableError(fmt.Errorf("error fetching tour %s: %s", uid, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("tour %s not found", uid))
		}

		tour.Published = false
		tour.LastModified = &now

		return s.tourStore.Put(c, uid, tour)
	})
	if err != nil {
		return err
	}

	s.tourCache.Invalidate(c, publishedToursCacheKey)
	s.logger.Log(c, uid, mylog.SeverityInfo, "Unpublished tour %s", uid)

	return nil
}

func (s *service) listPublishedPosts(c context.Context) ([]BlogPost, error) {
	posts, found := s.postCache.Get(c, publishedPostsCacheKey)
	if found {
		return posts, nil
	}

	all, err := s.postStore.List(c)
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error listing posts: %s", err))
	}

	posts = []BlogPost{}
	for _, post := range all {
		if post.Published {
			posts = append(posts, post)
		}
	}

	s.postCache.Put(c, publishedPostsCacheKey, posts)

	return posts, nil
}

func (s *service) getPost(c context.Context, slug string) (BlogPost, error) {
	post, found, err := s.postStore.Get(c, slug)
	if err != nil {
		return BlogPost{}, myerrors.NewUnavailableError(fmt.Errorf("error fetching post %s: %s", slug, err))
	}
	if !found || !post.Published {
		return BlogPost{}, myerrors.NewNotFoundError(fmt.Errorf("post %s not found", slug))
	}

	return post, nil
}

func (s *service) upsertPost(c context.Context, slug string, post BlogPost) (BlogPost, error) {
	now := s.nower.Now()

	err := s.postStore.RunInTransaction(c, func(c context.Context) error {
		existing, found, err := s.postStore.Get(c, slug)
		if err != nil {
			return myerrors.NewUnavailableError(fmt.Errorf("error fetching post %s: %s", slug, err))
		}

		post.Slug = slug
		if found {
			post.CreatedAt = existing.CreatedAt
			post.LastModified = &now
		} else {
			post.CreatedAt = now
		}

		return s.postStore.Put(c, slug, post)
	})
	if err != nil {
		return BlogPost{}, err
	}

	s.postCache.Invalidate(c, publishedPostsCacheKey)
	s.logger.Log(c, slug, mylog.SeverityInfo, "Stored post %s", slug)

	return post, nil
}

func (s *service) unpublishPost(c context.Context, slug string) error {
	now := s.nower.Now()

	err := s.postStore.RunInTransaction(c, func(c context.Context) error {
		post, found, err := s.postStore.Get(c, slug)
		if err != nil {
			return myerrors.NewUnavailableError(fmt.Errorf("error fetching post %s: %s", slug, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("post %s not found", slug))
		}

		post.Published = false
		post.LastModified = &now

		return s.postStore.Put(c, slug, post)
	})
	if err != nil {
		return err
	}

	s.postCache.Invalidate(c, publishedPostsCacheKey)
	s.logger.Log(c, slug, mylog.SeverityInfo, "Unpublished post %s", slug)

	return nil
}
