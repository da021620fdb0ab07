package mystore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type guide struct {
	UID   string
	Title string
	Price int
}

var (
	louvreGuide = guide{UID: "123", Title: "Louvre highlights", Price: 1500}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	gs, cleanup, err := newInMemoryStore[guide](c)
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := gs.Get(c, louvreGuide.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		err = gs.Put(c, louvreGuide.UID, louvreGuide)
		assert.NoError(t, err)
	})

	t.Run("Get found", func(t *testing.T) {
		g, found, err := gs.Get(c, louvreGuide.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, guide{UID: "123", Title: "Louvre highlights", Price: 1500}, g)
	})

	t.Run("List", func(t *testing.T) {
		all, err := gs.List(c)
		assert.NoError(t, err)
		assert.Equal(t, all, []guide{louvreGuide})
	})

	t.Run("Rollback on error", func(t *testing.T) {
		err := gs.RunInTransaction(c, func(c context.Context) error {
			err := gs.Put(c, "456", guide{UID: "456", Title: "Orsay highlights"})
			if err != nil {
				return err
			}
			return fmt.Errorf("something went wrong")
		})
		assert.Error(t, err)
	})

	t.Run("Check-then-insert within transaction", func(t *testing.T) {
		err := gs.RunInTransaction(c, func(c context.Context) error {
			_, found, err := gs.Get(c, louvreGuide.UID)
			if err != nil {
				return err
			}
			if found {
				return nil
			}
			return gs.Put(c, louvreGuide.UID, louvreGuide)
		})
		assert.NoError(t, err)

		all, err := gs.List(c)
		assert.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
