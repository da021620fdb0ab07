package mycache

import (
	"context"
	"sync"
)

type inMemoryCache[T any] struct {
	sync.Mutex
	items map[string]T
}

func newInMemoryCache[T any]() *inMemoryCache[T] {
	return &inMemoryCache[T]{
		items: make(map[string]T),
	}
}

func (c *inMemoryCache[T]) Get(ctx context.Context, key string) (T, bool) {
	c.Lock()
	defer c.Unlock()

	value, found := c.items[key]
	return value, found
}

func (c *inMemoryCache[T]) Put(ctx context.Context, key string, value T) {
	c.Lock()
	defer c.Unlock()

	c.items[key] = value
}

func (c *inMemoryCache[T]) Invalidate(ctx context.Context, key string) {
	c.Lock()
	defer c.Unlock()

	delete(c.items, key)
}

func (c *inMemoryCache[T]) InvalidateAll(ctx context.Context) {
	c.Lock()
	defer c.Unlock()

	c.items = make(map[string]T)
}
