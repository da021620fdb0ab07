package mycache

import "context"

// Cache is a read-through cache keyed by query identity. Readers consult it
// before hitting the store; writers invalidate the affected keys after each
// mutation. Staleness is only possible between a mutation and its
// invalidation call, which happen in the same request.
type Cache[T any] interface {
	Get(c context.Context, key string) (T, bool)
	Put(c context.Context, key string, value T)
	Invalidate(c context.Context, key string)
	InvalidateAll(c context.Context)
}

func New[T any]() Cache[T] {
	return newInMemoryCache[T]()
}
