package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidResultType is returned by the typed GetOrFetch wrapper when the
// cached value cannot be asserted to the requested type. This indicates a key
// collision between resources and is a programming error, not a cache miss.
var ErrInvalidResultType = errors.New("cache: result type does not match requested type")

// FetchFn is the function signature CacheService expects when fetching from
// the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through operations the query layer needs.
// Implementations must coalesce concurrent misses for the same key so that a
// burst of identical reads triggers a single loader invocation, and must never
// let a cache transport failure surface to the caller: reads degrade to a
// miss, writes and invalidations degrade to a no-op.
type CacheService interface {
	// GetOrFetch returns the cached value for key, or invokes fetchFn,
	// stores the result with the given TTL, and returns it. fetchFn must be
	// a FetchFn[T]; errors from fetchFn are propagated to the caller.
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn any) (any, error)

	// Delete evicts a single key.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix evicts every key sharing the given prefix. This is a
	// bulk, unindexed sweep sized for this system's key space, not a
	// general-purpose mechanism for very large namespaces.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is the type-safe entry point for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, ttl time.Duration, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key, ttl, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
