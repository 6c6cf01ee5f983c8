package cache

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// KeySerializer builds a cache key from an operation name and its arguments.
// Keys for equal arguments must be equal across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn loads a value from the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService is the read-through cache used by the store decorators.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ErrInvalidResultType is returned when a cached value does not have the
// type the caller asked for, usually because two call sites share a key.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// GetOrFetch is the typed entry point to CacheService.GetOrFetch.
// A nil cached value yields the zero value of T.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, errors.Wrap(ErrInvalidResultType, fmt.Sprintf("key %q holds %T, want %T", key, result, zero))
	}
	return typed, nil
}
