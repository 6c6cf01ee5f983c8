package repositorycache

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/goliatone/go-domain-repository/cache"
	"github.com/goliatone/go-domain-repository/repository"
)

// Interface assertion to ensure CachedStore implements repository.Store
var _ repository.Store[any, int64] = (*CachedStore[any, int64])(nil)

// entry is what the cache holds for a single key lookup. Absence is cached
// as Found == false so repeated misses do not reach storage.
type entry[T any] struct {
	Value T
	Found bool
}

// Option configures a CachedStore.
type Option func(*options)

type options struct {
	namespace string
	keys      cache.KeySerializer
	logger    *zap.Logger
}

// WithNamespace overrides the namespace derived from the entity type.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithKeySerializer replaces the namespaced default serializer.
// Purge only reaches keys that start with the namespace.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(o *options) {
		o.keys = keys
	}
}

// WithLogger sets the logger used to report invalidation failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// CachedStore decorates a repository.Store with a read-through cache.
// Get and All are served from the cache; Put and Delete go to the base
// store and then invalidate what they touched.
type CachedStore[T any, PK comparable] struct {
	base      repository.Store[T, PK]
	cache     cache.CacheService
	keyOf     func(T) PK
	namespace string
	keys      cache.KeySerializer
	logger    *zap.Logger
}

// New wraps base. keyOf reads the primary key of a stored record and is
// used to invalidate the right entry after a write.
func New[T any, PK comparable](base repository.Store[T, PK], cacheService cache.CacheService, keyOf func(T) PK, opts ...Option) *CachedStore[T, PK] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.namespace == "" {
		o.namespace = Namespace[T]()
	}
	if o.keys == nil {
		o.keys = cache.NewKeySerializer(o.namespace)
	}

	return &CachedStore[T, PK]{
		base:      base,
		cache:     cacheService,
		keyOf:     keyOf,
		namespace: o.namespace,
		keys:      o.keys,
		logger:    o.logger,
	}
}

// Namespace returns the key namespace of this store.
func (c *CachedStore[T, PK]) Namespace() string {
	return c.namespace
}

// Get returns the record at pk, from the cache when possible.
func (c *CachedStore[T, PK]) Get(ctx context.Context, pk PK) (T, bool, error) {
	res, err := cache.GetOrFetch(ctx, c.cache, c.getKey(pk), func(ctx context.Context) (entry[T], error) {
		value, found, err := c.base.Get(ctx, pk)
		return entry[T]{Value: value, Found: found}, err
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return res.Value, res.Found, nil
}

// All returns every record, from the cache when possible. The caller owns
// the returned slice.
func (c *CachedStore[T, PK]) All(ctx context.Context) ([]T, error) {
	res, err := cache.GetOrFetch(ctx, c.cache, c.allKey(), func(ctx context.Context) ([]T, error) {
		return c.base.All(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(res), nil
}

// Put writes through to the base store and invalidates the record's entry
// and the cached listing.
func (c *CachedStore[T, PK]) Put(ctx context.Context, record T) (T, error) {
	saved, err := c.base.Put(ctx, record)
	if err != nil {
		return saved, err
	}
	c.invalidate(ctx, c.getKey(c.keyOf(saved)), c.allKey())
	return saved, nil
}

// Delete removes pk from the base store and invalidates its entry and the
// cached listing.
func (c *CachedStore[T, PK]) Delete(ctx context.Context, pk PK) error {
	if err := c.base.Delete(ctx, pk); err != nil {
		return err
	}
	c.invalidate(ctx, c.getKey(pk), c.allKey())
	return nil
}

// Purge drops every cached entry in this store's namespace.
func (c *CachedStore[T, PK]) Purge(ctx context.Context) error {
	return c.cache.DeleteByPrefix(ctx, c.namespace+cache.KeySeparator)
}

func (c *CachedStore[T, PK]) getKey(pk PK) string {
	return c.keys.SerializeKey("Get", pk)
}

func (c *CachedStore[T, PK]) allKey() string {
	return c.keys.SerializeKey("All")
}

// invalidate never fails the write that triggered it; a stale entry
// expires with its TTL.
func (c *CachedStore[T, PK]) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn("cache invalidation failed",
				zap.String("namespace", c.namespace),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
