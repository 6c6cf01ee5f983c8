// Package repositorycache puts a read-through cache in front of any
// repository.Store.
//
// # Overview
//
// CachedStore decorates a store. Reads are cached and writes pass through
// to the wrapped store, then invalidate the cache entries they affect.
// Because the decorator is itself a repository.Store, it slots in below
// either repository implementation without either side knowing:
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	store := repositorycache.New(bunstore.New[*Widget, WidgetRow, int64](db, WidgetMapper{}), svc,
//		func(w *Widget) int64 { return w.ID() },
//		repositorycache.WithLogger(logger),
//	)
//	repo := repository.NewDefault[*Widget, int64](store)
//
// # Cached vs Pass-through Operations
//
//   - Get: cached per primary key, absence included
//   - All: cached as a single listing
//   - Put: passes through, then drops the saved key's entry and the listing
//   - Delete: passes through, then drops the key's entry and the listing
//
// Failed writes invalidate nothing. Invalidation failures are logged at
// warn level and never fail the write.
//
// # Namespaces
//
// Keys are prefixed with a namespace derived from the entity type in
// snake_case (*Widget becomes "widget"). Use WithNamespace when two stores
// hold the same type. Purge drops the whole namespace.
package repositorycache
