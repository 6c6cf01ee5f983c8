// Package cache provides the read-through cache contract and key
// serialization used to put a cache in front of entity stores.
//
// # Overview
//
// The package exports two interfaces and their default implementations:
//
//   - CacheService: read-through GetOrFetch plus key and prefix invalidation
//   - KeySerializer: builds stable cache keys from an operation and its arguments
//
// NewCacheService returns the sturdyc backed CacheService configured by
// Config. Config carries mapstructure tags so it can be decoded straight
// from the cache section of the application configuration.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	keys := cache.NewKeySerializer("widgets")
//	key := keys.SerializeKey("Get", int64(42)) // widgets::Get::42
//
//	w, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (*Widget, error) {
//		return loadWidget(ctx, 42)
//	})
//
// # Key Serialization
//
// Keys are the namespace, the operation and each argument joined by
// KeySeparator. Arguments are rendered as follows:
//
//   - fmt.Stringer values (uuid.UUID, time.Time) use their String method
//   - basic types use their %v form
//   - pointers are followed, nil renders as "nil"
//   - slices, arrays and maps are rendered element by element, maps sorted
//   - structs render their exported fields only
//   - functions and channels render their address, stable within a process only
//
// Give every store its own namespace. DeleteByPrefix on that namespace then
// drops everything cached for one entity type.
//
// # See Also
//
// The repositorycache package wraps any repository.Store with this cache.
package cache
