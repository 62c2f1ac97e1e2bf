// Package cache provides the read-through caching layer for the directory's
// hot read paths.
//
// # Overview
//
// The package exports:
//
//   - CacheService: the read-through interface (GetOrFetch, Delete, DeleteByPrefix)
//   - GetOrFetch: a type-safe generic wrapper over CacheService
//   - Key builders and TTL tiers for each cached resource
//
// Two backends implement CacheService (see internal/cacheinfra): an in-process
// sturdyc cache for single-node deployments and tests, and a shared redis
// cache for production. Both coalesce concurrent misses per key.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig(), logger)
//	// ...
//	artist, err := cache.GetOrFetch(ctx, svc, cache.ArtistKey(42), cache.TTLArtistDetail,
//		func(ctx context.Context) (*directory.ArtistDetail, error) {
//			return artists.GetDetail(ctx, 42)
//		})
//
// # Key Space
//
// Every key carries a resource prefix so that keys never collide across
// resources and whole namespaces can be evicted with DeleteByPrefix:
//
//	search:artists:{normalized_query}          TTL 15m
//	artist:{id}                                TTL 1h
//	cities:{mode}:{filters}:{page}:{limit}     TTL 30m
//	shops:{query|all}:{page}:{limit}           TTL 30m
//	shop:{id}                                  TTL 30m
//
// User-derived segments are normalized and, when long or unsafe, replaced by
// an xxhash digest so keys stay bounded regardless of input.
//
// # Failure Semantics
//
// The cache never owns canonical state and never affects request correctness.
// Backend failures degrade reads to a miss and writes to a no-op; they are
// logged and not surfaced. Only loader (datastore) errors propagate.
package cache
