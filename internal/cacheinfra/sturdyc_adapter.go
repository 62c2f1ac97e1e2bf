package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
)

// sturdycService implements cache.CacheService on top of in-process sturdyc
// clients. sturdyc fixes the TTL per client, so the adapter keeps one lazily
// created client per TTL tier; the directory uses three tiers (search,
// listing, detail), so the tier map stays tiny.
//
// sturdyc deduplicates in-flight fetches per key, which gives the miss
// coalescing CacheService requires without extra machinery here.
type sturdycService struct {
	cfg   Config
	tiers *xsync.MapOf[time.Duration, *sturdyc.Client[any]]

	hits   *xsync.Counter
	misses *xsync.Counter
}

// NewSturdycService creates the in-process cache adapter.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &sturdycService{
		cfg:    cfg,
		tiers:  xsync.NewMapOf[time.Duration, *sturdyc.Client[any]](),
		hits:   xsync.NewCounter(),
		misses: xsync.NewCounter(),
	}, nil
}

func (s *sturdycService) tier(ttl time.Duration) *sturdyc.Client[any] {
	client, _ := s.tiers.LoadOrCompute(ttl, func() *sturdyc.Client[any] {
		return sturdyc.New[any](s.cfg.Capacity, s.cfg.NumShards, ttl, s.cfg.EvictionPercentage)
	})
	return client
}

// GetOrFetch implements cache.CacheService. The loader is wrapped so the
// adapter can tell a hit (loader never ran) from a miss.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	fetched := false
	value, err := s.tier(ttl).GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		fetched = true
		return callFetchFn(ctx, fetchFn)
	})

	if fetched {
		s.misses.Inc()
	} else {
		s.hits.Inc()
	}
	return value, err
}

// Delete implements cache.CacheService. The key's tier is unknown at eviction
// time, so every tier is asked to drop it.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.tiers.Range(func(_ time.Duration, client *sturdyc.Client[any]) bool {
		client.Delete(key)
		return true
	})
	return nil
}

// DeleteByPrefix implements cache.CacheService by scanning each tier's keys.
func (s *sturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	s.tiers.Range(func(_ time.Duration, client *sturdyc.Client[any]) bool {
		for _, key := range client.ScanKeys() {
			if strings.HasPrefix(key, prefix) {
				client.Delete(key)
			}
		}
		return true
	})
	return nil
}

// Stats reports cumulative hit/miss counts.
func (s *sturdycService) Stats() (hits, misses int64) {
	return s.hits.Value(), s.misses.Value()
}
