package cacheinfra

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// redisService implements cache.CacheService on a shared redis instance.
//
// The adapter is strictly fail-open: any transport or codec error on the
// cache path is logged and treated as a miss (reads) or a no-op (writes and
// evictions). Only loader errors reach the caller, because only the datastore
// is authoritative.
//
// Concurrent misses for the same key are coalesced through a singleflight
// group so a cold key costs one loader invocation per process rather than one
// per request.
type redisService struct {
	client *redis.Client
	group  singleflight.Group
	logger *slog.Logger

	hits   *xsync.Counter
	misses *xsync.Counter
}

// NewRedisService creates the shared cache adapter. The connection is lazy;
// an unreachable redis only degrades reads, it never fails construction.
func NewRedisService(cfg Config, logger *slog.Logger) (*redisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &redisService{
		client: client,
		logger: logger,
		hits:   xsync.NewCounter(),
		misses: xsync.NewCounter(),
	}, nil
}

// GetOrFetch implements cache.CacheService.
func (s *redisService) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	if value, ok := s.lookup(ctx, key, fetchFn); ok {
		s.hits.Inc()
		return value, nil
	}
	s.misses.Inc()

	value, err, _ := s.group.Do(key, func() (any, error) {
		value, err := callFetchFn(ctx, fetchFn)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, ttl, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// lookup reads and decodes a cached value. Every failure mode is a miss.
func (s *redisService) lookup(ctx context.Context, key string, fetchFn any) (any, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}

	// Decode into the loader's concrete result type so the typed wrapper's
	// assertion holds for values that round-tripped through redis.
	target := reflect.New(fetchResultType(fetchFn))
	if err := msgpack.Unmarshal(data, target.Interface()); err != nil {
		s.logger.Warn("cache decode failed, treating as miss", "key", key, "error", err)
		// A value we cannot decode will never become readable again.
		s.client.Del(ctx, key)
		return nil, false
	}
	return target.Elem().Interface(), true
}

// store writes a value best-effort. Failures are logged and ignored.
func (s *redisService) store(ctx context.Context, key string, ttl time.Duration, value any) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed, skipping store", "key", key, "error", err)
		return
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Delete implements cache.CacheService. Eviction failures are absorbed: the
// entry will age out at its TTL.
func (s *redisService) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("cache eviction failed", "key", key, "error", err)
	}
	return nil
}

// DeleteByPrefix implements cache.CacheService with a SCAN sweep over the
// namespace. Unindexed but bounded: the directory's namespaces hold at most a
// few thousand keys.
func (s *redisService) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", 256).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 256 {
			s.deleteBatch(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("cache prefix scan failed", "prefix", prefix, "error", err)
	}
	if len(keys) > 0 {
		s.deleteBatch(ctx, keys)
	}
	return nil
}

func (s *redisService) deleteBatch(ctx context.Context, keys []string) {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache bulk eviction failed", "keys", len(keys), "error", err)
	}
}

// Stats reports cumulative hit/miss counts.
func (s *redisService) Stats() (hits, misses int64) {
	return s.hits.Value(), s.misses.Value()
}

// Close releases the underlying connection pool.
func (s *redisService) Close() error {
	return s.client.Close()
}
