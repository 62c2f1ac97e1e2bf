package cache

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-artist-directory/internal/cacheinfra"
)

// Backend selects the cache implementation.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	// Backend is "memory" (in-process sturdyc) or "redis" (shared).
	Backend string

	// Capacity and NumShards size the in-process backend. Ignored by redis.
	Capacity           int
	NumShards          int
	EvictionPercentage int

	// Redis connection settings. Timeouts bound every cache call so a slow
	// or unreachable backend degrades to a miss instead of blocking.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the cache service for the configured backend.
func NewCacheService(cfg Config, logger *slog.Logger) (CacheService, error) {
	internal := cfg.toInternal()
	if cfg.Backend == BackendRedis {
		return cacheinfra.NewRedisService(internal, logger)
	}
	return cacheinfra.NewSturdycService(internal)
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Backend:            c.Backend,
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		EvictionPercentage: c.EvictionPercentage,
		RedisAddr:          c.RedisAddr,
		RedisPassword:      c.RedisPassword,
		RedisDB:            c.RedisDB,
		DialTimeout:        c.DialTimeout,
		ReadTimeout:        c.ReadTimeout,
		WriteTimeout:       c.WriteTimeout,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Backend:            cfg.Backend,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		EvictionPercentage: cfg.EvictionPercentage,
		RedisAddr:          cfg.RedisAddr,
		RedisPassword:      cfg.RedisPassword,
		RedisDB:            cfg.RedisDB,
		DialTimeout:        cfg.DialTimeout,
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
	}
}
