// Package cacheinfra holds the cache backend implementations behind the
// public cache.CacheService interface: an in-process sturdyc adapter and a
// shared redis adapter.
package cacheinfra

import "time"

// Config holds backend configuration for the cache adapters.
type Config struct {
	// Backend selects the implementation: "memory" or "redis".
	Backend string

	// Capacity defines the maximum number of entries per TTL tier in the
	// in-process backend. Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Must be greater than 0.
	NumShards int

	// EvictionPercentage specifies what percentage of entries to evict when
	// a tier reaches capacity. Must be between 1-100.
	EvictionPercentage int

	// Redis connection settings. Every timeout bounds a single cache call;
	// an exhausted timeout is treated as a miss, never as a request error.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults: the in-process
// backend sized for a small directory working set.
func DefaultConfig() Config {
	return Config{
		Backend:            "memory",
		Capacity:           10000,
		NumShards:          64,
		EvictionPercentage: 10,
		RedisAddr:          "localhost:6379",
		DialTimeout:        2 * time.Second,
		ReadTimeout:        500 * time.Millisecond,
		WriteTimeout:       500 * time.Millisecond,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Backend != "memory" && c.Backend != "redis" {
		return &ConfigError{Field: "Backend", Message: "must be \"memory\" or \"redis\""}
	}
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.Backend == "redis" && c.RedisAddr == "" {
		return &ConfigError{Field: "RedisAddr", Message: "required for the redis backend"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
