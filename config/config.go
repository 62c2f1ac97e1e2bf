// Package config loads service configuration from the environment.
//
// Every setting maps to a DIRECTORY_-prefixed variable with dots replaced by
// underscores, e.g. cache.backend becomes DIRECTORY_CACHE_BACKEND.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-artist-directory/cache"
)

// Config is the full service configuration.
type Config struct {
	HTTPAddr    string      `mapstructure:"http_addr"`
	DatabaseURL string      `mapstructure:"database_url"`
	AutoMigrate bool        `mapstructure:"auto_migrate"`
	LogLevel    string      `mapstructure:"log_level"`
	Cache       CacheConfig `mapstructure:"cache"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Backend            string        `mapstructure:"backend"`
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	RedisAddr          string        `mapstructure:"redis_addr"`
	RedisPassword      string        `mapstructure:"redis_password"`
	RedisDB            int           `mapstructure:"redis_db"`
	RedisDialTimeout   time.Duration `mapstructure:"redis_dial_timeout"`
	RedisReadTimeout   time.Duration `mapstructure:"redis_read_timeout"`
	RedisWriteTimeout  time.Duration `mapstructure:"redis_write_timeout"`
}

// CacheService converts the loaded settings into a cache.Config, falling back
// to the cache package defaults for zero values.
func (c CacheConfig) CacheService() cache.Config {
	cfg := cache.DefaultConfig()
	if c.Backend != "" {
		cfg.Backend = c.Backend
	}
	if c.Capacity > 0 {
		cfg.Capacity = c.Capacity
	}
	if c.NumShards > 0 {
		cfg.NumShards = c.NumShards
	}
	if c.EvictionPercentage > 0 {
		cfg.EvictionPercentage = c.EvictionPercentage
	}
	if c.RedisAddr != "" {
		cfg.RedisAddr = c.RedisAddr
	}
	cfg.RedisPassword = c.RedisPassword
	cfg.RedisDB = c.RedisDB
	if c.RedisDialTimeout > 0 {
		cfg.DialTimeout = c.RedisDialTimeout
	}
	if c.RedisReadTimeout > 0 {
		cfg.ReadTimeout = c.RedisReadTimeout
	}
	if c.RedisWriteTimeout > 0 {
		cfg.WriteTimeout = c.RedisWriteTimeout
	}
	return cfg
}

// Load reads configuration from the environment with defaults applied.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DIRECTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database_url", "postgres://localhost:5432/directory?sslmode=disable")
	v.SetDefault("auto_migrate", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.num_shards", 64)
	v.SetDefault("cache.eviction_percentage", 10)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_dial_timeout", 2*time.Second)
	v.SetDefault("cache.redis_read_timeout", 500*time.Millisecond)
	v.SetDefault("cache.redis_write_timeout", 500*time.Millisecond)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
