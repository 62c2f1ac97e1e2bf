// Package di wires the directory service's components together.
package di

import (
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-artist-directory/cache"
	"github.com/goliatone/go-artist-directory/directory"
)

// Container provides dependency injection for the directory service.
// It manages singleton instances of the cache service, repositories and the
// domain services built on top of them.
type Container struct {
	cacheService cache.CacheService
	locations    directory.LocationRepository
	artists      directory.ArtistRepository
	shops        directory.ShopRepository
	resolver     *directory.LocationResolver
	query        *directory.QueryService
	ingest       *directory.IngestService
	logger       *slog.Logger
}

// NewContainer creates a new DI container on top of an open database handle
// and the provided cache configuration.
func NewContainer(db *bun.DB, cacheCfg cache.Config, logger *slog.Logger) (*Container, error) {
	cacheService, err := cache.NewCacheService(cacheCfg, logger)
	if err != nil {
		return nil, err
	}
	return NewContainerWithCache(db, cacheService, logger), nil
}

// NewContainerWithCache builds the container around an existing cache
// service. Used by tests that inject an in-process cache directly.
func NewContainerWithCache(db *bun.DB, cacheService cache.CacheService, logger *slog.Logger) *Container {
	locations := directory.NewLocationRepository(db)
	artists := directory.NewArtistRepository(db)
	shops := directory.NewShopRepository(db)

	resolver := directory.NewLocationResolver(locations, logger)
	query := directory.NewQueryService(cacheService, artists, shops, locations, logger)
	ingest := directory.NewIngestService(artists, resolver, query, logger)

	return &Container{
		cacheService: cacheService,
		locations:    locations,
		artists:      artists,
		shops:        shops,
		resolver:     resolver,
		query:        query,
		ingest:       ingest,
		logger:       logger,
	}
}

// CacheService returns the singleton cache service instance.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// LocationResolver returns the location resolution service.
func (c *Container) LocationResolver() *directory.LocationResolver {
	return c.resolver
}

// QueryService returns the cached read service.
func (c *Container) QueryService() *directory.QueryService {
	return c.query
}

// IngestService returns the artist write service.
func (c *Container) IngestService() *directory.IngestService {
	return c.ingest
}

// Locations returns the location repository.
func (c *Container) Locations() directory.LocationRepository {
	return c.locations
}

// Artists returns the artist repository.
func (c *Container) Artists() directory.ArtistRepository {
	return c.artists
}

// Shops returns the shop repository.
func (c *Container) Shops() directory.ShopRepository {
	return c.shops
}
