package directory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/goliatone/go-artist-directory/cache"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// QueryService serves all directory reads through the cache. Every lookup is
// cache-aside: on a miss the loader hits the repositories and the result is
// stored under a deterministic key with a per-resource TTL.
//
// QueryService also implements Invalidator so the write path can evict the
// derivations its changes stale.
type QueryService struct {
	cache     cache.CacheService
	artists   ArtistRepository
	shops     ShopRepository
	locations LocationRepository
	logger    *slog.Logger
}

// NewQueryService wires the read path.
func NewQueryService(cacheService cache.CacheService, artists ArtistRepository, shops ShopRepository, locations LocationRepository, logger *slog.Logger) *QueryService {
	return &QueryService{
		cache:     cacheService,
		artists:   artists,
		shops:     shops,
		locations: locations,
		logger:    logger,
	}
}

// ArtistByID returns the artist detail view, cached under the artist's key.
func (s *QueryService) ArtistByID(ctx context.Context, id int64) (*ArtistDetail, error) {
	return cache.GetOrFetch(ctx, s.cache, cache.ArtistKey(id), cache.TTLArtistDetail,
		func(ctx context.Context) (*ArtistDetail, error) {
			return s.artists.GetDetail(ctx, id)
		})
}

// NormalizeQuery canonicalizes a search query for matching and cache keying:
// lowercased with whitespace runs collapsed to single spaces. Two queries
// that normalize equal share a cache entry.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// SearchArtists returns artists matching the query by name, handle or
// location substring. An empty query returns an empty result set without
// touching cache or storage.
func (s *QueryService) SearchArtists(ctx context.Context, query string) ([]ArtistSummary, error) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return []ArtistSummary{}, nil
	}

	return cache.GetOrFetch(ctx, s.cache, cache.SearchKey(normalized), cache.TTLSearch,
		func(ctx context.Context) ([]ArtistSummary, error) {
			results, err := s.artists.Search(ctx, normalized)
			if err != nil {
				return nil, err
			}
			if results == nil {
				results = []ArtistSummary{}
			}
			return results, nil
		})
}

// Cities returns a paginated city listing, optionally filtered by location
// names and optionally expanded with each city's artists.
func (s *QueryService) Cities(ctx context.Context, filters CityFilters, page, limit int) (*CityPage, error) {
	page, limit = clampPage(page, limit)

	mode := "plain"
	if filters.IncludeArtists {
		mode = "with-artists"
	}
	key := cache.CityListKey(mode, []string{filters.Country, filters.State, filters.City}, page, limit)

	return cache.GetOrFetch(ctx, s.cache, key, cache.TTLListing,
		func(ctx context.Context) (*CityPage, error) {
			cities, count, err := s.locations.ListCities(ctx, filters, page, limit)
			if err != nil {
				return nil, err
			}
			if filters.IncludeArtists {
				for i := range cities {
					artists, err := s.artists.ByCity(ctx, cities[i].ID)
					if err != nil {
						return nil, err
					}
					cities[i].Artists = artists
				}
			}
			return &CityPage{Results: cities, Count: count, Page: page, Limit: limit}, nil
		})
}

// Shops returns a paginated shop listing with an optional name filter.
func (s *QueryService) Shops(ctx context.Context, query string, page, limit int) (*ShopPage, error) {
	page, limit = clampPage(page, limit)
	normalized := NormalizeQuery(query)

	return cache.GetOrFetch(ctx, s.cache, cache.ShopListKey(normalized, page, limit), cache.TTLListing,
		func(ctx context.Context) (*ShopPage, error) {
			shops, count, err := s.shops.List(ctx, normalized, page, limit)
			if err != nil {
				return nil, err
			}
			return &ShopPage{Results: shops, Count: count, Page: page, Limit: limit}, nil
		})
}

// ShopByID returns a single shop, cached under the shop's key.
func (s *QueryService) ShopByID(ctx context.Context, id int64) (*Shop, error) {
	return cache.GetOrFetch(ctx, s.cache, cache.ShopKey(id), cache.TTLListing,
		func(ctx context.Context) (*Shop, error) {
			return s.shops.GetByID(ctx, id)
		})
}

// InvalidateArtist evicts an artist's detail entry plus all search result
// sets, any of which may embed the stale row.
func (s *QueryService) InvalidateArtist(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, cache.ArtistKey(id)); err != nil {
		s.logger.Warn("artist eviction failed", "artist_id", id, "error", err)
	}
	s.InvalidateSearch(ctx)
}

// InvalidateShop evicts a shop's entry and the shop listings.
func (s *QueryService) InvalidateShop(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, cache.ShopKey(id)); err != nil {
		s.logger.Warn("shop eviction failed", "shop_id", id, "error", err)
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.ShopListKeyPrefix); err != nil {
		s.logger.Warn("shop list eviction failed", "error", err)
	}
}

// InvalidateSearch evicts every cached search result set.
func (s *QueryService) InvalidateSearch(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, cache.SearchKeyPrefix); err != nil {
		s.logger.Warn("search eviction failed", "error", err)
	}
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
