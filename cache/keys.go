package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Per-resource TTL tiers. Search results churn fastest; artist detail pages
// are the hottest and most stable read.
const (
	TTLSearch       = 15 * time.Minute
	TTLArtistDetail = time.Hour
	TTLListing      = 30 * time.Minute
)

// Key namespaces. Every key is prefixed with its resource so that keys never
// collide across resources and whole namespaces can be swept by prefix.
const (
	SearchKeyPrefix   = "search:artists:"
	ArtistKeyPrefix   = "artist:"
	ShopKeyPrefix     = "shop:"
	CityListKeyPrefix = "cities:"
	ShopListKeyPrefix = "shops:"
)

// maxSegmentLen bounds user-derived key segments. Anything longer (or
// containing characters outside the safe set) is replaced with an xxhash
// digest so keys stay short and backend-safe regardless of input.
const maxSegmentLen = 48

// ArtistKey returns the detail key for a single artist.
func ArtistKey(id int64) string {
	return ArtistKeyPrefix + strconv.FormatInt(id, 10)
}

// ShopKey returns the detail key for a single shop.
func ShopKey(id int64) string {
	return ShopKeyPrefix + strconv.FormatInt(id, 10)
}

// SearchKey returns the result-set key for a normalized artist search query.
func SearchKey(normalizedQuery string) string {
	return SearchKeyPrefix + segment(normalizedQuery)
}

// CityListKey returns the key for one page of a city listing. mode
// distinguishes listings that embed artists from plain ones; filters carries
// the caller's location filters in a stable order. Each filter is segmented
// on its own so values cannot merge across fields.
func CityListKey(mode string, filters []string, page, limit int) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, segment(f))
	}
	return CityListKeyPrefix + mode + ":" + strings.Join(parts, ":") + ":" +
		strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}

// ShopListKey returns the key for one page of a shop listing. An empty query
// maps to the "all" segment.
func ShopListKey(query string, page, limit int) string {
	q := "all"
	if query != "" {
		q = segment(query)
	}
	return ShopListKeyPrefix + q + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}

// segment normalizes a user-derived value into a safe key segment. Values
// that are empty, too long, or contain unsafe characters are hashed.
func segment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "none"
	}
	s = strings.Join(strings.Fields(s), "-")
	if len(s) <= maxSegmentLen && isSafeSegment(s) {
		return s
	}
	return fmt.Sprintf("h%016x", xxhash.Sum64String(s))
}

func isSafeSegment(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '.' || r == ',':
		default:
			return false
		}
	}
	return true
}
