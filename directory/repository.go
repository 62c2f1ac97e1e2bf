package directory

import "context"

// LocationRepository persists the country → state → city taxonomy. The
// get-or-create operations are atomic: concurrent identical calls converge on
// a single row, enforced by the natural-key unique constraints and a
// conflict-free insert (insert, on-conflict-do-nothing, re-select).
type LocationRepository interface {
	GetOrCreateCountry(ctx context.Context, name string) (int64, error)
	GetOrCreateState(ctx context.Context, name string, countryID int64) (int64, error)
	GetOrCreateCity(ctx context.Context, name string, stateID int64) (int64, error)

	// ListCities returns one page of cities matching the filters plus the
	// unpaginated total.
	ListCities(ctx context.Context, filters CityFilters, page, limit int) ([]CityRow, int, error)
}

// ArtistRepository persists artists and their shop links. One method per
// query shape; raw row mapping stays inside the implementation.
type ArtistRepository interface {
	Insert(ctx context.Context, artist *Artist) error
	GetByID(ctx context.Context, id int64) (*Artist, error)
	GetDetail(ctx context.Context, id int64) (*ArtistDetail, error)
	Update(ctx context.Context, artist *Artist) error

	// SlugTaken reports whether slug is already held by an artist other
	// than excludeID.
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	UpdateSlug(ctx context.Context, id int64, slug string) error

	// Search performs a case-insensitive substring match over artist name,
	// instagram handle and location names. No relevance scoring.
	Search(ctx context.Context, query string) ([]ArtistSummary, error)

	// ByCity lists the artists attached to one city.
	ByCity(ctx context.Context, cityID int64) ([]ArtistSummary, error)

	// LinkShop attaches an artist to a shop. Idempotent: linking the same
	// pair twice is a no-op.
	LinkShop(ctx context.Context, artistID, shopID int64) error
}

// ShopRepository persists shops.
type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*Shop, error)
	List(ctx context.Context, query string, page, limit int) ([]Shop, int, error)
}
