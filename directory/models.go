package directory

import (
	"time"

	"github.com/uptrace/bun"
)

// Country is the root of the location taxonomy. Rows are created lazily on
// first reference and never deleted.
type Country struct {
	bun.BaseModel `bun:"table:countries,alias:co"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

// State is a country subdivision, unique per (name, country).
type State struct {
	bun.BaseModel `bun:"table:states,alias:st"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Name      string `bun:"name,notnull" json:"name"`
	CountryID int64  `bun:"country_id,notnull" json:"country_id"`
}

// City is the taxonomy leaf artists and shops attach to. StateID is nullable
// for countries without subdivisions.
type City struct {
	bun.BaseModel `bun:"table:cities,alias:ci"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	StateID *int64 `bun:"state_id" json:"state_id,omitempty"`
}

// Artist is the primary directory entity. Slug is empty between row creation
// and slug assignment; the unique index ignores the empty value via nullzero.
type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:a"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	Name            string    `bun:"name,notnull" json:"name"`
	Slug            string    `bun:"slug,nullzero" json:"slug,omitempty"`
	CityID          *int64    `bun:"city_id" json:"city_id,omitempty"`
	InstagramHandle *string   `bun:"instagram_handle" json:"instagram_handle,omitempty"`
	Gender          *string   `bun:"gender" json:"gender,omitempty"`
	URL             *string   `bun:"url" json:"url,omitempty"`
	Contact         *string   `bun:"contact" json:"contact,omitempty"`
	IsTraveling     bool      `bun:"is_traveling" json:"is_traveling"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Shop is a physical studio artists can be linked to.
type Shop struct {
	bun.BaseModel `bun:"table:shops,alias:sh"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	Name            string    `bun:"name,notnull" json:"name"`
	CityID          int64     `bun:"city_id,notnull" json:"city_id"`
	InstagramHandle *string   `bun:"instagram_handle" json:"instagram_handle,omitempty"`
	Address         *string   `bun:"address" json:"address,omitempty"`
	URL             *string   `bun:"url" json:"url,omitempty"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// ArtistShop links an artist to a shop. Current usage keeps one active shop
// per artist, but the schema does not enforce that.
type ArtistShop struct {
	bun.BaseModel `bun:"table:artist_shop,alias:ash"`

	ArtistID int64 `bun:"artist_id,pk" json:"artist_id"`
	ShopID   int64 `bun:"shop_id,pk" json:"shop_id"`
}

// ArtistDetail is the cached read shape for a single artist: the row plus
// denormalized location names and the linked shop, if any.
type ArtistDetail struct {
	Artist `bun:",extend"`

	CityName    *string `bun:"city_name,scanonly" json:"city_name,omitempty"`
	StateName   *string `bun:"state_name,scanonly" json:"state_name,omitempty"`
	CountryName *string `bun:"country_name,scanonly" json:"country_name,omitempty"`
	Shop        *Shop   `bun:"-" json:"shop,omitempty"`
}

// ArtistSummary is the row shape for search results and embedded listings.
type ArtistSummary struct {
	ID              int64   `bun:"id" json:"id"`
	Name            string  `bun:"name" json:"name"`
	Slug            string  `bun:"slug" json:"slug,omitempty"`
	InstagramHandle *string `bun:"instagram_handle" json:"instagram_handle,omitempty"`
	CityName        *string `bun:"city_name" json:"city_name,omitempty"`
	StateName       *string `bun:"state_name" json:"state_name,omitempty"`
	CountryName     *string `bun:"country_name" json:"country_name,omitempty"`
}

// CityRow is one city listing entry with denormalized parent names. Artists
// is populated only in the with-artists listing mode.
type CityRow struct {
	City `bun:",extend"`

	StateName   *string         `bun:"state_name,scanonly" json:"state_name,omitempty"`
	CountryName *string         `bun:"country_name,scanonly" json:"country_name,omitempty"`
	Artists     []ArtistSummary `bun:"-" json:"artists,omitempty"`
}

// CityFilters narrows a city listing. Name filters are case-insensitive
// substring matches.
type CityFilters struct {
	City           string
	State          string
	Country        string
	IncludeArtists bool
}

// CityPage is one page of a city listing together with the unpaginated total.
type CityPage struct {
	Results []CityRow `json:"results"`
	Count   int       `json:"count"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
}

// ShopPage is one page of a shop listing together with the unpaginated total.
type ShopPage struct {
	Results []Shop `json:"results"`
	Count   int    `json:"count"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
}
