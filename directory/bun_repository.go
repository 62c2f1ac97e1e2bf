package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

var errMissingName = errors.New("name must not be empty")

// BunLocationRepository implements LocationRepository on a bun database.
type BunLocationRepository struct {
	db *bun.DB
}

// NewLocationRepository creates a LocationRepository backed by db.
func NewLocationRepository(db *bun.DB) *BunLocationRepository {
	return &BunLocationRepository{db: db}
}

// GetOrCreateCountry implements LocationRepository.
func (r *BunLocationRepository) GetOrCreateCountry(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, &ResolutionError{Level: "country", Name: name, Err: errMissingName}
	}

	_, err := r.db.NewInsert().
		Model(&Country{Name: name}).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, &ResolutionError{Level: "country", Name: name, Err: err}
	}

	// The insert may have been skipped by the conflict clause; the
	// re-select is authoritative either way.
	row := new(Country)
	err = r.db.NewSelect().Model(row).Where("co.name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		return 0, &ResolutionError{Level: "country", Name: name, Err: err}
	}
	return row.ID, nil
}

// GetOrCreateState implements LocationRepository.
func (r *BunLocationRepository) GetOrCreateState(ctx context.Context, name string, countryID int64) (int64, error) {
	if name == "" {
		return 0, &ResolutionError{Level: "state", Name: name, Err: errMissingName}
	}
	if countryID == 0 {
		return 0, &ResolutionError{Level: "state", Name: name, Err: errors.New("country id is required")}
	}

	_, err := r.db.NewInsert().
		Model(&State{Name: name, CountryID: countryID}).
		On("CONFLICT (name, country_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, &ResolutionError{Level: "state", Name: name, Err: err}
	}

	row := new(State)
	err = r.db.NewSelect().Model(row).
		Where("st.name = ?", name).
		Where("st.country_id = ?", countryID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return 0, &ResolutionError{Level: "state", Name: name, Err: err}
	}
	return row.ID, nil
}

// GetOrCreateCity implements LocationRepository.
func (r *BunLocationRepository) GetOrCreateCity(ctx context.Context, name string, stateID int64) (int64, error) {
	if name == "" {
		return 0, &ResolutionError{Level: "city", Name: name, Err: errMissingName}
	}
	if stateID == 0 {
		return 0, &ResolutionError{Level: "city", Name: name, Err: errors.New("state id is required")}
	}

	_, err := r.db.NewInsert().
		Model(&City{Name: name, StateID: &stateID}).
		On("CONFLICT (name, state_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, &ResolutionError{Level: "city", Name: name, Err: err}
	}

	row := new(City)
	err = r.db.NewSelect().Model(row).
		Where("ci.name = ?", name).
		Where("ci.state_id = ?", stateID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return 0, &ResolutionError{Level: "city", Name: name, Err: err}
	}
	return row.ID, nil
}

// ListCities implements LocationRepository.
func (r *BunLocationRepository) ListCities(ctx context.Context, filters CityFilters, page, limit int) ([]CityRow, int, error) {
	rows := make([]CityRow, 0, limit)

	q := r.db.NewSelect().
		Model(&rows).
		ModelTableExpr("cities AS ci").
		ColumnExpr("ci.*").
		ColumnExpr("st.name AS state_name").
		ColumnExpr("co.name AS country_name").
		Join("LEFT JOIN states AS st ON st.id = ci.state_id").
		Join("LEFT JOIN countries AS co ON co.id = st.country_id").
		OrderExpr("ci.name ASC, ci.id ASC")

	if filters.City != "" {
		q = q.Where("lower(ci.name) LIKE ? ESCAPE '\\'", likePattern(filters.City))
	}
	if filters.State != "" {
		q = q.Where("lower(st.name) LIKE ? ESCAPE '\\'", likePattern(filters.State))
	}
	if filters.Country != "" {
		q = q.Where("lower(co.name) LIKE ? ESCAPE '\\'", likePattern(filters.Country))
	}

	count, err := q.Limit(limit).Offset((page - 1) * limit).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("listing cities: %w", err)
	}
	return rows, count, nil
}

// BunArtistRepository implements ArtistRepository on a bun database.
type BunArtistRepository struct {
	db *bun.DB
}

// NewArtistRepository creates an ArtistRepository backed by db.
func NewArtistRepository(db *bun.DB) *BunArtistRepository {
	return &BunArtistRepository{db: db}
}

// Insert implements ArtistRepository. The generated id is written back to
// artist.ID.
func (r *BunArtistRepository) Insert(ctx context.Context, artist *Artist) error {
	now := time.Now().UTC()
	artist.CreatedAt = now
	artist.UpdatedAt = now

	_, err := r.db.NewInsert().Model(artist).Returning("id").Exec(ctx)
	if err != nil {
		return fmt.Errorf("inserting artist: %w", err)
	}
	return nil
}

// GetByID implements ArtistRepository.
func (r *BunArtistRepository) GetByID(ctx context.Context, id int64) (*Artist, error) {
	artist := new(Artist)
	err := r.db.NewSelect().Model(artist).Where("a.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading artist %d: %w", id, err)
	}
	return artist, nil
}

// GetDetail implements ArtistRepository: the artist row, its location names
// and the linked shop if one exists.
func (r *BunArtistRepository) GetDetail(ctx context.Context, id int64) (*ArtistDetail, error) {
	detail := new(ArtistDetail)
	err := r.db.NewSelect().
		Model(detail).
		ModelTableExpr("artists AS a").
		ColumnExpr("a.*").
		ColumnExpr("ci.name AS city_name").
		ColumnExpr("st.name AS state_name").
		ColumnExpr("co.name AS country_name").
		Join("LEFT JOIN cities AS ci ON ci.id = a.city_id").
		Join("LEFT JOIN states AS st ON st.id = ci.state_id").
		Join("LEFT JOIN countries AS co ON co.id = st.country_id").
		Where("a.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading artist detail %d: %w", id, err)
	}

	shop := new(Shop)
	err = r.db.NewSelect().
		Model(shop).
		Join("JOIN artist_shop AS ash ON ash.shop_id = sh.id").
		Where("ash.artist_id = ?", id).
		Limit(1).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// No link; the detail is complete without a shop.
	case err != nil:
		return nil, fmt.Errorf("loading linked shop for artist %d: %w", id, err)
	default:
		detail.Shop = shop
	}
	return detail, nil
}

// Update implements ArtistRepository.
func (r *BunArtistRepository) Update(ctx context.Context, artist *Artist) error {
	artist.UpdatedAt = time.Now().UTC()

	res, err := r.db.NewUpdate().Model(artist).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("updating artist %d: %w", artist.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugTaken implements ArtistRepository.
func (r *BunArtistRepository) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	taken, err := r.db.NewSelect().
		Model((*Artist)(nil)).
		Where("a.slug = ?", slug).
		Where("a.id != ?", excludeID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return taken, nil
}

// UpdateSlug implements ArtistRepository.
func (r *BunArtistRepository) UpdateSlug(ctx context.Context, id int64, slug string) error {
	_, err := r.db.NewUpdate().
		Model((*Artist)(nil)).
		Set("slug = ?", slug).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("updating slug for artist %d: %w", id, err)
	}
	return nil
}

// Search implements ArtistRepository.
func (r *BunArtistRepository) Search(ctx context.Context, query string) ([]ArtistSummary, error) {
	pattern := likePattern(query)
	rows := make([]ArtistSummary, 0, 16)

	err := r.db.NewSelect().
		TableExpr("artists AS a").
		ColumnExpr("a.id, a.name, a.slug, a.instagram_handle").
		ColumnExpr("ci.name AS city_name").
		ColumnExpr("st.name AS state_name").
		ColumnExpr("co.name AS country_name").
		Join("LEFT JOIN cities AS ci ON ci.id = a.city_id").
		Join("LEFT JOIN states AS st ON st.id = ci.state_id").
		Join("LEFT JOIN countries AS co ON co.id = st.country_id").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("lower(a.name) LIKE ? ESCAPE '\\'", pattern).
				WhereOr("lower(a.instagram_handle) LIKE ? ESCAPE '\\'", pattern).
				WhereOr("lower(ci.name) LIKE ? ESCAPE '\\'", pattern).
				WhereOr("lower(st.name) LIKE ? ESCAPE '\\'", pattern).
				WhereOr("lower(co.name) LIKE ? ESCAPE '\\'", pattern)
		}).
		OrderExpr("a.name ASC, a.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}
	return rows, nil
}

// ByCity implements ArtistRepository.
func (r *BunArtistRepository) ByCity(ctx context.Context, cityID int64) ([]ArtistSummary, error) {
	rows := make([]ArtistSummary, 0, 8)

	err := r.db.NewSelect().
		TableExpr("artists AS a").
		ColumnExpr("a.id, a.name, a.slug, a.instagram_handle").
		Where("a.city_id = ?", cityID).
		OrderExpr("a.name ASC, a.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("listing artists for city %d: %w", cityID, err)
	}
	return rows, nil
}

// LinkShop implements ArtistRepository.
func (r *BunArtistRepository) LinkShop(ctx context.Context, artistID, shopID int64) error {
	_, err := r.db.NewInsert().
		Model(&ArtistShop{ArtistID: artistID, ShopID: shopID}).
		On("CONFLICT (artist_id, shop_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("linking artist %d to shop %d: %w", artistID, shopID, err)
	}
	return nil
}

// BunShopRepository implements ShopRepository on a bun database.
type BunShopRepository struct {
	db *bun.DB
}

// NewShopRepository creates a ShopRepository backed by db.
func NewShopRepository(db *bun.DB) *BunShopRepository {
	return &BunShopRepository{db: db}
}

// GetByID implements ShopRepository.
func (r *BunShopRepository) GetByID(ctx context.Context, id int64) (*Shop, error) {
	shop := new(Shop)
	err := r.db.NewSelect().Model(shop).Where("sh.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading shop %d: %w", id, err)
	}
	return shop, nil
}

// List implements ShopRepository.
func (r *BunShopRepository) List(ctx context.Context, query string, page, limit int) ([]Shop, int, error) {
	rows := make([]Shop, 0, limit)

	q := r.db.NewSelect().Model(&rows).OrderExpr("sh.name ASC, sh.id ASC")
	if query != "" {
		q = q.Where("lower(sh.name) LIKE ? ESCAPE '\\'", likePattern(query))
	}

	count, err := q.Limit(limit).Offset((page - 1) * limit).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("listing shops: %w", err)
	}
	return rows, count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for LIKE matching.
// Metacharacters in the input are escaped so they match literally; every LIKE
// clause using the pattern carries ESCAPE '\'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
