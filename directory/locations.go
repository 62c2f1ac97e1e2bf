package directory

import (
	"context"
	"log/slog"
)

// LocationResolver cascades get-or-create across the three taxonomy levels
// and returns the leaf city id. Each level is resolved independently; a
// failure at any level aborts the cascade so callers never observe a partial
// resolution with a zero parent id.
type LocationResolver struct {
	locations LocationRepository
	logger    *slog.Logger
}

// NewLocationResolver constructs a resolver over the given repository.
func NewLocationResolver(locations LocationRepository, logger *slog.Logger) *LocationResolver {
	return &LocationResolver{locations: locations, logger: logger}
}

// Resolve maps a (country, state, city) name triple to a city id, creating
// any missing taxonomy rows along the way. Matching is exact and
// case-sensitive on names; resolution is idempotent.
func (r *LocationResolver) Resolve(ctx context.Context, countryName, stateName, cityName string) (int64, error) {
	countryID, err := r.locations.GetOrCreateCountry(ctx, countryName)
	if err != nil {
		return 0, &ResolutionError{Level: "country", Name: countryName, Err: err}
	}

	stateID, err := r.locations.GetOrCreateState(ctx, stateName, countryID)
	if err != nil {
		return 0, &ResolutionError{Level: "state", Name: stateName, Err: err}
	}

	cityID, err := r.locations.GetOrCreateCity(ctx, cityName, stateID)
	if err != nil {
		return 0, &ResolutionError{Level: "city", Name: cityName, Err: err}
	}

	r.logger.Debug("location resolved",
		"country", countryName,
		"state", stateName,
		"city", cityName,
		"city_id", cityID,
	)
	return cityID, nil
}
