package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-artist-directory/pkg/slug"
)

// Invalidator is the slice of the query layer the ingest path needs: targeted
// eviction after writes. Implemented by QueryService.
type Invalidator interface {
	InvalidateArtist(ctx context.Context, id int64)
	InvalidateSearch(ctx context.Context)
}

// CreateArtistInput is the artist submission payload. Location is supplied
// either as a direct CityID or as the full name triple.
type CreateArtistInput struct {
	Name            string `json:"name"`
	InstagramHandle string `json:"instagram_handle"`
	Gender          string `json:"gender"`
	URL             string `json:"url"`
	Contact         string `json:"contact"`
	CityID          *int64 `json:"city_id"`
	CityName        string `json:"city_name"`
	StateName       string `json:"state_name"`
	CountryName     string `json:"country_name"`
	ShopID          *int64 `json:"shop_id"`
	IsTraveling     bool   `json:"is_traveling"`
}

// Validate checks the field-level constraints. Location presence is checked
// separately in CreateArtist because it spans multiple fields.
func (in CreateArtistInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.By(notBlank), validation.Length(1, 200)),
		validation.Field(&in.URL, is.URL),
		validation.Field(&in.InstagramHandle, validation.Length(0, 100)),
	)
}

// notBlank rejects values that are empty once trimmed; Required alone lets
// whitespace-only strings through.
func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

var errLocationRequired = validation.Errors{
	"location": validation.NewError(
		"validation_location_required",
		"either city_id or city_name, state_name and country_name must be provided",
	),
}

// UpdateArtistInput is a partial administrative update; nil fields are left
// untouched.
type UpdateArtistInput struct {
	Name            *string `json:"name"`
	InstagramHandle *string `json:"instagram_handle"`
	Gender          *string `json:"gender"`
	URL             *string `json:"url"`
	Contact         *string `json:"contact"`
	CityID          *int64  `json:"city_id"`
	IsTraveling     *bool   `json:"is_traveling"`
}

// Validate checks the fields that are present.
func (in UpdateArtistInput) Validate() error {
	errs := validation.Errors{}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		errs["name"] = validation.NewError("validation_required", "cannot be blank")
	}
	if in.URL != nil && *in.URL != "" {
		if err := validation.Validate(*in.URL, is.URL); err != nil {
			errs["url"] = err
		}
	}
	return errs.Filter()
}

// IngestResult reports the outcome of an artist submission: the committed
// primary row plus any secondary steps that degraded. Degraded steps never
// fail the operation; they are retryable with the same input.
type IngestResult struct {
	ArtistID int64          `json:"artist_id"`
	Slug     string         `json:"slug,omitempty"`
	Degraded []DegradedStep `json:"degraded,omitempty"`
}

// IngestService orchestrates artist creation: validation, location
// resolution, row creation, slug assignment and the optional shop link.
//
// The operation is deliberately not transactional. The artist row is the
// primary commit; slug assignment and shop linking run after it and their
// failures are absorbed as degraded steps so a new artist never vanishes
// because a secondary write failed.
type IngestService struct {
	artists     ArtistRepository
	resolver    *LocationResolver
	invalidator Invalidator
	logger      *slog.Logger
}

// NewIngestService wires the ingest path.
func NewIngestService(artists ArtistRepository, resolver *LocationResolver, invalidator Invalidator, logger *slog.Logger) *IngestService {
	return &IngestService{
		artists:     artists,
		resolver:    resolver,
		invalidator: invalidator,
		logger:      logger,
	}
}

// CreateArtist runs the ingest pipeline and returns the new artist id with
// any degraded secondary steps.
func (s *IngestService) CreateArtist(ctx context.Context, in CreateArtistInput) (*IngestResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	cityID, err := s.resolveCity(ctx, in)
	if err != nil {
		return nil, err
	}

	// Candidate is computed before the insert; the id-suffix resolution
	// needs the committed row's id and runs after.
	candidate := slug.Make(in.Name)

	artist := &Artist{
		Name:            strings.TrimSpace(in.Name),
		CityID:          cityID,
		InstagramHandle: optional(normalizeHandle(in.InstagramHandle)),
		Gender:          optional(in.Gender),
		URL:             optional(in.URL),
		Contact:         optional(in.Contact),
		IsTraveling:     in.IsTraveling,
	}
	if err := s.artists.Insert(ctx, artist); err != nil {
		return nil, err
	}

	result := &IngestResult{ArtistID: artist.ID}

	finalSlug, err := s.AssignSlug(ctx, artist.ID, candidate)
	if err != nil {
		s.logger.Error("slug assignment degraded",
			"artist_id", artist.ID,
			"candidate", candidate,
			"error", err,
		)
		result.Degraded = append(result.Degraded, DegradedStep{Step: "slug_assignment", Reason: err.Error()})
	} else {
		result.Slug = finalSlug
	}

	if in.ShopID != nil {
		if err := s.artists.LinkShop(ctx, artist.ID, *in.ShopID); err != nil {
			s.logger.Error("shop link degraded",
				"artist_id", artist.ID,
				"shop_id", *in.ShopID,
				"error", err,
			)
			result.Degraded = append(result.Degraded, DegradedStep{Step: "shop_link", Reason: err.Error()})
		}
	}

	// A new artist changes cached search result sets; the detail key for a
	// brand-new id cannot be populated yet.
	s.invalidator.InvalidateSearch(ctx)

	s.logger.Info("artist created",
		"artist_id", artist.ID,
		"slug", result.Slug,
		"degraded_steps", len(result.Degraded),
	)
	return result, nil
}

// AssignSlug resolves slug uniqueness for an existing artist and persists the
// result. Idempotent: rerunning with the same candidate converges on the same
// final slug, so a degraded assignment can be retried out of band.
func (s *IngestService) AssignSlug(ctx context.Context, artistID int64, candidate string) (string, error) {
	if candidate == "" {
		// Names made entirely of stripped characters slugify to "".
		candidate = fmt.Sprintf("artist-%d", artistID)
	}

	taken, err := s.artists.SlugTaken(ctx, candidate, artistID)
	if err != nil {
		return "", err
	}

	final := candidate
	if taken {
		final = fmt.Sprintf("%s-%d", candidate, artistID)
	}
	if err := s.artists.UpdateSlug(ctx, artistID, final); err != nil {
		return "", err
	}
	return final, nil
}

// UpdateArtist applies an administrative partial update and evicts the
// artist's cached derivations.
func (s *IngestService) UpdateArtist(ctx context.Context, id int64, in UpdateArtistInput) (*Artist, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	artist, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		artist.Name = strings.TrimSpace(*in.Name)
	}
	if in.InstagramHandle != nil {
		artist.InstagramHandle = optional(normalizeHandle(*in.InstagramHandle))
	}
	if in.Gender != nil {
		artist.Gender = optional(*in.Gender)
	}
	if in.URL != nil {
		artist.URL = optional(*in.URL)
	}
	if in.Contact != nil {
		artist.Contact = optional(*in.Contact)
	}
	if in.CityID != nil {
		artist.CityID = in.CityID
	}
	if in.IsTraveling != nil {
		artist.IsTraveling = *in.IsTraveling
	}

	if err := s.artists.Update(ctx, artist); err != nil {
		return nil, err
	}

	s.invalidator.InvalidateArtist(ctx, id)
	s.invalidator.InvalidateSearch(ctx)

	s.logger.Info("artist updated", "artist_id", id)
	return artist, nil
}

// resolveCity returns the artist's city id from the input: the direct id if
// supplied, otherwise the resolved name triple.
func (s *IngestService) resolveCity(ctx context.Context, in CreateArtistInput) (*int64, error) {
	if in.CityID != nil {
		return in.CityID, nil
	}
	if in.CityName == "" || in.StateName == "" || in.CountryName == "" {
		return nil, errLocationRequired
	}

	cityID, err := s.resolver.Resolve(ctx, in.CountryName, in.StateName, in.CityName)
	if err != nil {
		return nil, err
	}
	return &cityID, nil
}

// normalizeHandle strips a leading @ so handles are stored bare.
func normalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// optional maps "" to nil so empty form fields become NULL columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
