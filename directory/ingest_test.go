package directory_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/goliatone/go-artist-directory/directory"
	"github.com/goliatone/go-artist-directory/pkg/testsupport"
)

// stubInvalidator records eviction calls so ingest tests can assert on them
// without a cache.
type stubInvalidator struct {
	artistIDs []int64
	searches  int
}

func (s *stubInvalidator) InvalidateArtist(_ context.Context, id int64) {
	s.artistIDs = append(s.artistIDs, id)
}

func (s *stubInvalidator) InvalidateSearch(_ context.Context) {
	s.searches++
}

func newIngestFixture(t *testing.T) (*directory.IngestService, directory.ArtistRepository, *stubInvalidator) {
	t.Helper()
	db := testsupport.NewTestDB(t)
	logger := testsupport.NewTestLogger(t)

	locations := directory.NewLocationRepository(db)
	artists := directory.NewArtistRepository(db)
	resolver := directory.NewLocationResolver(locations, logger)
	invalidator := &stubInvalidator{}
	ingest := directory.NewIngestService(artists, resolver, invalidator, logger)
	return ingest, artists, invalidator
}

func TestCreateArtist(t *testing.T) {
	ingest, artists, invalidator := newIngestFixture(t)
	ctx := context.Background()

	result, err := ingest.CreateArtist(ctx, directory.CreateArtistInput{
		Name:            "Maria Silva",
		InstagramHandle: "@mariasilva",
		CityName:        "Lisbon",
		StateName:       "Lisboa",
		CountryName:     "Portugal",
	})
	if err != nil {
		t.Fatalf("CreateArtist: %v", err)
	}
	if result.ArtistID == 0 {
		t.Fatal("result has no artist id")
	}
	if result.Slug != "maria-silva" {
		t.Errorf("slug = %q, want %q", result.Slug, "maria-silva")
	}
	if len(result.Degraded) != 0 {
		t.Errorf("unexpected degraded steps: %+v", result.Degraded)
	}
	if invalidator.searches != 1 {
		t.Errorf("search invalidations = %d, want 1", invalidator.searches)
	}

	artist, err := artists.GetByID(ctx, result.ArtistID)
	if err != nil {
		t.Fatal(err)
	}
	if artist.InstagramHandle == nil || *artist.InstagramHandle != "mariasilva" {
		t.Errorf("handle = %v, want bare %q", artist.InstagramHandle, "mariasilva")
	}
	if artist.CityID == nil {
		t.Error("artist has no resolved city")
	}
}

func TestCreateArtistValidation(t *testing.T) {
	ingest, _, _ := newIngestFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input directory.CreateArtistInput
	}{
		{
			name:  "missing name",
			input: directory.CreateArtistInput{CityName: "Lisbon", StateName: "Lisboa", CountryName: "Portugal"},
		},
		{
			name: "whitespace-only name",
			input: directory.CreateArtistInput{
				Name: "   \t", CityName: "Lisbon", StateName: "Lisboa", CountryName: "Portugal",
			},
		},
		{
			name:  "missing location",
			input: directory.CreateArtistInput{Name: "Maria Silva"},
		},
		{
			name: "partial location triple",
			input: directory.CreateArtistInput{
				Name:     "Maria Silva",
				CityName: "Lisbon",
			},
		},
		{
			name: "malformed url",
			input: directory.CreateArtistInput{
				Name: "Maria Silva", URL: "not a url",
				CityName: "Lisbon", StateName: "Lisboa", CountryName: "Portugal",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingest.CreateArtist(ctx, tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !directory.IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateArtistSlugCollisionGetsIDSuffix(t *testing.T) {
	ingest, _, _ := newIngestFixture(t)
	ctx := context.Background()

	input := directory.CreateArtistInput{
		Name:        "Maria Silva",
		CityName:    "Lisbon",
		StateName:   "Lisboa",
		CountryName: "Portugal",
	}

	first, err := ingest.CreateArtist(ctx, input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ingest.CreateArtist(ctx, input)
	if err != nil {
		t.Fatal(err)
	}

	if first.Slug != "maria-silva" {
		t.Errorf("first slug = %q", first.Slug)
	}
	wantSecond := "maria-silva-" + itoa(second.ArtistID)
	if second.Slug != wantSecond {
		t.Errorf("second slug = %q, want %q", second.Slug, wantSecond)
	}
	if len(second.Degraded) != 0 {
		t.Errorf("slug collision must not degrade: %+v", second.Degraded)
	}
}

func TestCreateArtistUnslugifiableNameFallsBackToID(t *testing.T) {
	ingest, _, _ := newIngestFixture(t)

	result, err := ingest.CreateArtist(context.Background(), directory.CreateArtistInput{
		Name:        "先生",
		CityName:    "Lisbon",
		StateName:   "Lisboa",
		CountryName: "Portugal",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "artist-" + itoa(result.ArtistID)
	if result.Slug != want {
		t.Errorf("slug = %q, want %q", result.Slug, want)
	}
}

func TestCreateArtistShopLinkFailureDegrades(t *testing.T) {
	ingest, artists, _ := newIngestFixture(t)
	ctx := context.Background()

	missingShop := int64(999)
	result, err := ingest.CreateArtist(ctx, directory.CreateArtistInput{
		Name:        "Maria Silva",
		CityName:    "Lisbon",
		StateName:   "Lisboa",
		CountryName: "Portugal",
		ShopID:      &missingShop,
	})
	if err != nil {
		t.Fatalf("broken shop link must not fail the create: %v", err)
	}

	if len(result.Degraded) != 1 || result.Degraded[0].Step != "shop_link" {
		t.Fatalf("degraded = %+v, want one shop_link step", result.Degraded)
	}

	// The artist row itself committed.
	if _, err := artists.GetByID(ctx, result.ArtistID); err != nil {
		t.Errorf("artist row missing after degraded create: %v", err)
	}
}

func TestUpdateArtist(t *testing.T) {
	ingest, artists, invalidator := newIngestFixture(t)
	ctx := context.Background()

	created, err := ingest.CreateArtist(ctx, directory.CreateArtistInput{
		Name:        "Maria Silva",
		CityName:    "Lisbon",
		StateName:   "Lisboa",
		CountryName: "Portugal",
	})
	if err != nil {
		t.Fatal(err)
	}

	newName := "Maria S. Costa"
	traveling := true
	updated, err := ingest.UpdateArtist(ctx, created.ArtistID, directory.UpdateArtistInput{
		Name:        &newName,
		IsTraveling: &traveling,
	})
	if err != nil {
		t.Fatalf("UpdateArtist: %v", err)
	}
	if updated.Name != newName || !updated.IsTraveling {
		t.Errorf("updated = %+v", updated)
	}

	stored, err := artists.GetByID(ctx, created.ArtistID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Name != newName {
		t.Errorf("stored name = %q, want %q", stored.Name, newName)
	}
	if len(invalidator.artistIDs) != 1 || invalidator.artistIDs[0] != created.ArtistID {
		t.Errorf("artist invalidations = %v", invalidator.artistIDs)
	}
}

func TestUpdateArtistUnknownIDIsNotFound(t *testing.T) {
	ingest, _, _ := newIngestFixture(t)

	name := "Nobody"
	_, err := ingest.UpdateArtist(context.Background(), 999, directory.UpdateArtistInput{Name: &name})
	if !errors.Is(err, directory.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
