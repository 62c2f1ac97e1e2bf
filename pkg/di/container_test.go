package di_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-artist-directory/cache"
	"github.com/goliatone/go-artist-directory/directory"
	"github.com/goliatone/go-artist-directory/pkg/di"
	"github.com/goliatone/go-artist-directory/pkg/testsupport"
)

func TestNewContainerWiresServices(t *testing.T) {
	db := testsupport.NewTestDB(t)
	logger := testsupport.NewTestLogger(t)

	container, err := di.NewContainer(db, cache.DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	if container.CacheService() == nil {
		t.Error("cache service not wired")
	}
	if container.IngestService() == nil || container.QueryService() == nil {
		t.Error("domain services not wired")
	}
	if container.Locations() == nil || container.Artists() == nil || container.Shops() == nil {
		t.Error("repositories not wired")
	}

	// Accessors return the same instances every call.
	if container.QueryService() != container.QueryService() {
		t.Error("QueryService is not a singleton")
	}
	if container.IngestService() != container.IngestService() {
		t.Error("IngestService is not a singleton")
	}
}

func TestNewContainerRejectsInvalidCacheConfig(t *testing.T) {
	db := testsupport.NewTestDB(t)
	logger := testsupport.NewTestLogger(t)

	cfg := cache.DefaultConfig()
	cfg.Capacity = -1
	if _, err := di.NewContainer(db, cfg, logger); err == nil {
		t.Error("expected error for invalid cache config")
	}
}

func TestContainerEndToEnd(t *testing.T) {
	db := testsupport.NewTestDB(t)
	logger := testsupport.NewTestLogger(t)

	container, err := di.NewContainer(db, cache.DefaultConfig(), logger)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	result, err := container.IngestService().CreateArtist(ctx, directory.CreateArtistInput{
		Name:        "Maria Silva",
		CityName:    "Lisbon",
		StateName:   "Lisboa",
		CountryName: "Portugal",
	})
	if err != nil {
		t.Fatalf("CreateArtist through container: %v", err)
	}

	detail, err := container.QueryService().ArtistByID(ctx, result.ArtistID)
	if err != nil {
		t.Fatalf("ArtistByID through container: %v", err)
	}
	if detail.Name != "Maria Silva" {
		t.Errorf("name = %q", detail.Name)
	}
}
