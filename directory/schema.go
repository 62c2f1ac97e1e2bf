package directory

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the directory tables with their foreign keys and the
// unique indexes the get-or-create and slug invariants rely on. Safe to call
// repeatedly. Tables are declared in dependency order so the references
// resolve.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		model       any
		foreignKeys []string
	}{
		{(*Country)(nil), nil},
		{(*State)(nil), []string{`("country_id") REFERENCES "countries" ("id")`}},
		{(*City)(nil), []string{`("state_id") REFERENCES "states" ("id")`}},
		{(*Artist)(nil), []string{`("city_id") REFERENCES "cities" ("id")`}},
		{(*Shop)(nil), []string{`("city_id") REFERENCES "cities" ("id")`}},
		{(*ArtistShop)(nil), []string{
			`("artist_id") REFERENCES "artists" ("id")`,
			`("shop_id") REFERENCES "shops" ("id")`,
		}},
	}
	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", table.model, err)
		}
	}

	// The natural-key constraints double as the race guard for concurrent
	// get-or-create calls; without them the conflict-free inserts are
	// plain inserts.
	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{(*Country)(nil), "countries_name_key", []string{"name"}},
		{(*State)(nil), "states_name_country_key", []string{"name", "country_id"}},
		{(*City)(nil), "cities_name_state_key", []string{"name", "state_id"}},
		{(*Artist)(nil), "artists_slug_key", []string{"slug"}},
	}
	for _, idx := range indexes {
		q := db.NewCreateIndex().Model(idx.model).Index(idx.name).Unique().IfNotExists()
		for _, col := range idx.columns {
			q = q.Column(col)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}
	return nil
}
