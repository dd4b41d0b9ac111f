package catalog_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/grainexport/internal/catalog"
	"github.com/Simplici0/grainexport/internal/db"
	"github.com/Simplici0/grainexport/internal/migrations"
	"github.com/Simplici0/grainexport/internal/seed"
)

func newRepository(t *testing.T) *catalog.Repository {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(ctx, database, seed.Config{ExportDutyPercent: 5}); err != nil {
		t.Fatalf("run seed: %v", err)
	}

	return catalog.NewRepository(database)
}

func TestRepositoryListKeepsDisplayOrder(t *testing.T) {
	repo := newRepository(t)

	products, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	defaults := catalog.Defaults()
	if len(products) != len(defaults) {
		t.Fatalf("expected %d products, got %d", len(defaults), len(products))
	}
	for i := range defaults {
		if products[i] != defaults[i] {
			t.Fatalf("product %d = %+v, want %+v", i, products[i], defaults[i])
		}
	}
}

func TestRepositoryGet(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	p, err := repo.Get(ctx, "chickpeas")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Name != "Chickpeas" || p.Category != "Pulses" {
		t.Fatalf("unexpected product: %+v", p)
	}

	if _, err := repo.Get(ctx, "quinoa"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryIndex(t *testing.T) {
	repo := newRepository(t)

	index, err := repo.Index(context.Background())
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if _, ok := index["mustard-oil"]; !ok {
		t.Fatalf("expected mustard-oil in index: %+v", index)
	}
}
