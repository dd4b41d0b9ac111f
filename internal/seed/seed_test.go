package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/grainexport/internal/db"
	"github.com/Simplici0/grainexport/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cfg := Config{ExportDutyPercent: 6}

	for i := 0; i < 5; i++ {
		stats, err := Run(ctx, database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 6 {
				t.Fatalf("expected 6 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM products`, 5)
	assertCount(t, database, `SELECT COUNT(*) FROM pricing_settings WHERE id = 1`, 1)

	var duty float64
	if err := database.QueryRow(`SELECT export_duty_percent FROM pricing_settings WHERE id = 1`).Scan(&duty); err != nil {
		t.Fatalf("query duty: %v", err)
	}
	if duty != 6 {
		t.Fatalf("expected seeded duty 6, got %v", duty)
	}
}

func TestRunRejectsInvalidDuty(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-bad.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	if _, err := Run(ctx, database, Config{ExportDutyPercent: -3}); err == nil {
		t.Fatalf("expected error for negative duty")
	}
	assertCount(t, database, `SELECT COUNT(*) FROM products`, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, expected int) {
	t.Helper()

	var count int
	if err := database.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
