package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/grainexport/internal/catalog"
	"github.com/Simplici0/grainexport/internal/settings"
)

// Config contains the values required by startup seed.
type Config struct {
	// ExportDutyPercent seeds the settings row the first time it is created.
	ExportDutyPercent float64
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureProducts(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSettings(ctx, tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureProducts(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for i, p := range catalog.Defaults() {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, category, position)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, p.ID, p.Name, p.Category, i)
		if err != nil {
			return fmt.Errorf("insert product %q: %w", p.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert product %q: %w", p.ID, err)
		}
		stats.Inserts += int(affected)
	}
	return nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	s := settings.Defaults()
	s.ExportDutyPercent = cfg.ExportDutyPercent

	inserted, err := settings.Ensure(ctx, tx, s)
	if err != nil {
		return fmt.Errorf("seed pricing settings: %w", err)
	}
	if inserted {
		stats.Inserts++
	}
	return nil
}
