package estimate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/grainexport/internal/db"
	"github.com/Simplici0/grainexport/internal/migrations"
	"github.com/Simplici0/grainexport/internal/pricing"
	"github.com/Simplici0/grainexport/internal/seed"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "estimates.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database))
	_, err = seed.Run(ctx, database, seed.Config{ExportDutyPercent: 5})
	require.NoError(t, err)
	return database
}

func riceLine() pricing.ProductEstimate {
	return pricing.ProductEstimate{
		ProductID: "basmati-rice",
		OriginCost: pricing.OriginCost{
			RawMaterialCost:      1000,
			TransportCost:        200,
			PackingCost:          100,
			FumigationCost:       50,
			CustomsClearanceCost: 50,
		},
		LogisticsCost: pricing.LogisticsCost{
			FreightCost:            300,
			ImportDuty:             100,
			CustomsClearance:       50,
			TransportToDestination: 50,
		},
		Margin:            15,
		DistributorMargin: 20,
		RetailerMargin:    25,
	}
}

func chickpeaLine() pricing.ProductEstimate {
	return pricing.ProductEstimate{
		ProductID:         "chickpeas",
		OriginCost:        pricing.OriginCost{RawMaterialCost: 200},
		LogisticsCost:     pricing.LogisticsCost{FreightCost: 40},
		Margin:            5,
		DistributorMargin: 20,
		RetailerMargin:    25,
	}
}
