package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/grainexport/internal/pricing"
)

// Settings are the company-wide pricing defaults. Percent fields hold values in [0, 100].
type Settings struct {
	ExportDutyPercent        float64 `json:"exportDutyPercent"`
	DefaultMargin            float64 `json:"defaultMargin"`
	DefaultDistributorMargin float64 `json:"defaultDistributorMargin"`
	DefaultRetailerMargin    float64 `json:"defaultRetailerMargin"`
	CompanyName              string  `json:"companyName"`
}

// Defaults returns the settings used before anyone edits them.
func Defaults() Settings {
	return Settings{
		ExportDutyPercent:        pricing.DefaultExportDutyRate * 100,
		DefaultMargin:            15,
		DefaultDistributorMargin: 20,
		DefaultRetailerMargin:    25,
		CompanyName:              "GrainExport Solutions",
	}
}

// Validate checks percent bounds and the company name.
func (s Settings) Validate() error {
	percents := []struct {
		field string
		value float64
	}{
		{"exportDutyPercent", s.ExportDutyPercent},
		{"defaultMargin", s.DefaultMargin},
		{"defaultDistributorMargin", s.DefaultDistributorMargin},
		{"defaultRetailerMargin", s.DefaultRetailerMargin},
	}
	for _, p := range percents {
		if p.value < 0 || p.value > 100 {
			return fmt.Errorf("%s must be between 0 and 100", p.field)
		}
	}
	if strings.TrimSpace(s.CompanyName) == "" {
		return errors.New("companyName is required")
	}
	return nil
}

// Engine returns a pricing engine using the configured export duty.
func (s Settings) Engine() pricing.Engine {
	return pricing.NewEngine(s.ExportDutyPercent / 100)
}

// DraftLine returns an empty product estimate carrying the default margins.
func (s Settings) DraftLine(productID string) pricing.ProductEstimate {
	return pricing.ProductEstimate{
		ProductID:         productID,
		Margin:            s.DefaultMargin,
		DistributorMargin: s.DefaultDistributorMargin,
		RetailerMargin:    s.DefaultRetailerMargin,
	}
}

// Repository persists the pricing_settings singleton row.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Ensure validates s and inserts it as the singleton row if none exists yet. It
// reports whether a row was inserted.
func Ensure(ctx context.Context, db Execer, s Settings) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO pricing_settings (
			id,
			export_duty_percent,
			default_margin,
			default_distributor_margin,
			default_retailer_margin,
			company_name
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, s.ExportDutyPercent, s.DefaultMargin, s.DefaultDistributorMargin, s.DefaultRetailerMargin, strings.TrimSpace(s.CompanyName))
	if err != nil {
		return false, fmt.Errorf("insert default pricing_settings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert default pricing_settings: %w", err)
	}
	return affected > 0, nil
}

// Ensure inserts s unless the singleton row already exists.
func (r *Repository) Ensure(ctx context.Context, s Settings) (bool, error) {
	return Ensure(ctx, r.db, s)
}

// Get returns the stored settings.
func (r *Repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.db.QueryRowContext(ctx, `
		SELECT export_duty_percent, default_margin, default_distributor_margin, default_retailer_margin, company_name
		FROM pricing_settings
		WHERE id = 1
	`).Scan(
		&s.ExportDutyPercent,
		&s.DefaultMargin,
		&s.DefaultDistributorMargin,
		&s.DefaultRetailerMargin,
		&s.CompanyName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, fmt.Errorf("pricing_settings singleton not found")
		}
		return Settings{}, fmt.Errorf("query pricing_settings: %w", err)
	}
	return s, nil
}

// Update validates and stores s.
func (r *Repository) Update(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE pricing_settings
		SET
			export_duty_percent = ?,
			default_margin = ?,
			default_distributor_margin = ?,
			default_retailer_margin = ?,
			company_name = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		s.ExportDutyPercent,
		s.DefaultMargin,
		s.DefaultDistributorMargin,
		s.DefaultRetailerMargin,
		strings.TrimSpace(s.CompanyName),
	)
	if err != nil {
		return fmt.Errorf("update pricing_settings: %w", err)
	}

	return nil
}
