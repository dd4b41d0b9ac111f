package estimate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/grainexport/internal/catalog"
	"github.com/Simplici0/grainexport/internal/pricing"
	"github.com/Simplici0/grainexport/internal/settings"
)

const overflowMessage = "prices overflow; cost or margin inputs are too large"

// Catalog resolves product identifiers.
type Catalog interface {
	Index(ctx context.Context) (map[string]catalog.Product, error)
}

// SettingsSource provides the current pricing settings.
type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// Line is one priced product of an estimate.
type Line struct {
	Product   catalog.Product         `json:"product"`
	Estimate  pricing.ProductEstimate `json:"estimate"`
	Breakdown pricing.Breakdown       `json:"breakdown"`
}

// Detail is an estimate with every product re-priced by the engine.
type Detail struct {
	Estimate
	Lines []Line `json:"lines"`
	// MissingProducts lists product identifiers no longer present in the catalog.
	// Their lines are omitted.
	MissingProducts   []string `json:"missingProducts"`
	ExportDutyPercent float64  `json:"exportDutyPercent"`
}

// Service validates, prices and stores estimates.
type Service struct {
	store    Store
	catalog  Catalog
	settings SettingsSource
	log      *zap.Logger
	strict   bool

	now   func() time.Time
	newID func() string
}

// NewService creates a Service. With strict set, negative costs and margins outside
// [0, 100] are rejected on save and preview.
func NewService(store Store, products Catalog, source SettingsSource, log *zap.Logger, strict bool) *Service {
	return &Service{
		store:    store,
		catalog:  products,
		settings: source,
		log:      log,
		strict:   strict,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
		newID: func() string {
			return uuid.NewString()
		},
	}
}

func (s *Service) engine(ctx context.Context) (pricing.Engine, settings.Settings, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return pricing.Engine{}, settings.Settings{}, fmt.Errorf("load pricing settings: %w", err)
	}
	return cfg.Engine(), cfg, nil
}

func (s *Service) build(ctx context.Context, in Input) (Estimate, error) {
	in = in.normalize()

	index, err := s.catalog.Index(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("load catalog: %w", err)
	}
	known := make(map[string]bool, len(index))
	for id := range index {
		known[id] = true
	}
	if err := in.validate(known, s.strict); err != nil {
		return Estimate{}, err
	}

	engine, _, err := s.engine(ctx)
	if err != nil {
		return Estimate{}, err
	}

	for _, p := range in.Products {
		if !engine.Breakdown(p).Finite() {
			return Estimate{}, invalid("product %q: %s", p.ProductID, overflowMessage)
		}
	}
	e := Build(engine, in)
	for _, v := range []float64{e.TotalCost, e.MarginApplied} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Estimate{}, invalid("%s", overflowMessage)
		}
	}
	return e, nil
}

// Create validates and stores a new estimate.
func (s *Service) Create(ctx context.Context, in Input) (Estimate, error) {
	e, err := s.build(ctx, in)
	if err != nil {
		return Estimate{}, err
	}

	now := s.now()
	e.ID = s.newID()
	e.Date = now
	e.UpdatedAt = now
	e.Version = 1

	if err := s.store.Create(ctx, e); err != nil {
		return Estimate{}, err
	}

	s.log.Info("estimate created",
		zap.String("id", e.ID),
		zap.String("container_id", e.ContainerID),
		zap.Int("products", len(e.Products)),
		zap.Float64("total_cost", e.TotalCost))
	return e, nil
}

// Replace overwrites an estimate's content. The identifier and creation date are
// kept; expectedVersion must match the stored version.
func (s *Service) Replace(ctx context.Context, id string, expectedVersion int64, in Input) (Estimate, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Estimate{}, err
	}
	if current.Version != expectedVersion {
		return Estimate{}, ErrVersionConflict
	}

	e, err := s.build(ctx, in)
	if err != nil {
		return Estimate{}, err
	}
	e.ID = current.ID
	e.Date = current.Date
	e.UpdatedAt = s.now()

	stored, err := s.store.Replace(ctx, e, expectedVersion)
	if err != nil {
		return Estimate{}, err
	}

	s.log.Info("estimate replaced",
		zap.String("id", stored.ID),
		zap.Int64("version", stored.Version),
		zap.Float64("total_cost", stored.TotalCost))
	return stored, nil
}

// Get returns a stored estimate.
func (s *Service) Get(ctx context.Context, id string) (Estimate, error) {
	return s.store.Get(ctx, id)
}

// List returns estimates matching params.
func (s *Service) List(ctx context.Context, params ListParams) ([]Estimate, error) {
	return s.store.List(ctx, params)
}

// Delete removes an estimate.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("estimate deleted", zap.String("id", id))
	return nil
}

// Detail loads an estimate and prices each product with the current settings.
func (s *Service) Detail(ctx context.Context, id string) (Detail, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	index, err := s.catalog.Index(ctx)
	if err != nil {
		return Detail{}, fmt.Errorf("load catalog: %w", err)
	}
	engine, cfg, err := s.engine(ctx)
	if err != nil {
		return Detail{}, err
	}

	detail := Detail{
		Estimate:          e,
		Lines:             make([]Line, 0, len(e.Products)),
		MissingProducts:   make([]string, 0),
		ExportDutyPercent: cfg.ExportDutyPercent,
	}
	for _, pe := range e.Products {
		product, ok := index[pe.ProductID]
		if !ok {
			detail.MissingProducts = append(detail.MissingProducts, pe.ProductID)
			continue
		}
		detail.Lines = append(detail.Lines, Line{
			Product:   product,
			Estimate:  pe,
			Breakdown: engine.Breakdown(pe),
		})
	}

	if len(detail.MissingProducts) > 0 {
		s.log.Warn("estimate references products missing from the catalog",
			zap.String("id", e.ID),
			zap.Strings("product_ids", detail.MissingProducts))
	}
	return detail, nil
}

// Preview prices a single product estimate with the current settings without
// storing anything.
func (s *Service) Preview(ctx context.Context, pe pricing.ProductEstimate) (pricing.Breakdown, error) {
	if s.strict {
		if err := pricing.Validate(pe); err != nil {
			return pricing.Breakdown{}, invalid("%v", err)
		}
	}

	engine, _, err := s.engine(ctx)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	breakdown := engine.Breakdown(pe)
	if !breakdown.Finite() {
		return pricing.Breakdown{}, invalid("%s", overflowMessage)
	}
	return breakdown, nil
}
