// Package estimate owns container-level estimates: their aggregate figures,
// persistence and the service that prices them.
package estimate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/grainexport/internal/pricing"
)

var (
	// ErrNotFound is returned when no estimate has the requested identifier.
	ErrNotFound = errors.New("estimate not found")
	// ErrVersionConflict is returned when a replace targets a stale version.
	ErrVersionConflict = errors.New("estimate version conflict")
)

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Role is the role of the user that saved an estimate.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleOpsAnalyst Role = "ops-analyst"
)

const unknownCreator = "Unknown"

// Estimate is one shipping container's estimate.
type Estimate struct {
	ID            string                    `json:"id"`
	ContainerID   string                    `json:"containerId"`
	Date          time.Time                 `json:"date"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
	Products      []pricing.ProductEstimate `json:"products"`
	TotalCost     float64                   `json:"totalCost"`
	MarginApplied float64                   `json:"marginApplied"`
	CreatedBy     string                    `json:"createdBy"`
	Role          Role                      `json:"role"`
	Version       int64                     `json:"version"`
}

// Input is the user-supplied part of an estimate.
type Input struct {
	ContainerID string                    `json:"containerId"`
	Products    []pricing.ProductEstimate `json:"products"`
	CreatedBy   string                    `json:"createdBy"`
	Role        Role                      `json:"role"`
}

// normalize trims text fields and fills the creator defaults.
func (in Input) normalize() Input {
	in.ContainerID = strings.TrimSpace(in.ContainerID)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	if in.CreatedBy == "" {
		in.CreatedBy = unknownCreator
	}
	if in.Role == "" {
		in.Role = RoleAdmin
	}
	return in
}

// validate checks the input against the known product identifiers. With strict set,
// cost and margin bounds are enforced as well.
func (in Input) validate(known map[string]bool, strict bool) error {
	if in.ContainerID == "" {
		return invalid("containerId is required")
	}
	if in.Role != RoleAdmin && in.Role != RoleOpsAnalyst {
		return invalid("role must be %q or %q", RoleAdmin, RoleOpsAnalyst)
	}
	if len(in.Products) == 0 {
		return invalid("select at least one product")
	}

	seen := make(map[string]bool, len(in.Products))
	for _, p := range in.Products {
		if seen[p.ProductID] {
			return invalid("product %q is listed more than once", p.ProductID)
		}
		seen[p.ProductID] = true

		if !known[p.ProductID] {
			return invalid("unknown product %q", p.ProductID)
		}
		if strict {
			if err := pricing.Validate(p); err != nil {
				return invalid("product %q: %v", p.ProductID, err)
			}
		}
	}
	return nil
}

// Totals returns the sum of importer costs and the average procurement margin.
// The average is 0 for an empty list.
func Totals(engine pricing.Engine, products []pricing.ProductEstimate) (totalCost, averageMargin float64) {
	if len(products) == 0 {
		return 0, 0
	}

	totalMargin := 0.0
	for _, p := range products {
		totalMargin += p.Margin
	}
	return engine.TotalImporterCost(products), totalMargin / float64(len(products))
}

// Build assembles an estimate from input. The stored export duty of each product is
// overwritten with the value the engine computes.
func Build(engine pricing.Engine, in Input) Estimate {
	products := make([]pricing.ProductEstimate, len(in.Products))
	for i, p := range in.Products {
		p.OriginCost.ExportDuty = engine.Breakdown(p).ExportDuty
		products[i] = p
	}

	totalCost, averageMargin := Totals(engine, products)
	return Estimate{
		ContainerID:   in.ContainerID,
		Products:      products,
		TotalCost:     totalCost,
		MarginApplied: averageMargin,
		CreatedBy:     in.CreatedBy,
		Role:          in.Role,
	}
}
