package pricing

import (
	"errors"
	"fmt"
)

// Validate reports negative cost line items and margins outside [0, 100].
// Calculate itself accepts any input; callers opt into these bounds.
func Validate(pe ProductEstimate) error {
	var errs []error

	costs := []struct {
		field string
		value float64
	}{
		{"rawMaterialCost", pe.OriginCost.RawMaterialCost},
		{"transportCost", pe.OriginCost.TransportCost},
		{"packingCost", pe.OriginCost.PackingCost},
		{"fumigationCost", pe.OriginCost.FumigationCost},
		{"customsClearanceCost", pe.OriginCost.CustomsClearanceCost},
		{"freightCost", pe.LogisticsCost.FreightCost},
		{"importDuty", pe.LogisticsCost.ImportDuty},
		{"customsClearance", pe.LogisticsCost.CustomsClearance},
		{"transportToDestination", pe.LogisticsCost.TransportToDestination},
	}
	for _, c := range costs {
		if c.value < 0 {
			errs = append(errs, fmt.Errorf("%s must be greater than or equal to 0", c.field))
		}
	}

	margins := []struct {
		field string
		value float64
	}{
		{"margin", pe.Margin},
		{"distributorMargin", pe.DistributorMargin},
		{"retailerMargin", pe.RetailerMargin},
	}
	for _, m := range margins {
		if m.value < 0 || m.value > 100 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 100", m.field))
		}
	}

	return errors.Join(errs...)
}
