package pricing

import "math"

// DefaultExportDutyRate is the export duty applied to the procurement cost when no
// rate is configured (5%).
const DefaultExportDutyRate = 0.05

// OriginCost holds per-product costs incurred in the exporting country.
type OriginCost struct {
	RawMaterialCost      float64 `json:"rawMaterialCost"`
	TransportCost        float64 `json:"transportCost"`
	PackingCost          float64 `json:"packingCost"`
	FumigationCost       float64 `json:"fumigationCost"`
	CustomsClearanceCost float64 `json:"customsClearanceCost"`
	// ExportDuty is derived. Calculate never reads it.
	ExportDuty float64 `json:"exportDuty"`
}

// Total returns the sum of the five origin line items. ExportDuty is not included.
func (c OriginCost) Total() float64 {
	return c.RawMaterialCost + c.TransportCost + c.PackingCost + c.FumigationCost + c.CustomsClearanceCost
}

// LogisticsCost holds per-product costs incurred after export.
type LogisticsCost struct {
	FreightCost            float64 `json:"freightCost"`
	ImportDuty             float64 `json:"importDuty"`
	CustomsClearance       float64 `json:"customsClearance"`
	TransportToDestination float64 `json:"transportToDestination"`
}

// Total returns the sum of the four logistics line items.
func (c LogisticsCost) Total() float64 {
	return c.FreightCost + c.ImportDuty + c.CustomsClearance + c.TransportToDestination
}

// ProductEstimate is one product's full cost profile. Margins are percentages.
type ProductEstimate struct {
	ProductID         string        `json:"productId"`
	OriginCost        OriginCost    `json:"originCost"`
	LogisticsCost     LogisticsCost `json:"logisticsCost"`
	Margin            float64       `json:"margin"`
	DistributorMargin float64       `json:"distributorMargin"`
	RetailerMargin    float64       `json:"retailerMargin"`
}

// CalculatedPricing is the four-tier price cascade. ProcurementCost already includes
// the export duty.
type CalculatedPricing struct {
	ProcurementCost  float64 `json:"procurementCost"`
	ImporterCost     float64 `json:"importerCost"`
	DistributorPrice float64 `json:"distributorPrice"`
	RetailerPrice    float64 `json:"retailerPrice"`
}

// Breakdown groups the cascade with the line-item sums it was built from.
type Breakdown struct {
	Pricing            CalculatedPricing `json:"pricing"`
	TotalOriginCost    float64           `json:"totalOriginCost"`
	ExportDuty         float64           `json:"exportDuty"`
	TotalLogisticsCost float64           `json:"totalLogisticsCost"`
}

// Finite reports whether every figure of the breakdown is a finite number. Inputs
// near the float64 limit can overflow to infinity.
func (b Breakdown) Finite() bool {
	return allFinite(
		b.Pricing.ProcurementCost,
		b.Pricing.ImporterCost,
		b.Pricing.DistributorPrice,
		b.Pricing.RetailerPrice,
		b.TotalOriginCost,
		b.ExportDuty,
		b.TotalLogisticsCost,
	)
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Engine computes price cascades with an injected export duty rate (0.05 means 5%).
// The zero value applies no export duty.
type Engine struct {
	ExportDutyRate float64
}

// NewEngine returns an Engine using the given export duty rate.
func NewEngine(exportDutyRate float64) Engine {
	return Engine{ExportDutyRate: exportDutyRate}
}

// DefaultEngine returns an Engine using DefaultExportDutyRate.
func DefaultEngine() Engine {
	return NewEngine(DefaultExportDutyRate)
}

// Calculate computes the procurement, importer, distributor and retailer prices.
//
// Inputs are not validated: negative costs and margins outside [0, 100] flow through
// the formulas unchanged. Use Validate for a bounds-checked path.
func (e Engine) Calculate(pe ProductEstimate) CalculatedPricing {
	return e.Breakdown(pe).Pricing
}

// Breakdown computes the price cascade together with its intermediate sums.
func (e Engine) Breakdown(pe ProductEstimate) Breakdown {
	totalOrigin := pe.OriginCost.Total()

	procurement := totalOrigin * (1.0 + pe.Margin/100.0)
	exportDuty := procurement * e.ExportDutyRate
	finalProcurement := procurement + exportDuty

	totalLogistics := pe.LogisticsCost.Total()
	importerCost := finalProcurement + totalLogistics

	distributorPrice := importerCost * (1.0 + pe.DistributorMargin/100.0)
	retailerPrice := distributorPrice * (1.0 + pe.RetailerMargin/100.0)

	return Breakdown{
		Pricing: CalculatedPricing{
			ProcurementCost:  finalProcurement,
			ImporterCost:     importerCost,
			DistributorPrice: distributorPrice,
			RetailerPrice:    retailerPrice,
		},
		TotalOriginCost:    totalOrigin,
		ExportDuty:         exportDuty,
		TotalLogisticsCost: totalLogistics,
	}
}

// TotalImporterCost sums the importer cost of every product estimate.
func (e Engine) TotalImporterCost(estimates []ProductEstimate) float64 {
	total := 0.0
	for _, pe := range estimates {
		total += e.Calculate(pe).ImporterCost
	}
	return total
}

// Calculate computes the price cascade using DefaultExportDutyRate.
func Calculate(pe ProductEstimate) CalculatedPricing {
	return DefaultEngine().Calculate(pe)
}
