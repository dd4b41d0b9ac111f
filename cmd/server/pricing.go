package main

import (
	"net/http"

	"github.com/Simplici0/grainexport/internal/pricing"
)

type formattedPricing struct {
	ProcurementCost  string `json:"procurementCost"`
	ImporterCost     string `json:"importerCost"`
	DistributorPrice string `json:"distributorPrice"`
	RetailerPrice    string `json:"retailerPrice"`
}

type calculateResponse struct {
	pricing.Breakdown
	Formatted formattedPricing `json:"formatted"`
}

func formatPricing(p pricing.CalculatedPricing) formattedPricing {
	return formattedPricing{
		ProcurementCost:  pricing.FormatCurrency(p.ProcurementCost),
		ImporterCost:     pricing.FormatCurrency(p.ImporterCost),
		DistributorPrice: pricing.FormatCurrency(p.DistributorPrice),
		RetailerPrice:    pricing.FormatCurrency(p.RetailerPrice),
	}
}

func (s *server) handlePricingCalculate(w http.ResponseWriter, r *http.Request) {
	var pe pricing.ProductEstimate
	if err := decodeJSON(w, r, &pe); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown, err := s.estimates.Preview(r.Context(), pe)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, calculateResponse{
		Breakdown: breakdown,
		Formatted: formatPricing(breakdown.Pricing),
	})
}

type quickRequest struct {
	GlobalMargin float64             `json:"globalMargin"`
	Items        []pricing.QuickItem `json:"items"`
}

type quickResponse struct {
	pricing.QuickResult
	FormattedTotal string `json:"formattedTotal"`
}

func (s *server) handlePricingQuick(w http.ResponseWriter, r *http.Request) {
	var req quickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := pricing.QuickEstimate(req.Items, req.GlobalMargin)
	if !result.Finite() {
		writeError(w, http.StatusBadRequest, "invoice prices overflow; price or margin inputs are too large")
		return
	}
	writeJSON(w, http.StatusOK, quickResponse{
		QuickResult:    result,
		FormattedTotal: pricing.FormatCurrency(result.TotalInvoiceValue),
	})
}
