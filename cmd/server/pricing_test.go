package main

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPricingCalculateReturnsCascadeAndFormattedPrices(t *testing.T) {
	h := newTestServer(t, false)

	rec := doRequest(t, h, http.MethodPost, "/pricing/calculate", riceLine(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got calculateResponse
	decodeBody(t, rec, &got)

	want := map[string][2]float64{
		"procurement": {got.Pricing.ProcurementCost, 1690.5},
		"importer":    {got.Pricing.ImporterCost, 2190.5},
		"distributor": {got.Pricing.DistributorPrice, 2628.6},
		"retailer":    {got.Pricing.RetailerPrice, 3285.75},
		"origin":      {got.TotalOriginCost, 1400},
		"duty":        {got.ExportDuty, 80.5},
		"logistics":   {got.TotalLogisticsCost, 500},
	}
	for name, pair := range want {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Fatalf("%s: expected %v, got %v", name, pair[1], pair[0])
		}
	}

	if got.Formatted.RetailerPrice != "$3,285.75" {
		t.Fatalf("unexpected formatted retailer price %q", got.Formatted.RetailerPrice)
	}
	if got.Formatted.ProcurementCost != "$1,690.50" {
		t.Fatalf("unexpected formatted procurement cost %q", got.Formatted.ProcurementCost)
	}
}

func TestPricingCalculateStrictRejectsOutOfRangeMargin(t *testing.T) {
	h := newTestServer(t, true)

	line := riceLine()
	line["margin"] = 150

	rec := doRequest(t, h, http.MethodPost, "/pricing/calculate", line, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPricingCalculateRejectsMalformedJSON(t *testing.T) {
	h := newTestServer(t, false)

	rec := doRequest(t, h, http.MethodPost, "/pricing/calculate", "{not json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPricingQuickAppliesGlobalMargin(t *testing.T) {
	h := newTestServer(t, false)

	body := map[string]any{
		"globalMargin": 10,
		"items": []map[string]any{
			{"id": "a", "containerNumber": "C-1", "pricePerUnit": 100, "margin": 50, "useGlobalMargin": true},
			{"id": "b", "containerNumber": "C-2", "pricePerUnit": 200, "margin": 50},
		},
	}
	rec := doRequest(t, h, http.MethodPost, "/pricing/quick", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got quickResponse
	decodeBody(t, rec, &got)

	if len(got.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", got.Lines)
	}
	if math.Abs(got.Lines[0].InvoicePrice-110) > 1e-9 || math.Abs(got.Lines[1].InvoicePrice-300) > 1e-9 {
		t.Fatalf("unexpected invoice prices: %+v", got.Lines)
	}
	if got.FormattedTotal != "$410.00" {
		t.Fatalf("unexpected formatted total %q", got.FormattedTotal)
	}
}

func TestPricingRoutesRejectOverflowingInputs(t *testing.T) {
	h := newTestServer(t, false)

	line := riceLine()
	line["originCost"].(map[string]any)["rawMaterialCost"] = 1.7e308

	rec := doRequest(t, h, http.MethodPost, "/pricing/calculate", line, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("calculate: expected 400, got %d: %q", rec.Code, rec.Body.String())
	}
	var body errorResponse
	decodeBody(t, rec, &body)
	if body.Error == "" {
		t.Fatalf("calculate: expected an error message")
	}

	quick := map[string]any{
		"globalMargin": 100,
		"items": []map[string]any{
			{"id": "a", "pricePerUnit": 1.7e308, "useGlobalMargin": true},
		},
	}
	rec = doRequest(t, h, http.MethodPost, "/pricing/quick", quick, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("quick: expected 400, got %d: %q", rec.Code, rec.Body.String())
	}
}

func TestWriteJSONReportsEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body errorResponse
	decodeBody(t, rec, &body)
	if body.Error != "internal error" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
