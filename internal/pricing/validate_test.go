package pricing

import (
	"strings"
	"testing"
)

func TestValidate_AcceptsInRangeValues(t *testing.T) {
	if err := Validate(scenarioEstimate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(ProductEstimate{Margin: 100, DistributorMargin: 0}); err != nil {
		t.Fatalf("unexpected error at bounds: %v", err)
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	pe := scenarioEstimate()
	pe.OriginCost.PackingCost = -1
	pe.LogisticsCost.FreightCost = -20
	pe.Margin = -5
	pe.RetailerMargin = 150

	err := Validate(pe)
	if err == nil {
		t.Fatalf("expected validation error")
	}

	msg := err.Error()
	for _, expected := range []string{"packingCost", "freightCost", "margin must be between", "retailerMargin"} {
		if !strings.Contains(msg, expected) {
			t.Fatalf("expected error to mention %q, got: %s", expected, msg)
		}
	}
	if strings.Contains(msg, "distributorMargin") {
		t.Fatalf("distributorMargin is in range but was reported: %s", msg)
	}
}
