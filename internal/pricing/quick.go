package pricing

// QuickItem is one row of a quick estimate: a unit price and its own margin.
type QuickItem struct {
	ID              string  `json:"id"`
	ContainerNumber string  `json:"containerNumber"`
	PricePerUnit    float64 `json:"pricePerUnit"`
	Margin          float64 `json:"margin"`
	UseGlobalMargin bool    `json:"useGlobalMargin"`
}

// QuickLine is a QuickItem with its computed invoice price.
type QuickLine struct {
	QuickItem
	EffectiveMargin float64 `json:"effectiveMargin"`
	InvoicePrice    float64 `json:"invoicePrice"`
}

// QuickResult is the output of QuickEstimate.
type QuickResult struct {
	Lines             []QuickLine `json:"lines"`
	TotalInvoiceValue float64     `json:"totalInvoiceValue"`
}

// Finite reports whether the total and every line price are finite numbers.
func (r QuickResult) Finite() bool {
	if !allFinite(r.TotalInvoiceValue) {
		return false
	}
	for _, line := range r.Lines {
		if !allFinite(line.InvoicePrice) {
			return false
		}
	}
	return true
}

// InvoicePrice applies a percentage margin to a unit price.
func InvoicePrice(pricePerUnit, margin float64) float64 {
	return pricePerUnit * (1.0 + margin/100.0)
}

// QuickEstimate prices every item, using globalMargin for items flagged UseGlobalMargin.
func QuickEstimate(items []QuickItem, globalMargin float64) QuickResult {
	result := QuickResult{Lines: make([]QuickLine, 0, len(items))}
	for _, item := range items {
		margin := item.Margin
		if item.UseGlobalMargin {
			margin = globalMargin
		}
		line := QuickLine{
			QuickItem:       item,
			EffectiveMargin: margin,
			InvoicePrice:    InvoicePrice(item.PricePerUnit, margin),
		}
		result.Lines = append(result.Lines, line)
		result.TotalInvoiceValue += line.InvoicePrice
	}
	return result
}
