package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/grainexport/internal/estimate"
	"github.com/Simplici0/grainexport/internal/pricing"
)

type estimateListItem struct {
	ID                 string        `json:"id"`
	ContainerID        string        `json:"containerId"`
	Date               time.Time     `json:"date"`
	ProductCount       int           `json:"productCount"`
	TotalCost          float64       `json:"totalCost"`
	FormattedTotalCost string        `json:"formattedTotalCost"`
	MarginApplied      float64       `json:"marginApplied"`
	CreatedBy          string        `json:"createdBy"`
	Role               estimate.Role `json:"role"`
	Version            int64         `json:"version"`
}

func etag(version int64) string {
	return strconv.Quote(strconv.FormatInt(version, 10))
}

// parseIfMatch accepts `"3"`, `W/"3"` and a bare `3`.
func parseIfMatch(raw string) (int64, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	version, err := strconv.ParseInt(v, 10, 64)
	if err != nil || version <= 0 {
		return 0, fmt.Errorf("If-Match must be a positive estimate version, got %q", raw)
	}
	return version, nil
}

func (s *server) handleEstimatesList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, err := estimate.ParseListParams(strings.TrimSpace(q.Get("q")), q.Get("sort"), q.Get("order"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	estimates, err := s.estimates.List(r.Context(), params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	items := make([]estimateListItem, 0, len(estimates))
	for _, e := range estimates {
		items = append(items, estimateListItem{
			ID:                 e.ID,
			ContainerID:        e.ContainerID,
			Date:               e.Date,
			ProductCount:       len(e.Products),
			TotalCost:          e.TotalCost,
			FormattedTotalCost: pricing.FormatCurrency(e.TotalCost),
			MarginApplied:      e.MarginApplied,
			CreatedBy:          e.CreatedBy,
			Role:               e.Role,
			Version:            e.Version,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleEstimateCreate(w http.ResponseWriter, r *http.Request) {
	var in estimate.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.estimates.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(created.Version))
	w.Header().Set("Location", "/estimates/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleEstimateDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.estimates.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(detail.Version))
	writeJSON(w, http.StatusOK, detail)
}

func (s *server) handleEstimateText(w http.ResponseWriter, r *http.Request) {
	detail, err := s.estimates.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(renderEstimateText(detail)))
}

func renderEstimateText(d estimate.Detail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Estimate %s\n", d.ContainerID)
	fmt.Fprintf(&b, "Date: %s\n", d.Date.Format("Jan 2, 2006 15:04 MST"))
	fmt.Fprintf(&b, "Created by: %s (%s)\n", d.CreatedBy, d.Role)
	fmt.Fprintf(&b, "Version: %d\n", d.Version)

	b.WriteString("\nProducts:\n")
	for _, line := range d.Lines {
		p := line.Breakdown.Pricing
		fmt.Fprintf(&b, "- %s (%s)\n", line.Product.Name, line.Product.Category)
		fmt.Fprintf(&b, "  Origin cost: %s\n", pricing.FormatCurrency(line.Breakdown.TotalOriginCost))
		fmt.Fprintf(&b, "  Export duty: %s\n", pricing.FormatCurrency(line.Breakdown.ExportDuty))
		fmt.Fprintf(&b, "  Logistics cost: %s\n", pricing.FormatCurrency(line.Breakdown.TotalLogisticsCost))
		fmt.Fprintf(&b, "  Procurement cost: %s\n", pricing.FormatCurrency(p.ProcurementCost))
		fmt.Fprintf(&b, "  Importer cost: %s\n", pricing.FormatCurrency(p.ImporterCost))
		fmt.Fprintf(&b, "  Distributor price: %s\n", pricing.FormatCurrency(p.DistributorPrice))
		fmt.Fprintf(&b, "  Retailer price: %s\n", pricing.FormatCurrency(p.RetailerPrice))
	}
	if len(d.MissingProducts) > 0 {
		fmt.Fprintf(&b, "Missing from catalog: %s\n", strings.Join(d.MissingProducts, ", "))
	}

	fmt.Fprintf(&b, "\nTotal cost: %s\n", pricing.FormatCurrency(d.TotalCost))
	fmt.Fprintf(&b, "Average margin: %.2f%%\n", d.MarginApplied)
	fmt.Fprintf(&b, "Export duty rate: %.2f%%\n", d.ExportDutyPercent)

	return b.String()
}

func (s *server) handleEstimateReplace(w http.ResponseWriter, r *http.Request) {
	ifMatch := r.Header.Get("If-Match")
	if ifMatch == "" {
		writeError(w, http.StatusPreconditionRequired, "If-Match header with the estimate version is required")
		return
	}
	version, err := parseIfMatch(ifMatch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in estimate.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	replaced, err := s.estimates.Replace(r.Context(), chi.URLParam(r, "id"), version, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(replaced.Version))
	writeJSON(w, http.StatusOK, replaced)
}

func (s *server) handleEstimateDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.estimates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
