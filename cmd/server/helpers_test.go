package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/grainexport/internal/catalog"
	"github.com/Simplici0/grainexport/internal/db"
	"github.com/Simplici0/grainexport/internal/estimate"
	"github.com/Simplici0/grainexport/internal/migrations"
	"github.com/Simplici0/grainexport/internal/seed"
	"github.com/Simplici0/grainexport/internal/settings"
)

func newTestServer(t *testing.T, strict bool) http.Handler {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if _, err := seed.Run(ctx, database, seed.Config{ExportDutyPercent: 5}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	products := catalog.NewRepository(database)
	settingsRepo := settings.NewRepository(database)
	srv := &server{
		log:       zap.NewNop(),
		estimates: estimate.NewService(estimate.NewSQLStore(database), products, settingsRepo, zap.NewNop(), strict),
		products:  products,
		settings:  settingsRepo,
	}
	return srv.routes()
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func riceLine() map[string]any {
	return map[string]any{
		"productId": "basmati-rice",
		"originCost": map[string]any{
			"rawMaterialCost":      1000,
			"transportCost":        200,
			"packingCost":          100,
			"fumigationCost":       50,
			"customsClearanceCost": 50,
			"exportDuty":           999,
		},
		"logisticsCost": map[string]any{
			"freightCost":            300,
			"importDuty":             100,
			"customsClearance":       50,
			"transportToDestination": 50,
		},
		"margin":            15,
		"distributorMargin": 20,
		"retailerMargin":    25,
	}
}
