package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/http"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/dataset"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/observability"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/pipeline"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/render"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/search"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func record(category, brand, county string, bottles int64, lat, lon float64) domain.SalesRecord {
	return domain.SalesRecord{
		Category:    category,
		Brand:       brand,
		County:      county,
		BottlesSold: bottles,
		SaleDollars: decimal.NewFromInt(bottles * 12),
		StoreName:   county + " Spirits",
		Geo:         domain.Geo{Lat: lat, Lon: lon},
		Located:     true,
	}
}

func county(name string, x, y float64) domain.CountyGeometry {
	ring := orb.Ring{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}
	return domain.CountyGeometry{Name: name, Boundary: orb.MultiPolygon{{ring}}}
}

type testEnv struct {
	server  *httpadapter.Server
	mapPath string
}

func newTestEnv(t *testing.T, readyErr error) testEnv {
	t.Helper()

	ds := dataset.New(
		[]domain.SalesRecord{
			record("Vodka", "Tito's Handmade", "Polk", 1200, 41.6, -93.6),
			record("Vodka", "Tito's Handmade", "Linn", 300, 42.0, -91.7),
			record("Vodka", "Absolut", "Scott", 50, 41.5, -90.5),
			record("Gin", "Tanqueray", "Story", 20, 42.0, -93.6),
		},
		[]domain.CountyGeometry{
			county("Polk", -94, 41),
			county("Linn", -92, 42),
			county("Scott", -91, 41),
		},
	)

	index, err := search.NewBrandIndex(ds, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	mapPath := filepath.Join(t.TempDir(), "store_map.html")
	storeMap := render.NewStoreMapWriter(mapPath, render.DefaultZoom)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC))
	dash := pipeline.New(ds, clock, 10, storeMap, nil, slog.Default(), observability.NewMetricsForTesting())

	srv := httpadapter.NewServer(":0", []string{"*"}, httpadapter.Deps{
		Dashboard: dash,
		Brands:    index,
		StoreMap:  storeMap,
		Ready:     &mockReadiness{err: readyErr},
	}, slog.Default())
	return testEnv{server: srv, mapPath: mapPath}
}

func (e testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeValidation(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	return body.Fields
}

func TestHealthzReturns200(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := newTestEnv(t, fmt.Errorf("dataset not loaded")).get(t, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndex_DefaultsToFirstSelection(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Vodka" selected>Vodka</option>`)
	assert.Contains(t, body, "Top 10 Counties for Tito&#39;s Handmade")
	assert.Contains(t, body, "1,200")
	assert.Contains(t, body, "/choropleth.png?brand=Tito%27s+Handmade&amp;category=Vodka")
	assert.Contains(t, body, "/store_map.html")
}

func TestIndex_UnknownSelectionFallsBack(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.get(t, "/?category=Gin&brand=Absolut")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Gin" selected>Gin</option>`)
	assert.Contains(t, body, `<option value="Tanqueray" selected>Tanqueray</option>`)
	assert.Contains(t, body, "<td>Story</td>")
}

func TestIndex_ExportsStoreMap(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusNotFound, env.get(t, "/store_map.html").Code)

	require.Equal(t, http.StatusOK, env.get(t, "/?category=Vodka&brand=Absolut").Code)

	rec := env.get(t, "/store_map.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "L.circleMarker")
	assert.Contains(t, rec.Body.String(), "Scott Spirits")
}

func TestStoreMap_NotExportedYet(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/store_map.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPICategories(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"Vodka", "Gin"}, got)
}

func TestAPIBrands(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/api/brands?category=Vodka")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"Tito's Handmade", "Absolut"}, got)

	rec = env.get(t, "/api/brands?category=Rum")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAPIBrands_MissingCategory(t *testing.T) {
	fields := decodeValidation(t, newTestEnv(t, nil).get(t, "/api/brands"))
	assert.Equal(t, "is required", fields["category"])
}

func TestAPIBrandSearch(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/api/brands/search?category=Vodka&q=tit")
	require.Equal(t, http.StatusOK, rec.Code)

	var hits []search.BrandHit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, "Tito's Handmade", hits[0].Brand)
}

func TestAPIBrandSearch_InvalidLimit(t *testing.T) {
	env := newTestEnv(t, nil)

	fields := decodeValidation(t, env.get(t, "/api/brands/search?category=Vodka&limit=abc"))
	assert.Equal(t, "must be an integer", fields["limit"])

	fields = decodeValidation(t, env.get(t, "/api/brands/search?category=Vodka&limit=500"))
	assert.Equal(t, "must be less than or equal to 100", fields["limit"])
}

func TestAPISelection(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/api/selection?category=Vodka&brand=Tito%27s+Handmade")
	require.Equal(t, http.StatusOK, rec.Code)

	var view domain.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, []domain.CountyTotal{
		{County: "Polk", BottlesSold: 1200},
		{County: "Linn", BottlesSold: 300},
	}, view.TopCounties)
	assert.Len(t, view.Markers, 2)
	assert.NotContains(t, rec.Body.String(), "Boundary")
}

func TestAPISelection_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	fields := decodeValidation(t, env.get(t, "/api/selection?category=Vodka"))
	assert.Equal(t, "is required", fields["brand"])

	long := strings.Repeat("x", 201)
	fields = decodeValidation(t, env.get(t, "/api/selection?brand=Absolut&category="+long))
	assert.Equal(t, "must not exceed 200 characters", fields["category"])
}

func TestChoroplethPNG(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/choropleth.png?category=Vodka&brand=Absolut")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestSelectionWorkbook(t *testing.T) {
	rec := newTestEnv(t, nil).get(t, "/api/selection.xlsx?category=Vodka&brand=Tito%27s+Handmade")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "top_counties.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(render.TopCountiesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Polk", "1200"}, rows[1])
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("Origin", "https://example.com")

	env.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
