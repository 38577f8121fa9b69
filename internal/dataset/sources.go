package dataset

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/countygeojson"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/countyshp"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/salescsv"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/salesdb"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/config"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/observability"
)

// NewSalesSource picks the sales reader for the configured SALES_SOURCE.
func NewSalesSource(cfg *config.Config, logger *slog.Logger) SalesSource {
	if cfg.SalesSource == config.SourceSQLite {
		return salesdb.NewReader(cfg.SalesPath, cfg.SalesTable, logger)
	}
	return salescsv.NewReader(cfg.SalesPath, logger)
}

// NewCountySource picks the geometry reader from the file extension:
// .geojson and .json are GeoJSON, anything else a shapefile.
func NewCountySource(path string, logger *slog.Logger) CountySource {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return countygeojson.NewReader(path, logger)
	default:
		return countyshp.NewReader(path, logger)
	}
}

// NewStoreFromConfig wires the configured sources and enrichments into a Store.
// A nil geocoder disables geocoding.
func NewStoreFromConfig(cfg *config.Config, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return NewStore(
		NewSalesSource(cfg, logger),
		NewCountySource(cfg.CountyPath, logger),
		Options{
			Geocoder:             geocoder,
			GeocodeState:         cfg.GeocodeState,
			ResolveMissingCounty: cfg.ResolveMissingCounty,
		},
		logger,
		metrics,
	)
}
