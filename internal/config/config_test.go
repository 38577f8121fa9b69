package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data_2021_to_2024.csv", cfg.SalesPath)
	assert.Equal(t, SourceCSV, cfg.SalesSource)
	assert.Equal(t, "sales", cfg.SalesTable)
	assert.Equal(t, "iowa_counties.shp", cfg.CountyPath)
	assert.Equal(t, "store_map.html", cfg.StoreMapPath)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 7, cfg.MapZoom)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.InDelta(t, 10.0, cfg.MapboxRateLimit, 0.0001)
	assert.Equal(t, "IA", cfg.GeocodeState)
	assert.False(t, cfg.ResolveMissingCounty)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "liquor-selection-reports", cfg.KafkaReportTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SALES_PATH", "/data/sales.csv")
	t.Setenv("SALES_TABLE", "invoices")
	t.Setenv("COUNTY_PATH", "/data/counties.geojson")
	t.Setenv("STORE_MAP_PATH", "/tmp/map.html")
	t.Setenv("TOP_N", "5")
	t.Setenv("MAP_ZOOM", "9")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("MAPBOX_RATE_LIMIT", "2.5")
	t.Setenv("GEOCODE_STATE", "NE")
	t.Setenv("RESOLVE_MISSING_COUNTY", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REPORT_TOPIC", "reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/sales.csv", cfg.SalesPath)
	assert.Equal(t, "invoices", cfg.SalesTable)
	assert.Equal(t, "/data/counties.geojson", cfg.CountyPath)
	assert.Equal(t, "/tmp/map.html", cfg.StoreMapPath)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 9, cfg.MapZoom)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.InDelta(t, 2.5, cfg.MapboxRateLimit, 0.0001)
	assert.Equal(t, "NE", cfg.GeocodeState)
	assert.True(t, cfg.ResolveMissingCounty)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "reports", cfg.KafkaReportTopic)
}

func TestLoad_SalesSourceInferredFromExtension(t *testing.T) {
	t.Setenv("SALES_PATH", "iowa_liquor.sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceSQLite, cfg.SalesSource)
}

func TestLoad_ExplicitSalesSourceWins(t *testing.T) {
	t.Setenv("SALES_PATH", "iowa_liquor.db")
	t.Setenv("SALES_SOURCE", "csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, cfg.SalesSource)
}

func TestLoad_InvalidSalesSource(t *testing.T) {
	t.Setenv("SALES_SOURCE", "parquet")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SALES_SOURCE")
}

func TestLoad_InvalidSalesTable(t *testing.T) {
	t.Setenv("SALES_TABLE", "sales; DROP TABLE sales")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SALES_TABLE")
}

func TestLoad_InvalidTopN(t *testing.T) {
	for _, v := range []string{"0", "101", "ten"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TOP_N", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "TOP_N")
		})
	}
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidMapboxTimeout(t *testing.T) {
	t.Setenv("MAPBOX_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TIMEOUT")
}

func TestLoad_InvalidMapboxRateLimit(t *testing.T) {
	t.Setenv("MAPBOX_RATE_LIMIT", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_RATE_LIMIT")
}

func TestLoad_InvalidResolveMissingCounty(t *testing.T) {
	t.Setenv("RESOLVE_MISSING_COUNTY", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESOLVE_MISSING_COUNTY")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestInferSalesSource(t *testing.T) {
	assert.Equal(t, SourceSQLite, InferSalesSource("sales.SQLite"))
	assert.Equal(t, SourceSQLite, InferSalesSource("/data/iowa.db"))
	assert.Equal(t, SourceSQLite, InferSalesSource("iowa.sqlite3"))
	assert.Equal(t, SourceCSV, InferSalesSource("sales.csv"))
	assert.Equal(t, SourceCSV, InferSalesSource("sales"))
}
