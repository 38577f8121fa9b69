package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Sales source kinds.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SalesPath    string
	SalesSource  string
	SalesTable   string
	CountyPath   string
	StoreMapPath string
	TopN         int
	MapZoom      int

	HTTPAddr           string
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxRateLimit float64
	GeocodeState    string

	ResolveMissingCounty bool

	// Selection report stream; disabled when KafkaBrokers is empty.
	KafkaBrokers     []string
	KafkaReportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	topN, err := parsePositiveInt("TOP_N", 10, 100)
	if err != nil {
		return nil, err
	}
	mapZoom, err := parsePositiveInt("MAP_ZOOM", 7, 18)
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MAPBOX_RATE_LIMIT", "10"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid MAPBOX_RATE_LIMIT")
	}

	resolveCounty, err := parseBool("RESOLVE_MISSING_COUNTY", false)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	salesPath := sharedcfg.EnvOrDefault("SALES_PATH", "data_2021_to_2024.csv")

	cfg := &Config{
		SalesPath:    salesPath,
		SalesSource:  sharedcfg.EnvOrDefault("SALES_SOURCE", InferSalesSource(salesPath)),
		SalesTable:   sharedcfg.EnvOrDefault("SALES_TABLE", "sales"),
		CountyPath:   sharedcfg.EnvOrDefault("COUNTY_PATH", "iowa_counties.shp"),
		StoreMapPath: sharedcfg.EnvOrDefault("STORE_MAP_PATH", "store_map.html"),
		TopN:         topN,
		MapZoom:      mapZoom,

		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		MapboxRateLimit: rateLimit,
		GeocodeState:    sharedcfg.EnvOrDefault("GEOCODE_STATE", "IA"),

		ResolveMissingCounty: resolveCounty,

		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "liquor-selection-reports"),
	}

	if cfg.SalesPath == "" {
		return nil, errors.New("SALES_PATH is required")
	}
	if cfg.CountyPath == "" {
		return nil, errors.New("COUNTY_PATH is required")
	}
	if cfg.StoreMapPath == "" {
		return nil, errors.New("STORE_MAP_PATH is required")
	}
	if cfg.SalesSource != SourceCSV && cfg.SalesSource != SourceSQLite {
		return nil, fmt.Errorf("invalid SALES_SOURCE %q: want %q or %q", cfg.SalesSource, SourceCSV, SourceSQLite)
	}
	if !identifierRe.MatchString(cfg.SalesTable) {
		return nil, fmt.Errorf("invalid SALES_TABLE %q", cfg.SalesTable)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether selection reports should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// InferSalesSource picks the sales source kind from a file extension:
// .db, .sqlite and .sqlite3 are SQLite, anything else CSV.
func InferSalesSource(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceSQLite
	default:
		return SourceCSV
	}
}

func parsePositiveInt(name string, def, upper int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > upper {
		return 0, fmt.Errorf("invalid %s: must be an integer between 1 and %d", name, upper)
	}
	return n, nil
}

func parseBool(name string, def bool) (bool, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
