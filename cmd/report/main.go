// Command report renders the dashboard artifacts of one selection to a
// directory instead of serving them: the store map, the choropleth, and the
// ranking as a spreadsheet. The ranking is also printed to stdout.
//
// Usage:
//
//	go run ./cmd/report \
//	  -category "Canadian Whiskies" \
//	  -brand "Black Velvet" \
//	  -out-dir out/
//
// Inputs and enrichments are configured through the same environment
// variables as the dashboard service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	kafkaadapter "github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/config"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/dataset"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/observability"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/pipeline"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/render"
)

// Artifact file names written into -out-dir.
const (
	storeMapFile   = "store_map.html"
	choroplethFile = "choropleth.png"
	workbookFile   = "top_counties.xlsx"
)

func main() {
	category := flag.String("category", "", "alcohol category (category_name)")
	brand := flag.String("brand", "", "brand within the category (item_description)")
	outDir := flag.String("out-dir", ".", "directory for the rendered artifacts")
	flag.Parse()

	if *category == "" || *brand == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *category, *brand, *outDir, os.Stdout); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, category, brand, outDir string, stdout io.Writer) error {
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRateLimit, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
	}

	ds, err := dataset.NewStoreFromConfig(cfg, geocoder, logger, metrics).Load(ctx)
	if err != nil {
		return err
	}
	if !ds.HasCategory(category) {
		return fmt.Errorf("unknown category %q", category)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var publisher pipeline.ReportPublisher
	if cfg.KafkaEnabled() {
		p := kafkaadapter.NewPublisher(cfg, logger)
		defer p.Close()
		publisher = p
	}

	storeMap := render.NewStoreMapWriter(filepath.Join(outDir, storeMapFile), cfg.MapZoom)
	dash := pipeline.New(ds, clockwork.NewRealClock(), cfg.TopN, storeMap, publisher, logger, metrics)

	view, err := dash.Select(ctx, category, brand)
	if err != nil {
		return err
	}

	if err := writeFile(filepath.Join(outDir, choroplethFile), func(w io.Writer) error {
		return render.WriteChoroplethPNG(w, view.Brand, dash.TopN(), view.Choropleth)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(outDir, workbookFile), func(w io.Writer) error {
		return render.WriteWorkbook(w, view)
	}); err != nil {
		return err
	}

	return printRanking(stdout, view, dash.TopN())
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printRanking(w io.Writer, view domain.View, topN int) error {
	fmt.Fprintf(w, "Top %d Counties for %s (%s)\n\n", topN, view.Brand, view.Category)
	if len(view.TopCounties) == 0 {
		_, err := fmt.Fprintln(w, "No sales for this selection.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Rank\tCounty\tBottles Sold\t")
	for i, t := range view.TopCounties {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", i+1, t.County, render.FormatCount(t.BottlesSold))
	}
	return tw.Flush()
}
