// Command validate audits a sales dataset and its county boundaries before
// they are served: record fields, county coverage, store coordinates against
// county boundaries, and the consistency of every category/brand selection.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -sales data/mock/iowa_sales_sample.csv \
//	  -counties data/mock/iowa_counties_sample.geojson
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/config"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/dataset"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/observability"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/render"
)

// phase tracks pass/fail for a validation phase. Warnings are reported but
// do not fail the phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	salesPath := flag.String("sales", "", "sales dataset (.csv, or .db/.sqlite/.sqlite3)")
	salesTable := flag.String("sales-table", "sales", "table name for SQLite sales datasets")
	countiesPath := flag.String("counties", "", "county boundaries (.shp or .geojson)")
	topN := flag.Int("top-n", domain.DefaultTopN, "ranking length checked per selection")
	flag.Parse()

	if *salesPath == "" || *countiesPath == "" || *topN <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := &config.Config{
		SalesPath:   *salesPath,
		SalesSource: config.InferSalesSource(*salesPath),
		SalesTable:  *salesTable,
	}
	sales := dataset.NewSalesSource(cfg, logger)
	counties := dataset.NewCountySource(*countiesPath, logger)

	if code := run(context.Background(), sales, counties, *topN, logger, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, sales dataset.SalesSource, counties dataset.CountySource, topN int, logger *slog.Logger, out io.Writer) int {
	fmt.Fprintln(out, "=== Liquor Sales Dataset Validation ===")
	fmt.Fprintln(out)

	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	store := dataset.NewStore(sales, counties, dataset.Options{}, logger, metrics)
	ds, err := store.Load(ctx)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load dataset: %v\n", err)
		return 1
	}

	idx := dataset.NewCountyIndex(ds.Counties())
	phases := []*phase{
		validateRecords(ds.Sales()),
		validateCountyCoverage(ds.Sales(), ds.Counties()),
		validateStoreLocations(ds.Sales(), ds.Counties(), idx),
		validateSelections(ds, topN),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		} else if len(p.warnings) > 0 {
			status = fmt.Sprintf("\033[33mPASS (%d warnings)\033[0m", len(p.warnings))
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %s sales rows, %d county boundaries, %d categories\n",
		render.FormatCount(int64(len(ds.Sales()))), len(ds.Counties()), len(ds.Categories()))

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		for _, w := range p.warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Record fields ──

func validateRecords(records []domain.SalesRecord) *phase {
	p := &phase{name: "Sales records"}
	if len(records) == 0 {
		p.errorf("dataset has no sales rows")
		return p
	}
	for i, r := range records {
		if r.Category == "" {
			p.errorf("row %d: empty category_name", i+1)
		}
		if r.Brand == "" {
			p.errorf("row %d: empty item_description", i+1)
		}
		if r.BottlesSold < 0 {
			p.errorf("row %d: negative bottles_sold %d", i+1, r.BottlesSold)
		}
		if r.SaleDollars.IsNegative() {
			p.errorf("row %d: negative sale_dollars %s", i+1, r.SaleDollars.StringFixed(2))
		}
		if r.Located && !validCoordinate(r.Geo) {
			p.errorf("row %d: coordinate (%g, %g) out of range", i+1, r.Geo.Lat, r.Geo.Lon)
		}
	}
	return p
}

func validCoordinate(g domain.Geo) bool {
	return !math.IsNaN(g.Lat) && !math.IsNaN(g.Lon) &&
		g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// ── County coverage ──

func validateCountyCoverage(records []domain.SalesRecord, counties []domain.CountyGeometry) *phase {
	p := &phase{name: "County coverage"}

	geometry := make(map[string]int, len(counties))
	for _, c := range counties {
		if c.Name == "" {
			p.errorf("county boundary with empty NAME")
			continue
		}
		if len(c.Boundary) == 0 {
			p.errorf("county %q has an empty boundary", c.Name)
		}
		geometry[c.Name]++
	}
	for name, n := range geometry {
		if n > 1 {
			p.warnf("county %q has %d boundaries", name, n)
		}
	}

	var noCounty int
	missing := make(map[string]int64)
	var order []string
	for _, r := range records {
		if r.County == "" {
			noCounty++
			continue
		}
		if geometry[r.County] > 0 {
			continue
		}
		if _, seen := missing[r.County]; !seen {
			order = append(order, r.County)
		}
		missing[r.County] += r.BottlesSold
	}
	for _, county := range order {
		p.warnf("county %q has sales (%s bottles) but no boundary; it is left off the choropleth",
			county, render.FormatCount(missing[county]))
	}
	if noCounty > 0 {
		p.warnf("%d rows have no county and are left out of rankings", noCounty)
	}
	return p
}

// ── Store coordinates ──

func validateStoreLocations(records []domain.SalesRecord, counties []domain.CountyGeometry, idx *dataset.CountyIndex) *phase {
	p := &phase{name: "Store locations"}

	known := make(map[string]bool, len(counties))
	for _, c := range counties {
		known[c.Name] = true
	}

	type storeKey struct{ name, county string }
	checked := make(map[storeKey]bool)
	var unlocated int
	for _, r := range records {
		if !r.Located {
			unlocated++
			continue
		}
		if r.County == "" || !known[r.County] {
			continue
		}
		key := storeKey{r.StoreName, r.County}
		if checked[key] {
			continue
		}
		checked[key] = true

		got, ok := idx.Locate(r.Geo)
		switch {
		case !ok:
			p.errorf("store %q at (%g, %g) lies outside every county boundary, expected %q",
				r.StoreName, r.Geo.Lat, r.Geo.Lon, r.County)
		case got != r.County:
			p.errorf("store %q at (%g, %g) lies in %q, expected %q",
				r.StoreName, r.Geo.Lat, r.Geo.Lon, got, r.County)
		}
	}
	if unlocated > 0 {
		p.warnf("%d rows have no coordinates and are left off the store map", unlocated)
	}
	return p
}

// ── Selections ──

func validateSelections(ds *dataset.Dataset, topN int) *phase {
	p := &phase{name: "Selection consistency"}

	var cascaded int
	for _, category := range ds.Categories() {
		byCategory := domain.FilterByCategory(ds.Sales(), category)
		cascaded += len(byCategory)

		var branded int
		for _, brand := range ds.Brands(category) {
			selected := domain.FilterByBrand(byCategory, brand)
			branded += len(selected)
			checkSelection(p, category, brand, selected, ds.Counties(), topN)
		}
		if branded != len(byCategory) {
			p.errorf("%s: brands cover %d of %d rows", category, branded, len(byCategory))
		}
	}
	if cascaded != len(ds.Sales()) {
		p.errorf("categories cover %d of %d rows", cascaded, len(ds.Sales()))
	}
	return p
}

func checkSelection(p *phase, category, brand string, selected []domain.SalesRecord, counties []domain.CountyGeometry, topN int) {
	label := category + " / " + brand
	if len(selected) == 0 {
		p.errorf("%s: listed brand has no rows", label)
		return
	}

	var expected int64
	for _, r := range selected {
		if r.County != "" {
			expected += r.BottlesSold
		}
	}
	all := domain.TopCounties(selected, math.MaxInt)
	var total int64
	for _, t := range all {
		total += t.BottlesSold
	}
	if total != expected {
		p.errorf("%s: county totals sum to %d, rows sum to %d", label, total, expected)
	}

	ranked := domain.TopCounties(selected, topN)
	if len(ranked) > topN {
		p.errorf("%s: ranking has %d entries, limit is %d", label, len(ranked), topN)
	}
	for i, t := range ranked {
		if i >= len(all) || all[i] != t {
			p.errorf("%s: ranking entry %d (%s) is not the %d-th largest county", label, i+1, t.County, i+1)
			break
		}
	}

	inRanking := make(map[string]bool, len(ranked))
	for _, t := range ranked {
		inRanking[t.County] = true
	}
	shapes, _ := domain.JoinCounties(ranked, counties)
	for _, s := range shapes {
		if !inRanking[s.Geometry.Name] {
			p.errorf("%s: choropleth shape %q is not in the ranking", label, s.Geometry.Name)
		}
	}
}
