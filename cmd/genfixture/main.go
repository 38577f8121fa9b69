// Command genfixture generates a reproducible synthetic liquor sales dataset
// and matching county boundaries for local runs and load tests. The output
// format follows the file extension: .csv or .db/.sqlite/.sqlite3 for sales,
// .shp or .geojson for counties.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -rows 50000 \
//	  -seed 42 \
//	  -sales-out data/generated/sales.db \
//	  -counties-out data/generated/counties.shp
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/countygeojson"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/countyshp"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/salescsv"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/adapter/salesdb"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/couchcryptid/liquor-sales-dashboard/internal/render"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
)

// countyCell is one synthetic county: a lon/lat rectangle on a grid over Iowa.
type countyCell struct {
	name   string
	bounds orb.Bound
	cities []string
}

var countyNames = []string{
	"Polk", "Linn", "Scott", "Johnson", "Black Hawk", "Woodbury",
	"Story", "Dubuque", "Pottawattamie", "Dallas", "Warren", "Clinton",
}

var catalog = map[string][]string{
	"Canadian Whiskies": {"Black Velvet", "Crown Royal", "Canadian Mist", "Seagrams VO"},
	"American Vodkas":   {"Tito's Handmade Vodka", "Hawkeye Vodka", "Five O'Clock Vodka", "Smirnoff 80prf"},
	"Straight Bourbon":  {"Jim Beam", "Maker's Mark", "Buffalo Trace", "Evan Williams Black"},
	"Spiced Rum":        {"Captain Morgan Spiced Rum", "Sailor Jerry Spiced", "Kraken Black Spiced"},
	"Imported Tequilas": {"Jose Cuervo Especial Gold", "Patron Silver", "Casamigos Blanco"},
	"American Dry Gins": {"Gordons Dry Gin", "Tanqueray Gin", "Bombay Sapphire"},
	"Cream Liqueurs":    {"Baileys Original Irish Cream", "Rumchata"},
	"Flavored Rum":      {"Malibu Coconut Rum", "Bacardi Limon"},
	"Blended Whiskies":  {"Seagrams 7 Crown", "Kessler Blend"},
	"Imported Schnapps": {"Dr. McGillicuddys Cherry", "Rumple Minze"},
}

type options struct {
	rows          int
	seed          uint64
	stores        int
	missingCoords float64
	missingCounty float64
	salesOut      string
	salesTable    string
	countiesOut   string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.IntVar(&opts.rows, "rows", 10000, "number of sales rows to generate")
	flag.Uint64Var(&opts.seed, "seed", 42, "random seed; the same seed yields the same dataset")
	flag.IntVar(&opts.stores, "stores", 200, "number of distinct stores")
	flag.Float64Var(&opts.missingCoords, "missing-coords", 0.05, "fraction of stores without coordinates")
	flag.Float64Var(&opts.missingCounty, "missing-county", 0.02, "fraction of stores without a county")
	flag.StringVar(&opts.salesOut, "sales-out", "", "output path for sales (.csv, .db, .sqlite, .sqlite3)")
	flag.StringVar(&opts.salesTable, "sales-table", "sales", "table name for SQLite output")
	flag.StringVar(&opts.countiesOut, "counties-out", "", "output path for counties (.shp, .geojson, .json)")
	flag.Parse()

	if opts.salesOut == "" || opts.countiesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -sales-out, -counties-out")
	}
	if opts.rows < 1 || opts.stores < 1 {
		return fmt.Errorf("-rows and -stores must be positive")
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	cells := countyGrid()
	records := generateSales(rng, cells, opts)

	if err := writeSales(opts.salesOut, opts.salesTable, records); err != nil {
		return fmt.Errorf("write sales: %w", err)
	}
	log.Printf("sales: %d records -> %s", len(records), opts.salesOut)

	counties := gridGeometries(cells)
	if err := writeCounties(opts.countiesOut, counties); err != nil {
		return fmt.Errorf("write counties: %w", err)
	}
	log.Printf("counties: %d boundaries -> %s", len(counties), opts.countiesOut)

	printStats(records)
	return nil
}

// countyGrid lays the counties out as a 4x3 grid of rectangles spanning Iowa.
func countyGrid() []countyCell {
	const (
		minLon, maxLon = -96.6, -90.1
		minLat, maxLat = 40.4, 43.5
		cols, rows     = 4, 3
	)
	w := (maxLon - minLon) / cols
	h := (maxLat - minLat) / rows

	cells := make([]countyCell, 0, len(countyNames))
	for i, name := range countyNames {
		col, row := i%cols, i/cols
		lon := minLon + float64(col)*w
		lat := minLat + float64(row)*h
		cells = append(cells, countyCell{
			name:   name,
			bounds: orb.Bound{Min: orb.Point{lon, lat}, Max: orb.Point{lon + w, lat + h}},
			cities: []string{name + " City", "North " + name, "West " + name},
		})
	}
	return cells
}

func gridGeometries(cells []countyCell) []domain.CountyGeometry {
	counties := make([]domain.CountyGeometry, len(cells))
	for i, c := range cells {
		counties[i] = domain.CountyGeometry{
			Name:     c.name,
			Boundary: orb.MultiPolygon{{c.bounds.ToRing()}},
		}
	}
	return counties
}

type store struct {
	name    string
	address string
	city    string
	county  string
	geo     domain.Geo
	located bool
}

func generateSales(rng *rand.Rand, cells []countyCell, opts options) []domain.SalesRecord {
	stores := make([]store, opts.stores)
	for i := range stores {
		// Weight toward the first counties so rankings are not flat.
		cell := cells[min(int(rng.ExpFloat64()*3), len(cells)-1)]
		s := store{
			name:    fmt.Sprintf("Store #%04d", i+1),
			address: fmt.Sprintf("%d Main St", 100+rng.IntN(9000)),
			city:    cell.cities[rng.IntN(len(cell.cities))],
			county:  cell.name,
		}
		if rng.Float64() >= opts.missingCoords {
			s.geo = domain.Geo{
				Lat: cell.bounds.Min.Lat() + rng.Float64()*(cell.bounds.Max.Lat()-cell.bounds.Min.Lat()),
				Lon: cell.bounds.Min.Lon() + rng.Float64()*(cell.bounds.Max.Lon()-cell.bounds.Min.Lon()),
			}
			s.located = true
		}
		if rng.Float64() < opts.missingCounty {
			s.county = ""
		}
		stores[i] = s
	}

	categories := make([]string, 0, len(catalog))
	for c := range catalog {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	records := make([]domain.SalesRecord, 0, opts.rows)
	for range opts.rows {
		s := stores[rng.IntN(len(stores))]
		category := categories[rng.IntN(len(categories))]
		brands := catalog[category]
		bottles := int64(1 + rng.IntN(48))
		price := decimal.NewFromInt(int64(800 + rng.IntN(4000))).Shift(-2)

		records = append(records, domain.SalesRecord{
			Category:    category,
			Brand:       brands[rng.IntN(len(brands))],
			County:      s.county,
			BottlesSold: bottles,
			SaleDollars: price.Mul(decimal.NewFromInt(bottles)),
			StoreName:   s.name,
			Address:     s.address,
			City:        s.city,
			Geo:         s.geo,
			Located:     s.located,
		})
	}
	return records
}

func writeSales(path, table string, records []domain.SalesRecord) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return salesdb.WriteSales(context.Background(), path, table, records)
	case ".csv":
		return salescsv.WriteFile(path, records)
	default:
		return fmt.Errorf("unsupported sales format %q", filepath.Ext(path))
	}
}

func writeCounties(path string, counties []domain.CountyGeometry) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return countyshp.WriteCounties(path, counties)
	case ".geojson", ".json":
		return countygeojson.WriteCounties(path, counties)
	default:
		return fmt.Errorf("unsupported county format %q", filepath.Ext(path))
	}
}

func printStats(records []domain.SalesRecord) {
	var unlocated, noCounty int
	bottles := make(map[string]int64)
	for _, r := range records {
		if !r.Located {
			unlocated++
		}
		if r.County == "" {
			noCounty++
		}
		bottles[r.Category] += r.BottlesSold
	}

	log.Printf("categories: %d", len(bottles))
	categories := make([]string, 0, len(bottles))
	for c := range bottles {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return bottles[categories[i]] > bottles[categories[j]] })
	for _, c := range categories {
		log.Printf("  %-32s %s bottles", c, render.FormatCount(bottles[c]))
	}
	log.Printf("unlocated: %d, without county: %d", unlocated, noCounty)
}
