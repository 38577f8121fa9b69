package domain

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
)

// Location sources recorded on SalesRecord.LocationSource.
const (
	LocationOriginal = "original"
	LocationForward  = "forward"
	LocationFailed   = "failed"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SalesRecord is one row of the sales dataset. Records are immutable once loaded.
type SalesRecord struct {
	Category    string          `json:"category_name"`
	Brand       string          `json:"item_description"`
	County      string          `json:"county"`
	BottlesSold int64           `json:"bottles_sold"`
	SaleDollars decimal.Decimal `json:"sale_dollars"`
	StoreName   string          `json:"store_name"`
	Geo         Geo             `json:"geo"`
	Located     bool            `json:"located"` // false when the source row had no coordinates

	// Only used to build geocoding queries.
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`

	LocationSource string `json:"location_source,omitempty"` // "original", "forward", "failed"
}

// CountyGeometry is a county boundary keyed by its NAME attribute.
// Coordinates are lon/lat.
type CountyGeometry struct {
	Name     string           `json:"name"`
	Boundary orb.MultiPolygon `json:"-"`
}

// CountyTotal is the summed bottle count of one county for a selection.
type CountyTotal struct {
	County      string `json:"county"`
	BottlesSold int64  `json:"bottles_sold"`
}

// CountyShape is a county boundary joined with its selection total.
type CountyShape struct {
	Geometry    CountyGeometry `json:"geometry"`
	BottlesSold int64          `json:"bottles_sold"`
}

// StoreMarker is one point on the store map.
type StoreMarker struct {
	StoreName   string          `json:"store_name"`
	County      string          `json:"county"`
	SaleDollars decimal.Decimal `json:"sale_dollars"`
	Lat         float64         `json:"latitude"`
	Lon         float64         `json:"longitude"`
	Popup       string          `json:"popup"`
}

// View holds the three display artifacts for one (category, brand) selection.
type View struct {
	Category    string        `json:"category"`
	Brand       string        `json:"brand"`
	TopCounties []CountyTotal `json:"top_counties"`
	Choropleth  []CountyShape `json:"choropleth"`
	Markers     []StoreMarker `json:"markers"`
	MapCenter   Geo           `json:"map_center"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// SelectionReport summarizes a selection for downstream consumers.
type SelectionReport struct {
	ID                string        `json:"id"`
	Category          string        `json:"category"`
	Brand             string        `json:"brand"`
	GeneratedAt       time.Time     `json:"generated_at"`
	TopCounties       []CountyTotal `json:"top_counties"`
	MarkerCount       int           `json:"marker_count"`
	UnmatchedCounties []string      `json:"unmatched_counties,omitempty"`
}
