package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var errNegative = errors.New("negative value")

// NormalizeColumn maps a header cell to its canonical column key:
// "Category Name" and "category-name" both become "category_name".
func NormalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// ParseBottles parses a bottle count. Empty cells count as zero. Some exports
// write whole numbers as "12.0", which is accepted.
func ParseBottles(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("bottles_sold %q: not an integer", s)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("bottles_sold %q: %w", s, errNegative)
	}
	return n, nil
}

// ParseDollars parses a sale amount, tolerating a leading "$" and thousands
// separators. Empty cells count as zero.
func ParseDollars(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sale_dollars %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("sale_dollars %q: %w", s, errNegative)
	}
	return d, nil
}

// ParseCoordinates parses a latitude/longitude pair. ok is false when either
// cell is empty; an unparseable or out-of-range value is an error.
func ParseCoordinates(latStr, lonStr string) (geo Geo, ok bool, err error) {
	latStr = strings.TrimSpace(latStr)
	lonStr = strings.TrimSpace(lonStr)
	if latStr == "" || lonStr == "" {
		return Geo{}, false, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Geo{}, false, fmt.Errorf("latitude %q: %w", latStr, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return Geo{}, false, fmt.Errorf("longitude %q: %w", lonStr, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Geo{}, false, fmt.Errorf("coordinates (%s, %s) out of range", latStr, lonStr)
	}
	return Geo{Lat: lat, Lon: lon}, true, nil
}
