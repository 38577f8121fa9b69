package domain

import (
	"fmt"
	"strings"
)

// Sales column keys, after NormalizeColumn.
const (
	ColCategory    = "category_name"
	ColBrand       = "item_description"
	ColCounty      = "county"
	ColBottlesSold = "bottles_sold"
	ColSaleDollars = "sale_dollars"
	ColStoreName   = "store_name"
	ColLatitude    = "latitude"
	ColLongitude   = "longitude"
	ColAddress     = "address"
	ColCity        = "city"
)

// RequiredColumns must all be present in a sales source. Extra columns are ignored.
var RequiredColumns = []string{
	ColCategory,
	ColBrand,
	ColCounty,
	ColBottlesSold,
	ColSaleDollars,
	ColStoreName,
	ColLatitude,
	ColLongitude,
}

// MissingColumns returns the required columns absent from a normalized header set.
func MissingColumns(present map[string]int) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// ParseSalesRow builds a SalesRecord from cell values keyed by column. Text
// cells are trimmed; numeric cells go through ParseBottles, ParseDollars and
// ParseCoordinates.
func ParseSalesRow(cell func(col string) string) (SalesRecord, error) {
	bottles, err := ParseBottles(cell(ColBottlesSold))
	if err != nil {
		return SalesRecord{}, err
	}
	dollars, err := ParseDollars(cell(ColSaleDollars))
	if err != nil {
		return SalesRecord{}, err
	}
	geo, located, err := ParseCoordinates(cell(ColLatitude), cell(ColLongitude))
	if err != nil {
		return SalesRecord{}, fmt.Errorf("store location: %w", err)
	}

	return SalesRecord{
		Category:    strings.TrimSpace(cell(ColCategory)),
		Brand:       strings.TrimSpace(cell(ColBrand)),
		County:      strings.TrimSpace(cell(ColCounty)),
		BottlesSold: bottles,
		SaleDollars: dollars,
		StoreName:   strings.TrimSpace(cell(ColStoreName)),
		Geo:         geo,
		Located:     located,
		Address:     strings.TrimSpace(cell(ColAddress)),
		City:        strings.TrimSpace(cell(ColCity)),
	}, nil
}
