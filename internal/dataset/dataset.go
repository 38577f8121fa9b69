// Package dataset loads the sales records and county geometries once and
// hands out a read-only view of them.
package dataset

import (
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
)

// Dataset is the immutable, in-memory pair of sales records and county
// geometries. It is safe for concurrent use; callers must not modify the
// returned slices.
type Dataset struct {
	sales      []domain.SalesRecord
	counties   []domain.CountyGeometry
	center     domain.Geo
	categories []string
	brands     map[string][]string
}

// New builds a Dataset from already-loaded data.
func New(sales []domain.SalesRecord, counties []domain.CountyGeometry) *Dataset {
	if sales == nil {
		sales = []domain.SalesRecord{}
	}
	if counties == nil {
		counties = []domain.CountyGeometry{}
	}

	categories := domain.AvailableCategories(sales)
	brands := make(map[string][]string, len(categories))
	seen := make(map[[2]string]struct{})
	for _, r := range sales {
		key := [2]string{r.Category, r.Brand}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		brands[r.Category] = append(brands[r.Category], r.Brand)
	}

	return &Dataset{
		sales:      sales,
		counties:   counties,
		center:     domain.MapCenter(sales),
		categories: categories,
		brands:     brands,
	}
}

// Sales returns every sales record.
func (d *Dataset) Sales() []domain.SalesRecord { return d.sales }

// Counties returns every county geometry.
func (d *Dataset) Counties() []domain.CountyGeometry { return d.counties }

// MapCenter is the mean location of all located stores.
func (d *Dataset) MapCenter() domain.Geo { return d.center }

// Categories returns the distinct categories in first-seen order.
func (d *Dataset) Categories() []string { return d.categories }

// Brands returns the distinct brands sold within category, in first-seen
// order. An unknown category yields an empty list.
func (d *Dataset) Brands(category string) []string {
	if b, ok := d.brands[category]; ok {
		return b
	}
	return []string{}
}

// HasCategory reports whether category occurs in the sales records.
func (d *Dataset) HasCategory(category string) bool {
	_, ok := d.brands[category]
	return ok
}
