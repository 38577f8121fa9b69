package domain

import (
	"cmp"
	"slices"
)

// DefaultTopN is the number of counties shown in the ranking.
const DefaultTopN = 10

// TopCounties sums bottles sold per county and returns the n largest totals,
// ordered by total descending and county name ascending on ties. Records with
// an empty county are skipped. Fewer than n entries are returned when the
// records span fewer counties; n <= 0 yields an empty result.
func TopCounties(records []SalesRecord, n int) []CountyTotal {
	if n <= 0 {
		return []CountyTotal{}
	}

	totals := make(map[string]int64)
	for _, r := range records {
		if r.County == "" {
			continue
		}
		totals[r.County] += r.BottlesSold
	}

	ranked := make([]CountyTotal, 0, len(totals))
	for county, bottles := range totals {
		ranked = append(ranked, CountyTotal{County: county, BottlesSold: bottles})
	}
	slices.SortFunc(ranked, compareTotals)

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func compareTotals(a, b CountyTotal) int {
	if c := cmp.Compare(b.BottlesSold, a.BottlesSold); c != 0 {
		return c
	}
	return cmp.Compare(a.County, b.County)
}
