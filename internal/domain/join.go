package domain

import (
	"cmp"
	"slices"
)

// JoinCounties inner-joins ranked totals with county geometry on
// CountyGeometry.Name == CountyTotal.County (exact, case-sensitive).
// Ranked counties without geometry are dropped and returned in unmatched,
// in ranking order. The joined shapes are ordered like the ranking.
func JoinCounties(ranked []CountyTotal, geometries []CountyGeometry) (shapes []CountyShape, unmatched []string) {
	byName := make(map[string][]CountyGeometry, len(geometries))
	for _, g := range geometries {
		byName[g.Name] = append(byName[g.Name], g)
	}

	shapes = make([]CountyShape, 0, len(ranked))
	for _, total := range ranked {
		matches, ok := byName[total.County]
		if !ok {
			unmatched = append(unmatched, total.County)
			continue
		}
		for _, g := range matches {
			shapes = append(shapes, CountyShape{Geometry: g, BottlesSold: total.BottlesSold})
		}
	}

	slices.SortStableFunc(shapes, func(a, b CountyShape) int {
		if c := cmp.Compare(b.BottlesSold, a.BottlesSold); c != 0 {
			return c
		}
		return cmp.Compare(a.Geometry.Name, b.Geometry.Name)
	})
	return shapes, unmatched
}
