package countyshp

import (
	"fmt"
	"slices"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

const nameFieldSize = 64

// WriteCounties writes geometries to a polygon shapefile at path (plus the
// .shx and .dbf siblings) with a single NAME attribute.
func WriteCounties(path string, counties []domain.CountyGeometry) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("create shapefile: %w", err)
	}
	defer w.Close()

	w.SetFields([]shp.Field{shp.StringField(NameField, nameFieldSize)})

	for i, c := range counties {
		p := shp.Polygon(*shp.NewPolyLine(shapeParts(c.Boundary)))
		w.Write(&p)
		w.WriteAttribute(i, 0, c.Name)
	}
	return nil
}

// shapeParts orders rings the shapefile way: outer rings clockwise, holes
// counter-clockwise.
func shapeParts(mp orb.MultiPolygon) [][]shp.Point {
	var parts [][]shp.Point
	for _, poly := range mp {
		for i, ring := range poly {
			want := orb.CW
			if i > 0 {
				want = orb.CCW
			}
			parts = append(parts, ringPoints(ring, ring.Orientation() != want))
		}
	}
	return parts
}

func ringPoints(ring orb.Ring, reverse bool) []shp.Point {
	pts := make([]shp.Point, len(ring))
	for i, p := range ring {
		pts[i] = shp.Point{X: p[0], Y: p[1]}
	}
	if reverse {
		slices.Reverse(pts)
	}
	return pts
}
