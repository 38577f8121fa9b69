// Package render turns a selection view into its display artifacts: the
// choropleth image, the store map document, and the spreadsheet export.
package render

import (
	"fmt"
	"image/color"
	"io"
	"slices"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Choropleth figure size, matching a 10x6 inch figure.
const (
	ChoroplethWidth  = 10 * vg.Inch
	ChoroplethHeight = 6 * vg.Inch
)

// ChoroplethTitle is the heading drawn above the map.
func ChoroplethTitle(brand string, topN int) string {
	return fmt.Sprintf("Top %d Counties for %s Sales", topN, brand)
}

// Choropleth draws each joined county filled on a blue to red scale between
// the smallest and largest bottle totals, with black edges and one legend
// entry per county. No shapes yields an empty, titled plot.
func Choropleth(brand string, topN int, shapes []domain.CountyShape) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ChoroplethTitle(brand, topN)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Legend.Top = true

	if len(shapes) == 0 {
		return p, nil
	}

	cmap := colorScale(shapes)
	legended := make(map[string]bool, len(shapes))
	for _, s := range shapes {
		fill, err := cmap.At(float64(s.BottlesSold))
		if err != nil {
			return nil, fmt.Errorf("shade %s: %w", s.Geometry.Name, err)
		}

		var first *plotter.Polygon
		for _, poly := range s.Geometry.Boundary {
			pg, err := plotter.NewPolygon(polygonRings(poly)...)
			if err != nil {
				return nil, fmt.Errorf("polygon for %s: %w", s.Geometry.Name, err)
			}
			pg.Color = fill
			pg.LineStyle.Color = color.Black
			pg.LineStyle.Width = vg.Points(0.75)
			p.Add(pg)
			if first == nil {
				first = pg
			}
		}

		if first != nil && !legended[s.Geometry.Name] {
			p.Legend.Add(legendLabel(s.Geometry.Name, s.BottlesSold), first)
			legended[s.Geometry.Name] = true
		}
	}
	return p, nil
}

// WriteChoroplethPNG renders the choropleth as a PNG image to w.
func WriteChoroplethPNG(w io.Writer, brand string, topN int, shapes []domain.CountyShape) error {
	p, err := Choropleth(brand, topN, shapes)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(ChoroplethWidth, ChoroplethHeight, "png")
	if err != nil {
		return fmt.Errorf("choropleth canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write choropleth: %w", err)
	}
	return nil
}

func legendLabel(county string, bottles int64) string {
	return fmt.Sprintf("%s (%s)", county, FormatCount(bottles))
}

// colorScale returns the Moreland smooth blue-red map spanning the totals.
// A single distinct total maps to the middle of the scale.
func colorScale(shapes []domain.CountyShape) palette.ColorMap {
	lo, hi := shapes[0].BottlesSold, shapes[0].BottlesSold
	for _, s := range shapes[1:] {
		lo = min(lo, s.BottlesSold)
		hi = max(hi, s.BottlesSold)
	}

	cmap := moreland.SmoothBlueRed()
	if lo == hi {
		cmap.SetMin(float64(lo) - 1)
		cmap.SetMax(float64(hi) + 1)
		return cmap
	}
	cmap.SetMin(float64(lo))
	cmap.SetMax(float64(hi))
	return cmap
}

// polygonRings converts a polygon to plotter rings. Holes are given the
// winding opposite to the outer ring so they render unfilled.
func polygonRings(poly orb.Polygon) []plotter.XYer {
	rings := make([]plotter.XYer, 0, len(poly))
	var outer orb.Orientation
	for i, ring := range poly {
		pts := slices.Clone(ring)
		if i == 0 {
			outer = pts.Orientation()
		} else if pts.Orientation() == outer {
			slices.Reverse(pts)
		}
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j] = plotter.XY{X: pt[0], Y: pt[1]}
		}
		rings = append(rings, xys)
	}
	return rings
}
