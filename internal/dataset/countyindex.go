package dataset

import (
	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// minExtent pads degenerate bounding boxes so rtreego accepts them.
const minExtent = 1e-9

// CountyIndex answers "which county contains this point" over county
// boundaries. Candidates come from an R-tree of bounding boxes and are
// confirmed with an exact point-in-polygon test.
type CountyIndex struct {
	tree *rtreego.Rtree
}

type indexedCounty struct {
	name     string
	boundary orb.MultiPolygon
	rect     rtreego.Rect
}

func (c *indexedCounty) Bounds() rtreego.Rect { return c.rect }

// NewCountyIndex builds an index over geometries. Geometries with an empty
// boundary are left out.
func NewCountyIndex(geometries []domain.CountyGeometry) *CountyIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, g := range geometries {
		if len(g.Boundary) == 0 {
			continue
		}
		rect, ok := boundsRect(g.Boundary.Bound())
		if !ok {
			continue
		}
		tree.Insert(&indexedCounty{name: g.Name, boundary: g.Boundary, rect: rect})
	}
	return &CountyIndex{tree: tree}
}

// Size returns the number of indexed counties.
func (idx *CountyIndex) Size() int {
	return idx.tree.Size()
}

// Locate returns the name of the county containing geo. When boundaries
// overlap the first match in tree order wins.
func (idx *CountyIndex) Locate(geo domain.Geo) (string, bool) {
	pt := orb.Point{geo.Lon, geo.Lat}
	for _, s := range idx.tree.SearchIntersect(rtreego.Point{pt[0], pt[1]}.ToRect(minExtent)) {
		c := s.(*indexedCounty)
		if planar.MultiPolygonContains(c.boundary, pt) {
			return c.name, true
		}
	}
	return "", false
}

func boundsRect(b orb.Bound) (rtreego.Rect, bool) {
	w := max(b.Max[0]-b.Min[0], minExtent)
	h := max(b.Max[1]-b.Min[1], minExtent)
	rect, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}
