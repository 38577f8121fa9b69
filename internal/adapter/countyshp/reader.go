// Package countyshp reads and writes county boundaries as ESRI shapefiles.
package countyshp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// NameField is the attribute holding the county name.
const NameField = "NAME"

var errNoNameField = errors.New("dbf has no " + NameField + " attribute")

// Reader loads county geometries from a .shp file and its sibling .dbf.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the shapefile at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Path returns the shapefile the reader loads from.
func (r *Reader) Path() string { return r.path }

// ReadCounties returns one CountyGeometry per shape record. Null shapes are
// skipped; any other non-polygon shape is an error.
func (r *Reader) ReadCounties(ctx context.Context) ([]domain.CountyGeometry, error) {
	if _, err := os.Stat(r.path); err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}

	sr, err := shp.Open(r.path)
	if err != nil {
		return nil, domain.NewDataLoadError(r.path, fmt.Errorf("open shapefile: %w", err))
	}
	defer sr.Close()

	nameIdx := -1
	for i, f := range sr.Fields() {
		if strings.EqualFold(f.String(), NameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, domain.NewDataLoadError(r.path, errNoNameField)
	}

	var counties []domain.CountyGeometry
	for sr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, shape := sr.Shape()
		name := strings.TrimSpace(sr.ReadAttribute(n, nameIdx))

		rings, ok, err := shapeRings(shape)
		if err != nil {
			return nil, domain.NewDataLoadError(r.path, fmt.Errorf("record %d (%s): %w", n, name, err))
		}
		if !ok {
			r.logger.Debug("skipping null shape", "record", n, "name", name)
			continue
		}

		counties = append(counties, domain.CountyGeometry{
			Name:     name,
			Boundary: assemblePolygons(rings),
		})
	}
	if err := sr.Err(); err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}

	r.logger.Debug("county shapefile read", "path", r.path, "counties", len(counties))
	return counties, nil
}

// shapeRings splits a polygon shape into its rings. ok is false for null shapes.
func shapeRings(s shp.Shape) (rings []orb.Ring, ok bool, err error) {
	var parts []int32
	var points []shp.Point

	switch p := s.(type) {
	case *shp.Null:
		return nil, false, nil
	case *shp.Polygon:
		parts, points = p.Parts, p.Points
	case *shp.PolygonZ:
		parts, points = p.Parts, p.Points
	case *shp.PolygonM:
		parts, points = p.Parts, p.Points
	default:
		return nil, false, fmt.Errorf("unsupported shape type %T", s)
	}

	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || end > int32(len(points)) {
			return nil, false, fmt.Errorf("part %d out of range", i)
		}
		ring := make(orb.Ring, 0, end-start)
		for _, pt := range points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		rings = append(rings, ring)
	}
	return rings, true, nil
}

// assemblePolygons groups rings into polygons. Shapefile outer rings are
// clockwise and each counter-clockwise ring is a hole of the outer ring
// before it.
func assemblePolygons(rings []orb.Ring) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, ring := range rings {
		if ring.Orientation() == orb.CCW && len(mp) > 0 {
			last := len(mp) - 1
			mp[last] = append(mp[last], ring)
			continue
		}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}
