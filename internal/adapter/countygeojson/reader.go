// Package countygeojson reads and writes county boundaries as GeoJSON
// FeatureCollections.
package countygeojson

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// NameProperty is the feature property holding the county name.
const NameProperty = "NAME"

// Reader loads county geometries from a GeoJSON file.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the GeoJSON file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Path returns the file the reader loads from.
func (r *Reader) Path() string { return r.path }

// ReadCounties returns one CountyGeometry per Polygon or MultiPolygon feature.
// Features with other geometry types are skipped.
func (r *Reader) ReadCounties(ctx context.Context) ([]domain.CountyGeometry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counties, err := Decode(data, r.logger)
	if err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}
	r.logger.Debug("county geojson read", "path", r.path, "counties", len(counties))
	return counties, nil
}

// Decode parses a FeatureCollection. Every polygon feature must carry a
// NAME property (matched case-insensitively).
func Decode(data []byte, logger *slog.Logger) ([]domain.CountyGeometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	counties := make([]domain.CountyGeometry, 0, len(fc.Features))
	for i, f := range fc.Features {
		var boundary orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			boundary = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			boundary = g
		default:
			logger.Debug("skipping non-polygon feature", "feature", i, "type", fmt.Sprintf("%T", f.Geometry))
			continue
		}

		name, ok := featureName(f.Properties)
		if !ok {
			return nil, fmt.Errorf("feature %d: missing %s property", i, NameProperty)
		}
		counties = append(counties, domain.CountyGeometry{Name: name, Boundary: boundary})
	}
	return counties, nil
}

// featureName returns the NAME property, falling back to a key that matches
// it case-insensitively. Among several such keys the smallest wins.
func featureName(props geojson.Properties) (string, bool) {
	key := NameProperty
	if _, ok := props[NameProperty]; !ok {
		var candidates []string
		for k := range props {
			if strings.EqualFold(k, NameProperty) {
				candidates = append(candidates, k)
			}
		}
		if len(candidates) == 0 {
			return "", false
		}
		key = slices.Min(candidates)
	}
	s, ok := props[key].(string)
	return strings.TrimSpace(s), ok
}
