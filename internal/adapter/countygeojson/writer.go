package countygeojson

import (
	"fmt"
	"os"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// Encode renders counties as a FeatureCollection with a NAME property per feature.
func Encode(counties []domain.CountyGeometry) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, c := range counties {
		f := geojson.NewFeature(c.Boundary)
		f.Properties[NameProperty] = c.Name
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

// WriteCounties writes counties to a GeoJSON file at path.
func WriteCounties(path string, counties []domain.CountyGeometry) error {
	data, err := Encode(counties)
	if err != nil {
		return fmt.Errorf("encode counties: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // public map data
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
