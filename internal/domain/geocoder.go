package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves store locations that the dataset left without coordinates.
type Geocoder interface {
	// ForwardGeocode converts a free-form place query within a state to coordinates.
	ForwardGeocode(ctx context.Context, query, state string) (GeocodingResult, error)
}
