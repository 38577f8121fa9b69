package domain

import (
	"context"
	"log/slog"
	"strings"
)

// GeocodeQuery builds the forward geocoding query for a record: the street
// address and city when the dataset has them, otherwise the store name and county.
func GeocodeQuery(r SalesRecord) string {
	if r.Address != "" {
		parts := []string{r.Address}
		if r.City != "" {
			parts = append(parts, r.City)
		}
		return strings.Join(parts, ", ")
	}
	if r.StoreName == "" {
		return ""
	}
	if r.County != "" {
		return r.StoreName + ", " + r.County + " County"
	}
	return r.StoreName
}

// EnrichStoreLocation fills in coordinates for a record that has none.
// Located records are marked "original" and returned untouched. If geocoder is
// nil the record is returned as-is. A failed or empty lookup leaves the record
// unlocated with LocationSource "failed".
func EnrichStoreLocation(ctx context.Context, r SalesRecord, geocoder Geocoder, state string, logger *slog.Logger) SalesRecord {
	if geocoder == nil {
		return r
	}
	if r.Located {
		r.LocationSource = LocationOriginal
		return r
	}

	query := GeocodeQuery(r)
	if query == "" {
		r.LocationSource = LocationFailed
		return r
	}

	result, err := geocoder.ForwardGeocode(ctx, query, state)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"store", r.StoreName,
			"query", query,
			"state", state,
			"error", err,
		)
		r.LocationSource = LocationFailed
		return r
	}
	if result.Lat == 0 && result.Lon == 0 {
		r.LocationSource = LocationFailed
		return r
	}

	r.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
	r.Located = true
	r.LocationSource = LocationForward
	return r
}
