package domain

import (
	"fmt"
	"html"
)

// StoreMarkers builds one map marker per located record. Records without
// coordinates cannot be placed and are skipped.
func StoreMarkers(records []SalesRecord) []StoreMarker {
	markers := make([]StoreMarker, 0, len(records))
	for _, r := range records {
		if !r.Located {
			continue
		}
		markers = append(markers, StoreMarker{
			StoreName:   r.StoreName,
			County:      r.County,
			SaleDollars: r.SaleDollars,
			Lat:         r.Geo.Lat,
			Lon:         r.Geo.Lon,
			Popup:       Popup(r),
		})
	}
	return markers
}

// Popup renders the marker popup, e.g. "Store: X<br>County: Y<br>Sales: $123.45".
// Store and county are HTML-escaped; the line breaks are markup.
func Popup(r SalesRecord) string {
	return fmt.Sprintf("Store: %s<br>County: %s<br>Sales: $%s",
		html.EscapeString(r.StoreName),
		html.EscapeString(r.County),
		r.SaleDollars.StringFixed(2),
	)
}

// MapCenter returns the mean coordinate of all located records, or the zero
// Geo when none are located.
func MapCenter(records []SalesRecord) Geo {
	var lat, lon float64
	var n int
	for _, r := range records {
		if !r.Located {
			continue
		}
		lat += r.Geo.Lat
		lon += r.Geo.Lon
		n++
	}
	if n == 0 {
		return Geo{}
	}
	return Geo{Lat: lat / float64(n), Lon: lon / float64(n)}
}
