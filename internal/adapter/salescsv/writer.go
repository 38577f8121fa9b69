package salescsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
)

var writeColumns = []string{
	domain.ColCategory,
	domain.ColBrand,
	domain.ColCounty,
	domain.ColBottlesSold,
	domain.ColSaleDollars,
	domain.ColStoreName,
	domain.ColAddress,
	domain.ColCity,
	domain.ColLatitude,
	domain.ColLongitude,
}

// Write emits records as CSV with a normalized header row. Unlocated
// records get empty coordinate cells.
func Write(w io.Writer, records []domain.SalesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(writeColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(writeColumns))
	for i, r := range records {
		row[0] = r.Category
		row[1] = r.Brand
		row[2] = r.County
		row[3] = strconv.FormatInt(r.BottlesSold, 10)
		row[4] = r.SaleDollars.StringFixed(2)
		row[5] = r.StoreName
		row[6] = r.Address
		row[7] = r.City
		row[8], row[9] = "", ""
		if r.Located {
			row[8] = strconv.FormatFloat(r.Geo.Lat, 'f', -1, 64)
			row[9] = strconv.FormatFloat(r.Geo.Lon, 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to a new CSV file at path.
func WriteFile(path string, records []domain.SalesRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
