package render

import (
	"fmt"
	"io"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the selection workbook.
const (
	TopCountiesSheet = "Top Counties"
	StoresSheet      = "Stores"
)

var (
	topCountiesHeader = []any{"Rank", "County", "Bottles Sold"}
	storesHeader      = []any{"Store", "County", "Sale Dollars", "Latitude", "Longitude"}
)

// WriteWorkbook exports the county ranking and the store markers of view as
// an xlsx workbook.
func WriteWorkbook(w io.Writer, view domain.View) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file

	if err := f.SetSheetName("Sheet1", TopCountiesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(StoresSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeHeader(f, TopCountiesSheet, topCountiesHeader, bold); err != nil {
		return err
	}
	for i, t := range view.TopCounties {
		row := []any{i + 1, t.County, t.BottlesSold}
		if err := writeRow(f, TopCountiesSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeHeader(f, StoresSheet, storesHeader, bold); err != nil {
		return err
	}
	for i, m := range view.Markers {
		dollars, _ := m.SaleDollars.Round(2).Float64()
		row := []any{m.StoreName, m.County, dollars, m.Lat, m.Lon}
		if err := writeRow(f, StoresSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
