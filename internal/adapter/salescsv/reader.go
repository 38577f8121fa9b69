// Package salescsv reads sales records from a CSV export.
package salescsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
)

const ctxCheckInterval = 10000

// Reader loads sales records from a CSV file with a header row.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the CSV file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Path returns the file the reader loads from.
func (r *Reader) Path() string { return r.path }

// ReadSales parses every row of the file. Any I/O or parse failure is
// returned as a *domain.DataLoadError.
func (r *Reader) ReadSales(ctx context.Context) ([]domain.SalesRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}
	defer f.Close()

	records, err := Parse(ctx, f)
	if err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}
	r.logger.Debug("sales csv parsed", "path", r.path, "records", len(records))
	return records, nil
}

// Parse reads a CSV stream whose header names the sales columns. Header cells
// are matched after NormalizeColumn; unknown columns are ignored.
func Parse(ctx context.Context, in io.Reader) ([]domain.SalesRecord, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		index[domain.NormalizeColumn(h)] = i
	}
	if missing := domain.MissingColumns(index); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var records []domain.SalesRecord
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec, err := domain.ParseSalesRow(func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		})
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
