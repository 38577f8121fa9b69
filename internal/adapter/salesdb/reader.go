// Package salesdb reads and writes sales records in a SQLite table.
package salesdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Reader loads sales records from a table of a SQLite database.
type Reader struct {
	path   string
	table  string
	logger *slog.Logger
}

// NewReader creates a Reader for table in the database file at path.
func NewReader(path, table string, logger *slog.Logger) *Reader {
	return &Reader{path: path, table: table, logger: logger}
}

// Path returns the database file the reader loads from.
func (r *Reader) Path() string { return r.path }

// ReadSales selects every row of the table. Columns are matched by name after
// NormalizeColumn, so "Category Name" and category_name both work.
func (r *Reader) ReadSales(ctx context.Context) ([]domain.SalesRecord, error) {
	if _, err := os.Stat(r.path); err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}

	db, err := sql.Open(driverName, "file:"+r.path+"?mode=ro")
	if err != nil {
		return nil, domain.NewDataLoadError(r.path, fmt.Errorf("open database: %w", err))
	}
	defer db.Close()

	records, err := r.query(ctx, db)
	if err != nil {
		return nil, domain.NewDataLoadError(r.path, err)
	}
	r.logger.Debug("sales table read", "path", r.path, "table", r.table, "records", len(records))
	return records, nil
}

func (r *Reader) query(ctx context.Context, db *sql.DB) ([]domain.SalesRecord, error) {
	columns, err := tableColumns(ctx, db, r.table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q not found", r.table)
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[domain.NormalizeColumn(c)] = i
	}
	if missing := domain.MissingColumns(index); len(missing) > 0 {
		return nil, fmt.Errorf("table %q missing required columns: %s", r.table, strings.Join(missing, ", "))
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(r.table))

	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	var records []domain.SalesRecord
	for rowNum := 1; rows.Next(); rowNum++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", rowNum, err)
		}
		rec, err := domain.ParseSalesRow(func(col string) string {
			i, ok := index[col]
			if !ok {
				return ""
			}
			return values[i].String
		})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.table, err)
	}
	return records, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("inspect table %s: %w", table, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
