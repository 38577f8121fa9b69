package salesdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/couchcryptid/liquor-sales-dashboard/internal/domain"
)

var errEmptyTable = errors.New("no records to write")

// WriteSales creates (or replaces) table in the database at path and inserts
// records in a single transaction. Unlocated records store NULL coordinates.
func WriteSales(ctx context.Context, path, table string, records []domain.SalesRecord) error {
	if len(records) == 0 {
		return errEmptyTable
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	name := quoteIdent(table)
	schema := fmt.Sprintf(`CREATE TABLE %s (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		category_name    TEXT NOT NULL,
		item_description TEXT NOT NULL,
		county           TEXT,
		bottles_sold     INTEGER NOT NULL DEFAULT 0,
		sale_dollars     TEXT NOT NULL DEFAULT '0',
		store_name       TEXT,
		address          TEXT,
		city             TEXT,
		latitude         REAL,
		longitude        REAL
	)`, name)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s
		(category_name, item_description, county, bottles_sold, sale_dollars, store_name, address, city, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, name))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var lat, lon sql.NullFloat64
		if r.Located {
			lat = sql.NullFloat64{Float64: r.Geo.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: r.Geo.Lon, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.Category, r.Brand, r.County, r.BottlesSold, r.SaleDollars.String(),
			r.StoreName, r.Address, r.City, lat, lon,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
