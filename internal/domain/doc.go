// Package domain models Iowa liquor sales data and the selection pipeline that
// turns it into dashboard views.
//
// # Data Source
//
// Sales rows come from the Iowa Alcoholic Beverages Division "Iowa Liquor Sales"
// open dataset, exported as CSV (or loaded into SQLite). Each row is one invoice
// line: a store bought some bottles of one item on one date. County boundaries come
// from the Census TIGER county shapefile (or a GeoJSON export of it), keyed by the
// NAME attribute.
//
// # Data Conventions
//
// Columns used:
//
//	category_name     e.g. "STRAIGHT BOURBON WHISKIES"
//	item_description  the brand/item, e.g. "BLACK VELVET"
//	county            e.g. "POLK"; sometimes empty in older rows
//	bottles_sold      integer
//	sale_dollars      decimal dollars; older exports prefix "$" and use "," separators
//	store_name        e.g. "HY-VEE #3 / BDI / DES MOINES"
//	latitude          decimal degrees, may be empty
//	longitude         decimal degrees, may be empty
//
// Text cells are trimmed of surrounding whitespace when read, on both sides of
// the join: sales rows in ParseSalesRow, and county NAME values from the
// shapefile (space-padded dBase fields) and GeoJSON readers. " Polk " in a sales
// row therefore joins "Polk" in the geometry. Nothing else is normalized.
//
// County names must match the geometry NAME attribute exactly (case-sensitive).
// The Iowa dataset uses upper case while TIGER uses title case, so a mismatched
// pair produces an empty choropleth rather than an error.
//
// # Ranking
//
// Counties are ranked by summed bottles_sold, descending. Ties are broken by county
// name ascending so that the top-N cut is deterministic. Rows with an empty county
// never form a group.
package domain
