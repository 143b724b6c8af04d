// Package warehouse exposes the tabular data source executing read-only
// queries. The engine is a narrow seam: the rest of the system only ever
// hands it a query string and reads back rows or an error.
package warehouse

import "context"

// Row is one result row, column name to scalar value.
type Row = map[string]any

// Engine is the interface for query execution backends.
type Engine interface {
	// Query executes a read-only query and returns the result rows.
	Query(ctx context.Context, query string) ([]Row, error)

	// Columns returns the ordered column names of the trips table.
	// Called once at startup to ground the system instruction.
	Columns(ctx context.Context) ([]string, error)

	// Table returns the fully qualified trips table name.
	Table() string

	Close() error
}
