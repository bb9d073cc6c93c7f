package reference

import "errors"

var (
	// ErrNoTable is returned when a page has no leaders table.
	ErrNoTable = errors.New("no leaders table on page")
	// ErrNoRecords is returned when a table has no numeric rows.
	ErrNoRecords = errors.New("no records extracted")
)
