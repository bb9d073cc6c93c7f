package statsapi

import "errors"

var (
	// ErrNoResultSet is returned when a response carries no result set with
	// the requested name.
	ErrNoResultSet = errors.New("result set not found")
	// ErrMalformedRow is returned when a row is wider or narrower than the
	// result set headers.
	ErrMalformedRow = errors.New("row does not match headers")
)
