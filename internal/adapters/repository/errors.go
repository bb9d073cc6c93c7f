package repository

import "errors"

// Sentinel errors for sink writes.
var (
	ErrInvalidIdentifier = errors.New("invalid table or column name")
	ErrUnknownDriver     = errors.New("unknown store driver")
	ErrClosed            = errors.New("store is closed")
)
