package fetch

import "errors"

var (
	// ErrStatus matches every non-2xx response.
	ErrStatus = errors.New("unexpected response status")
	// ErrNotFound matches 404 responses, e.g. a game with no feed yet.
	ErrNotFound = errors.New("resource not found")
)
