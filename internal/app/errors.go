package service

import "errors"

var (
	// ErrNotStarted is returned when the service is used before Start or Init.
	ErrNotStarted = errors.New("service not started")
	// ErrStopped is returned when a stopped service is started again.
	ErrStopped = errors.New("service stopped")
	// ErrInvalidGameID is returned for game ids that are not 10 digits.
	ErrInvalidGameID = errors.New("invalid game id")
)
