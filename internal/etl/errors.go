package etl

import "errors"

var (
	// ErrUnknownJob is returned for a job name nobody registered.
	ErrUnknownJob = errors.New("unknown job")
	// ErrDuplicateJob is returned when two jobs share a name.
	ErrDuplicateJob = errors.New("job already registered")
	// ErrNoGame is returned when no game can be found for the team.
	ErrNoGame = errors.New("no game found for team")
	// ErrNoData is returned when a source answered with nothing to write.
	ErrNoData = errors.New("source returned no rows")
)
