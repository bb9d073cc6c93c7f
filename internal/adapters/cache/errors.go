package cache

import "errors"

// ErrNotFound is returned when no lineup is cached for a game and team.
var ErrNotFound = errors.New("lineup not cached")
