package lineup

import "errors"

// ErrUnresolvableRoster is returned when a game's roster does not identify two
// distinct teams that each have players. No snapshots are produced for it.
var ErrUnresolvableRoster = errors.New("unresolvable roster")
