package sim

import "nrsim/internal/reactor"

// StateWriter handles simulation state rows.
type StateWriter interface {
	WriteState(reactor.StateRow) error
}
