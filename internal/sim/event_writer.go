package sim

import "nrsim/internal/casualty"

// EventWriter handles casualty lifecycle events.
type EventWriter interface {
	WriteEvent(casualty.EventRow) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]casualty.EventRow) error
}
