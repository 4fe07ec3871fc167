package sim

import (
	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

// MultiWriter fans telemetry rows, casualty events, and state rows out to
// multiple writers.
type MultiWriter struct {
	rowWriters   []RowWriter
	eventWriters []EventWriter
	stateWriters []StateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(rws []RowWriter, ews []EventWriter, sws []StateWriter) *MultiWriter {
	return &MultiWriter{rowWriters: rws, eventWriters: ews, stateWriters: sws}
}

// Write sends a telemetry row to all writers.
func (mw *MultiWriter) Write(row reactor.Row) error {
	for _, w := range mw.rowWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple telemetry rows to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(rows []reactor.Row) error {
	for _, w := range mw.rowWriters {
		if bw, ok := w.(batchRowWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteEvent sends a casualty event to all event writers.
func (mw *MultiWriter) WriteEvent(ev casualty.EventRow) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple casualty events to all event writers, using
// batch mode where supported.
func (mw *MultiWriter) WriteEvents(rows []casualty.EventRow) error {
	for _, w := range mw.eventWriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				return err
			}
			continue
		}
		for _, ev := range rows {
			if err := w.WriteEvent(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteState sends a state row to all state writers.
func (mw *MultiWriter) WriteState(row reactor.StateRow) error {
	for _, w := range mw.stateWriters {
		if err := w.WriteState(row); err != nil {
			return err
		}
	}
	return nil
}
