package sim

import (
	"testing"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

// batchMockWriter records whether the batch path was taken.
type batchMockWriter struct {
	MockWriter
	batches int
}

func (w *batchMockWriter) WriteBatch(rows []reactor.Row) error {
	w.batches++
	w.Rows = append(w.Rows, rows...)
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	a := &MockWriter{}
	b := &batchMockWriter{}
	events := &MockEventWriter{}
	states := &MockStateWriter{}
	mw := NewMultiWriter([]RowWriter{a, b}, []EventWriter{events}, []StateWriter{states})

	rows := sampleRows(4)
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if len(a.Rows) != 4 || len(b.Rows) != 4 {
		t.Fatalf("fan-out incomplete: %d and %d rows", len(a.Rows), len(b.Rows))
	}
	if b.batches != 1 {
		t.Fatalf("batch-capable writer called %d times in batch mode, want 1", b.batches)
	}

	if err := mw.Write(rows[0]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(a.Rows) != 5 || len(b.Rows) != 5 {
		t.Fatalf("single-row fan-out incomplete: %d and %d rows", len(a.Rows), len(b.Rows))
	}

	ev := casualty.EventRow{RunID: "run-1", Event: casualty.EventStarted, Type: casualty.ResinOverheat}
	if err := mw.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if len(events.Events) != 1 {
		t.Fatalf("event fan-out incomplete: %d events", len(events.Events))
	}

	if err := mw.WriteState(reactor.StateRow{RunID: "run-1"}); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if len(states.States) != 1 {
		t.Fatalf("state fan-out incomplete: %d rows", len(states.States))
	}
}
