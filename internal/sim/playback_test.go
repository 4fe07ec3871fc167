package sim

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestReplayLogPreservesRows(t *testing.T) {
	rows := sampleRows(5)
	base := time.Unix(1000, 0).UTC()
	for i := range rows {
		rows[i].Timestamp = base.Add(time.Duration(i) * time.Minute)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}

	writer := &MockWriter{}
	// speed <= 0 disables the inter-row delays
	if err := ReplayLog(&buf, writer, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(writer.Rows) != 5 {
		t.Fatalf("replayed %d rows, want 5", len(writer.Rows))
	}
	for i, row := range writer.Rows {
		if row.Minute != rows[i].Minute || row.PH != rows[i].PH {
			t.Fatalf("row %d corrupted in replay: %+v", i, row)
		}
	}
}

func TestReplayLogRejectsUnknownLabel(t *testing.T) {
	rows := sampleRows(2)
	rows[1].Casualty = "pump_failure"

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	if err := ReplayLog(&buf, &MockWriter{}, 0); err == nil {
		t.Fatal("expected error for a label outside the casualty vocabulary")
	}
}

func TestReplayLogRejectsOutOfOrderMinutes(t *testing.T) {
	rows := sampleRows(3)
	rows[2].Minute = rows[1].Minute

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	if err := ReplayLog(&buf, &MockWriter{}, 0); err == nil {
		t.Fatal("expected error for a non-increasing minute sequence")
	}
}

func TestReplayLogRejectsGarbage(t *testing.T) {
	writer := &MockWriter{}
	if err := ReplayLog(bytes.NewBufferString("not json\n"), writer, 0); err == nil {
		t.Fatal("expected error for malformed log")
	}
}

func TestReplayLogEmptyInput(t *testing.T) {
	writer := &MockWriter{}
	if err := ReplayLog(bytes.NewBuffer(nil), writer, 1); err != nil {
		t.Fatalf("ReplayLog on empty input: %v", err)
	}
	if len(writer.Rows) != 0 {
		t.Fatalf("replayed %d rows from empty input", len(writer.Rows))
	}
}
