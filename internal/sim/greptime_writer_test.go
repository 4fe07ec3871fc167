package sim

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"nrsim/internal/casualty"
)

type mockGreptimeClient struct {
	tables []*table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.tables = append(m.tables, tables...)
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterTelemetrySchema(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, rowTable: "reactor_telemetry"}

	rows := sampleRows(2)
	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("expected 1 table write, got %d", len(m.tables))
	}

	got := m.tables[0].GetRows()
	// run_id tag + 13 fields + timestamp
	if len(got.Schema) != 15 {
		t.Fatalf("unexpected schema length: %d", len(got.Schema))
	}
	if got.Schema[0].ColumnName != "run_id" {
		t.Fatalf("first column = %s, want run_id", got.Schema[0].ColumnName)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Rows))
	}
	if got.Rows[0].Values[0].GetStringValue() != "run-1" {
		t.Fatalf("run_id value = %q", got.Rows[0].Values[0].GetStringValue())
	}
}

func TestGreptimeWriterSkipsEmptyBatch(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, rowTable: "reactor_telemetry"}
	if err := w.WriteBatch(nil); err != nil {
		t.Fatalf("WriteBatch(nil): %v", err)
	}
	if len(m.tables) != 0 {
		t.Fatalf("empty batch still wrote %d tables", len(m.tables))
	}
}

func TestGreptimeWriterEvents(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, eventTable: "casualty_events"}

	ev := casualty.EventRow{
		RunID:     "run-1",
		EventID:   "e1",
		Event:     casualty.EventStarted,
		Type:      casualty.FuelElementFailure,
		Severity:  casualty.SeverityMajor,
		Minute:    500,
		Timestamp: time.Unix(0, 0).UTC(),
	}
	if err := w.WriteEvents([]casualty.EventRow{ev}); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("expected 1 table write, got %d", len(m.tables))
	}

	got := m.tables[0].GetRows()
	if len(got.Schema) != 7 {
		t.Fatalf("unexpected schema length: %d", len(got.Schema))
	}
	vals := got.Rows[0].Values
	if vals[3].GetStringValue() != string(casualty.FuelElementFailure) {
		t.Fatalf("type value = %q", vals[3].GetStringValue())
	}
	if vals[5].GetI64Value() != 500 {
		t.Fatalf("minute value = %d", vals[5].GetI64Value())
	}
}
