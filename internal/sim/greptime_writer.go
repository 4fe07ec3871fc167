package sim

import (
	"context"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes telemetry, casualty events, and state rows to
// GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	rowTable   string
	eventTable string
	stateTable string
}

// NewGreptimeDBWriter connects to GreptimeDB. endpoint is "host" or
// "host:port". Empty table names fall back to the defaults (or their
// environment overrides).
func NewGreptimeDBWriter(endpoint, database, rowTable, eventTable, stateTable string) (*GreptimeDBWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
		portStr = ""
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if rowTable == "" {
		rowTable = reactor.RowTableName
	}
	if eventTable == "" {
		eventTable = casualty.EventTableName
	}
	if stateTable == "" {
		stateTable = reactor.StateTableName
	}
	return &GreptimeDBWriter{
		client:     client,
		rowTable:   rowTable,
		eventTable: eventTable,
		stateTable: stateTable,
	}, nil
}

// Write inserts a single telemetry row.
func (w *GreptimeDBWriter) Write(row reactor.Row) error {
	return w.WriteBatch([]reactor.Row{row})
}

// WriteBatch inserts multiple telemetry rows.
func (w *GreptimeDBWriter) WriteBatch(rows []reactor.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.rowTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddFieldColumn("minute", types.INT64)
	tbl.AddFieldColumn("ph", types.FLOAT64)
	tbl.AddFieldColumn("hydrogen", types.FLOAT64)
	tbl.AddFieldColumn("total_gas", types.FLOAT64)
	tbl.AddFieldColumn("temperature", types.FLOAT64)
	tbl.AddFieldColumn("pressure", types.FLOAT64)
	tbl.AddFieldColumn("radioactivity", types.FLOAT64)
	tbl.AddFieldColumn("power", types.FLOAT64)
	tbl.AddFieldColumn("reactor_safety", types.INT64)
	tbl.AddFieldColumn("casualty", types.STRING)
	tbl.AddFieldColumn("severity", types.STRING)
	tbl.AddFieldColumn("chemical_addition", types.BOOLEAN)
	tbl.AddFieldColumn("vent_gas", types.BOOLEAN)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, int64(r.Minute), r.PH, r.Hydrogen, r.TotalGas,
			r.Temperature, r.Pressure, r.Radioactivity, r.Power,
			int64(r.Safety), r.Casualty, r.Severity, r.Charging,
			r.VentingGas, r.Timestamp,
		); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteEvent inserts a single casualty event.
func (w *GreptimeDBWriter) WriteEvent(ev casualty.EventRow) error {
	return w.WriteEvents([]casualty.EventRow{ev})
}

// WriteEvents inserts multiple casualty events.
func (w *GreptimeDBWriter) WriteEvents(rows []casualty.EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddFieldColumn("event_id", types.STRING)
	tbl.AddFieldColumn("event", types.STRING)
	tbl.AddFieldColumn("type", types.STRING)
	tbl.AddFieldColumn("severity", types.STRING)
	tbl.AddFieldColumn("minute", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, ev := range rows {
		if err := tbl.AddRow(
			ev.RunID, ev.EventID, ev.Event, string(ev.Type),
			string(ev.Severity), int64(ev.Minute), ev.Timestamp,
		); err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteState inserts a simulation state row.
func (w *GreptimeDBWriter) WriteState(row reactor.StateRow) error {
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddFieldColumn("minute", types.INT64)
	tbl.AddFieldColumn("casualty", types.STRING)
	tbl.AddFieldColumn("severity", types.STRING)
	tbl.AddFieldColumn("chemical_addition", types.BOOLEAN)
	tbl.AddFieldColumn("vent_gas", types.BOOLEAN)
	tbl.AddFieldColumn("time_since_safe", types.INT64)
	tbl.AddFieldColumn("rows_emitted", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		row.RunID, int64(row.Minute), row.Casualty, row.Severity,
		row.Charging, row.VentingGas, int64(row.TimeSinceSafe),
		int64(row.RowsEmitted), row.Timestamp,
	); err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}
