// Telemetry row types with greptime tags
package reactor

import (
	"os"
	"strconv"
	"time"
)

// Row represents one sampled telemetry record.
type Row struct {
	RunID         string    `json:"run_id"`          // TAG
	Minute        int       `json:"minute"`          // FIELD, simulated time
	PH            float64   `json:"ph"`              // FIELD
	Hydrogen      float64   `json:"hydrogen"`        // FIELD, cc/kg
	TotalGas      float64   `json:"total_gas"`       // FIELD, cc/kg
	Temperature   float64   `json:"temperature"`     // FIELD, degrees F
	Pressure      float64   `json:"pressure"`        // FIELD, psi
	Radioactivity float64   `json:"radioactivity"`   // FIELD, rad
	Power         float64   `json:"power"`           // FIELD, percent
	Safety        int       `json:"reactor_safety"`  // FIELD, 0 safe / 1 unsafe
	Casualty      string    `json:"casualty"`        // FIELD, label
	Severity      string    `json:"severity"`        // FIELD, none/minor/major
	Charging      bool      `json:"chemical_addition"`
	VentingGas    bool      `json:"vent_gas"`
	Timestamp     time.Time `json:"ts"` // TIME INDEX, wall clock (streaming only)
}

// RowTableName holds the table name used when writing rows to GreptimeDB.
// It defaults to "reactor_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var RowTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "reactor_telemetry"
}()

func (Row) TableName() string {
	return RowTableName
}

// Columns is the dataset column contract, in order. CSV files written by the
// simulator use exactly these columns; downstream training code indexes by
// position.
var Columns = []string{
	"minute",
	"ph",
	"hydrogen",
	"total_gas",
	"temperature",
	"pressure",
	"radioactivity",
	"power",
	"reactor_safety",
	"casualty",
	"severity",
	"chemical_addition",
	"vent_gas",
}

// Record renders the row as a CSV record matching Columns. Floats use the
// shortest round-trip representation so identical runs serialize identically.
func (r Row) Record() []string {
	return []string{
		strconv.Itoa(r.Minute),
		formatFloat(r.PH),
		formatFloat(r.Hydrogen),
		formatFloat(r.TotalGas),
		formatFloat(r.Temperature),
		formatFloat(r.Pressure),
		formatFloat(r.Radioactivity),
		formatFloat(r.Power),
		strconv.Itoa(r.Safety),
		r.Casualty,
		r.Severity,
		strconv.FormatBool(r.Charging),
		strconv.FormatBool(r.VentingGas),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// StateRow captures per-tick simulator state metrics.
type StateRow struct {
	RunID         string    `json:"run_id"`
	Minute        int       `json:"minute"`
	Casualty      string    `json:"casualty"`
	Severity      string    `json:"severity"`
	Charging      bool      `json:"chemical_addition"`
	VentingGas    bool      `json:"vent_gas"`
	TimeSinceSafe int       `json:"time_since_safe"`
	RowsEmitted   int       `json:"rows_emitted"`
	Timestamp     time.Time `json:"ts"`
}

// StateTableName is the GreptimeDB table for simulation state rows.
var StateTableName = func() string {
	if env := os.Getenv("SIMULATION_STATE_TABLE"); env != "" {
		return env
	}
	return "simulation_state"
}()
