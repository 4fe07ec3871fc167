package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

// ReplayLog replays telemetry rows from r to writer. A speed > 0 replays
// with the original inter-row delays divided by speed; speed <= 0 inserts no
// delay. Rows that could not have come out of a run are rejected.
func ReplayLog(r io.Reader, writer RowWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	prevMinute := -1
	for {
		var row reactor.Row
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if row.Minute <= prevMinute {
			return fmt.Errorf("telemetry log out of order: minute %d after %d", row.Minute, prevMinute)
		}
		if row.Casualty != casualty.LabelNominal && !casualty.KnownType(casualty.Type(row.Casualty)) {
			return fmt.Errorf("telemetry log: unknown casualty label %q at minute %d", row.Casualty, row.Minute)
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		prev = row.Timestamp
		prevMinute = row.Minute
	}
}

// ReplayLogFile opens a JSONL telemetry log and replays its rows.
func ReplayLogFile(path string, writer RowWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
