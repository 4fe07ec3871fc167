// Writer implementation printing telemetry to STDOUT
package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

// JSONStdoutWriter prints telemetry rows and casualty events as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a single telemetry row.
func (w *JSONStdoutWriter) Write(row reactor.Row) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *JSONStdoutWriter) WriteBatch(rows []reactor.Row) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent outputs a casualty event.
func (w *JSONStdoutWriter) WriteEvent(ev casualty.EventRow) error {
	data, _ := json.Marshal(ev)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteEvents outputs multiple casualty events.
func (w *JSONStdoutWriter) WriteEvents(rows []casualty.EventRow) error {
	for _, ev := range rows {
		_ = w.WriteEvent(ev)
	}
	return nil
}

// WriteState outputs a simulation state row.
func (w *JSONStdoutWriter) WriteState(row reactor.StateRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}
