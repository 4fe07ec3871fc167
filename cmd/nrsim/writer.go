package main

import (
	"os"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
	"nrsim/internal/sim"
)

// newWriters assembles the row, event and state writers for a streaming run
// based on flags and environment. It returns a cleanup function closing any
// opened resources.
func newWriters(runID string, printOnly, useTUI bool, logFile string) (sim.RowWriter, sim.EventWriter, sim.StateWriter, func(), error) {
	cleanup := func() {}

	var rw sim.RowWriter
	var ew sim.EventWriter
	var sw sim.StateWriter

	switch {
	case useTUI:
		tui := sim.NewTUIWriter(runID)
		rw, ew, sw = tui, tui, tui
		cleanup = func() { tui.Close() }
	case printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "":
		color := sim.NewColorStdoutWriter()
		if color.Enabled() {
			rw, ew = color, color
		} else {
			j := sim.NewJSONStdoutWriter()
			rw, ew, sw = j, j, j
		}
	default:
		endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
		w, err := sim.NewGreptimeDBWriter(endpoint, "public",
			reactor.RowTableName, casualty.EventTableName, reactor.StateTableName)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		rw, ew, sw = w, w, w
	}

	if logFile == "" {
		return rw, ew, sw, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".events", logFile+".state")
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.RowWriter{rw, fw},
		appendEventWriters(ew, fw),
		appendStateWriters(sw, fw),
	)
	prev := cleanup
	cleanup = func() {
		fw.Close()
		prev()
	}
	return mw, mw, mw, cleanup, nil
}

func appendEventWriters(ew sim.EventWriter, fw *sim.FileWriter) []sim.EventWriter {
	if ew == nil {
		return []sim.EventWriter{fw}
	}
	return []sim.EventWriter{ew, fw}
}

func appendStateWriters(sw sim.StateWriter, fw *sim.FileWriter) []sim.StateWriter {
	if sw == nil {
		return []sim.StateWriter{fw}
	}
	return []sim.StateWriter{sw, fw}
}

// newRowWriter creates a row writer without event or state handling, used by
// replay.
func newRowWriter(printOnly bool) (sim.RowWriter, func(), error) {
	rw, _, _, cleanup, err := newWriters("replay", printOnly, false, "")
	return rw, cleanup, err
}
