package sim

import (
	"encoding/json"
	"os"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

// FileWriter writes telemetry, casualty events, and state rows to JSONL
// files. eventPath or statePath may be empty to skip those logs.
type FileWriter struct {
	rowFile   *os.File
	eventFile *os.File
	stateFile *os.File
	rowEnc    *json.Encoder
	eventEnc  *json.Encoder
	stateEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter.
func NewFileWriter(rowPath, eventPath, statePath string) (*FileWriter, error) {
	rf, err := os.Create(rowPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{rowFile: rf, rowEnc: json.NewEncoder(rf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			if fw.eventFile != nil {
				fw.eventFile.Close()
			}
			rf.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single telemetry row.
func (f *FileWriter) Write(row reactor.Row) error {
	return f.rowEnc.Encode(row)
}

// WriteBatch logs multiple telemetry rows.
func (f *FileWriter) WriteBatch(rows []reactor.Row) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a single casualty event, if enabled.
func (f *FileWriter) WriteEvent(ev casualty.EventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(ev)
}

// WriteEvents logs multiple casualty events.
func (f *FileWriter) WriteEvents(rows []casualty.EventRow) error {
	for _, ev := range rows {
		if err := f.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteState logs a simulation state row, if enabled.
func (f *FileWriter) WriteState(row reactor.StateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	return f.stateEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.rowFile, f.eventFile, f.stateFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
