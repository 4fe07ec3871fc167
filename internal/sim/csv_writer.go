// CSV dataset writer, the unit of exchange with model training
package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"nrsim/internal/reactor"
)

// CSVWriter writes telemetry rows as a CSV dataset with the column contract
// from reactor.Columns. Output is deterministic: identical rows serialize to
// identical bytes, so seeded runs reproduce files exactly.
type CSVWriter struct {
	f *os.File
	w *csv.Writer
}

// NewCSVWriter creates the output file and writes the header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create dataset file: %w", err)
	}
	cw := &CSVWriter{f: f, w: csv.NewWriter(f)}
	if err := cw.w.Write(reactor.Columns); err != nil {
		f.Close()
		return nil, err
	}
	return cw, nil
}

// Write appends a single row.
func (c *CSVWriter) Write(row reactor.Row) error {
	return c.w.Write(row.Record())
}

// WriteBatch appends multiple rows.
func (c *CSVWriter) WriteBatch(rows []reactor.Row) error {
	for _, r := range rows {
		if err := c.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the dataset file.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// WriteCSV streams rows to w with the standard header, for callers that
// manage their own files.
func WriteCSV(w io.Writer, rows []reactor.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reactor.Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
