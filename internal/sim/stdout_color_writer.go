// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"golang.org/x/term"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

// ColorStdoutWriter prints telemetry rows as an aligned, ANSI-colored table.
// Color is disabled automatically when STDOUT is not a terminal.
type ColorStdoutWriter struct {
	out   io.Writer
	tw    *tabwriter.Writer
	once  sync.Once
	color bool
	mu    sync.Mutex
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{
		out:   os.Stdout,
		tw:    tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0),
		color: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Enabled reports whether STDOUT is a terminal and colored table output is
// in use.
func (w *ColorStdoutWriter) Enabled() bool {
	return w.color
}

func (w *ColorStdoutWriter) paint(color, s string) string {
	if !w.color {
		return s
	}
	return color + s + colorReset
}

func (w *ColorStdoutWriter) header() {
	fmt.Fprintln(w.tw, "MIN\tpH\tH2\tTG\tTEMP\tPRESS\tRAD\tPWR\tSAFE\tCASUALTY\tOPS")
}

// Write outputs a single telemetry row.
func (w *ColorStdoutWriter) Write(row reactor.Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.header)

	safe := w.paint(colorGreen, "ok")
	if row.Safety != 0 {
		safe = w.paint(colorRed, "UNSAFE")
	}
	label := w.paint(colorGray, row.Casualty)
	if row.Casualty != casualty.LabelNominal {
		label = w.paint(colorRed, fmt.Sprintf("%s/%s", row.Casualty, row.Severity))
	}
	ops := "-"
	switch {
	case row.Charging:
		ops = w.paint(colorYellow, "charging")
	case row.VentingGas:
		ops = w.paint(colorCyan, "venting")
	}

	fmt.Fprintf(w.tw, "%d\t%.2f\t%.1f\t%.1f\t%.1f\t%.0f\t%.1f\t%.0f\t%s\t%s\t%s\n",
		row.Minute, row.PH, row.Hydrogen, row.TotalGas, row.Temperature,
		row.Pressure, row.Radioactivity, row.Power, safe, label, ops)
	return w.tw.Flush()
}

// WriteBatch outputs multiple telemetry rows.
func (w *ColorStdoutWriter) WriteBatch(rows []reactor.Row) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent prints a casualty lifecycle event.
func (w *ColorStdoutWriter) WriteEvent(ev casualty.EventRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line := fmt.Sprintf("== casualty %s: %s (%s) at minute %d", ev.Event, ev.Type, ev.Severity, ev.Minute)
	fmt.Fprintln(w.out, w.paint(colorYellow, line))
	return nil
}
