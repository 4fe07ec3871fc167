package casualty

import (
	"os"
	"time"
)

// Type identifies a casualty scenario.
type Type string

const (
	InjectionOfAir     Type = "injection_of_air"
	ResinOverheat      Type = "resin_overheat"
	FuelElementFailure Type = "fuel_element_failure"
)

// LabelNominal labels samples with no active casualty.
const LabelNominal = "nominal"

// Types lists every recognized casualty type.
var Types = []Type{InjectionOfAir, ResinOverheat, FuelElementFailure}

// KnownType reports whether t is a recognized casualty type.
func KnownType(t Type) bool {
	for _, k := range Types {
		if t == k {
			return true
		}
	}
	return false
}

// Severity grades a casualty.
type Severity string

const (
	SeverityNone  Severity = "none"
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

// KnownSeverity reports whether s is a recognized non-empty severity.
func KnownSeverity(s Severity) bool {
	return s == SeverityMinor || s == SeverityMajor
}

// Casualty lifecycle event names.
const (
	EventStarted        = "started"
	EventEnded          = "ended"
	EventSkippedOverlap = "skipped_overlap"
)

// EventRow describes a casualty lifecycle event.
type EventRow struct {
	RunID     string    `json:"run_id"`
	EventID   string    `json:"event_id"`
	Event     string    `json:"event"`
	Type      Type      `json:"type"`
	Severity  Severity  `json:"severity"`
	Minute    int       `json:"minute"`
	Timestamp time.Time `json:"ts"`
}

// EventTableName is the GreptimeDB table for casualty events. Override with
// the CASUALTY_EVENT_TABLE environment variable.
var EventTableName = func() string {
	if env := os.Getenv("CASUALTY_EVENT_TABLE"); env != "" {
		return env
	}
	return "casualty_events"
}()
