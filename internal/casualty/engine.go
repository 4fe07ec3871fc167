// Casualty engine stepping fault scenarios alongside the plant model.
package casualty

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"nrsim/internal/reactor"
)

// Mode selects how casualties are scheduled.
type Mode string

const (
	ModeNone     Mode = "none"
	ModeRandom   Mode = "random"
	ModeScripted Mode = "scripted"
)

// Script is a pre-planned casualty with a fixed onset window. Onset and
// Duration are in simulated minutes. An empty Severity is drawn at onset.
type Script struct {
	Type     Type
	Onset    int
	Duration int
	Severity Severity
}

// Random-mode scheduling constants, per minute once the plant has been safe
// long enough. Only one casualty can be active at a time.
const (
	safeSoakMinutes   = 180
	airInjectionProb  = 0.4 // chance an air injection develops during charging
	airOccurrenceProb = 0.6
	airMinorProb      = 0.6
	resinOverheatProb = 0.15
	fuelFailureProb   = 0.15
)

// Resin overheat profile constants.
const (
	overheatLimitF      = 515.0
	overheatRecoveryF   = 513.5
	resinExhaustionRate = 0.002
	resinCrudRate       = 0.15
)

// Fuel element failure profile constants.
const (
	fuelFailureWindow = 100 // minutes before the baseline ratchets
	fuelMinorRadRate  = 3.0
	fuelMajorRadRate  = 6.0
)

// Air injection profile constants.
const (
	airN2PerO2  = (0.78 / 0.22) * 0.075 // nitrogen carried along per unit oxygen
	airPHRise   = 1.5
	airCrudRise = 50.0
)

// Engine schedules and advances casualty scenarios against a reactor plant.
type Engine struct {
	runID   string
	mode    Mode
	scripts []scriptState
	rng     *rand.Rand
	now     func() time.Time

	active *activeCasualty
	events []EventRow
}

type scriptState struct {
	Script
	fired bool
}

type activeCasualty struct {
	typ      Type
	severity Severity
	start    int
	budget   int // scripted window in minutes, 0 when drawn

	// resin overheat
	overheatStart  int
	timeAboveLimit int
	targetTemp     float64
	initialPH      float64
	initialRad     float64

	// fuel element failure
	failureStart  int
	failureTarget float64
	window        int

	// injection of air
	h2Start float64
	extraO2 float64
	deltaO2 float64
}

// NewEngine creates a casualty engine. The rng must be the run's seeded
// source so casualty draws reproduce with the run. now may be nil.
func NewEngine(runID string, mode Mode, scripts []Script, rng *rand.Rand, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	states := make([]scriptState, len(scripts))
	for i, s := range scripts {
		states[i] = scriptState{Script: s}
	}
	return &Engine{runID: runID, mode: mode, scripts: states, rng: rng, now: now}
}

// Label returns the casualty label and severity for the current minute.
func (e *Engine) Label() (string, string) {
	if e.active == nil {
		return LabelNominal, string(SeverityNone)
	}
	return string(e.active.typ), string(e.active.severity)
}

// Active reports whether a casualty is in progress.
func (e *Engine) Active() bool { return e.active != nil }

// DrainEvents returns lifecycle events recorded since the last drain.
func (e *Engine) DrainEvents() []EventRow {
	ev := e.events
	e.events = nil
	return ev
}

// Step schedules and advances casualties for the current minute. Call
// between Plant.BeginStep and Plant.FinishStep. The active casualty steps
// before scheduling so a window ending this minute frees the engine for a
// back-to-back script.
func (e *Engine) Step(p *reactor.Plant) {
	if e.active != nil {
		e.stepActive(p)
	}
	before := e.active
	switch e.mode {
	case ModeRandom:
		e.scheduleRandom(p)
	case ModeScripted:
		e.scheduleScripted(p)
	}
	if e.active != nil && e.active != before {
		e.stepActive(p)
	}
}

func (e *Engine) stepActive(p *reactor.Plant) {
	switch e.active.typ {
	case InjectionOfAir:
		e.stepInjectionOfAir(p)
	case ResinOverheat:
		e.stepResinOverheat(p)
	case FuelElementFailure:
		e.stepFuelElementFailure(p)
	}
}

// Inject force-starts a casualty regardless of mode, used by the admin
// surface in streaming runs. Returns false if a casualty is already active.
func (e *Engine) Inject(p *reactor.Plant, t Type, severity Severity, duration int) bool {
	if e.active != nil {
		e.logEvent(EventSkippedOverlap, t, severity, p.Minute)
		return false
	}
	if !KnownSeverity(severity) {
		severity = e.drawSeverity(t)
	}
	e.start(p, t, severity, duration)
	return true
}

func (e *Engine) scheduleRandom(p *reactor.Plant) {
	if e.active != nil || p.TimeSinceSafe <= safeSoakMinutes {
		return
	}
	// An injection of air can only develop while chemical addition is in
	// progress and hydrogen is not being restored.
	if op := p.Charging(); op != nil {
		if !p.AddingHydrogen() && e.rng.Float64() < airInjectionProb && e.rng.Float64() < airOccurrenceProb {
			e.start(p, InjectionOfAir, e.drawSeverity(InjectionOfAir), 0)
		}
		return
	}
	r := e.rng.Float64()
	switch {
	case r < resinOverheatProb:
		e.start(p, ResinOverheat, e.drawSeverity(ResinOverheat), 0)
	case r < resinOverheatProb+fuelFailureProb:
		e.start(p, FuelElementFailure, e.drawSeverity(FuelElementFailure), 0)
	}
}

func (e *Engine) scheduleScripted(p *reactor.Plant) {
	for i := range e.scripts {
		s := &e.scripts[i]
		if s.fired || p.Minute < s.Onset {
			continue
		}
		s.fired = true
		if e.active != nil {
			e.logEvent(EventSkippedOverlap, s.Type, s.Severity, p.Minute)
			continue
		}
		sev := s.Severity
		if !KnownSeverity(sev) {
			sev = e.drawSeverity(s.Type)
		}
		e.start(p, s.Type, sev, s.Duration)
	}
}

func (e *Engine) drawSeverity(t Type) Severity {
	p := 0.5
	if t == InjectionOfAir {
		p = airMinorProb
	}
	if e.rng.Float64() < p {
		return SeverityMinor
	}
	return SeverityMajor
}

func (e *Engine) start(p *reactor.Plant, t Type, severity Severity, duration int) {
	a := &activeCasualty{typ: t, severity: severity, start: p.Minute, budget: duration, overheatStart: -1, failureStart: -1}
	switch t {
	case InjectionOfAir:
		op := p.Charging()
		if op == nil {
			op = p.BeginCharging(duration)
		}
		op.AirInjection = true
		a.h2Start = p.Hydrogen
		a.extraO2 = float64(e.rng.Intn(9) + 2) // 2..10 cc/kg
		if severity == SeverityMinor {
			lo := math.Min(5, a.h2Start)
			a.deltaO2 = lo + e.rng.Float64()*(a.h2Start-lo)
		} else {
			a.deltaO2 = a.h2Start + a.extraO2
		}
	case ResinOverheat:
		a.timeAboveLimit = e.rng.Intn(17) + 8 // 8..24 minutes above limit
		if severity == SeverityMinor {
			a.targetTemp = float64(e.rng.Intn(11) + 520)
		} else {
			a.targetTemp = float64(e.rng.Intn(11) + 540)
		}
	case FuelElementFailure:
		a.window = fuelFailureWindow
		if duration > 0 {
			a.window = duration
		}
		if severity == SeverityMinor {
			a.failureTarget = float64(e.rng.Intn(36) + 15) // 15..50 rad
		} else {
			a.failureTarget = float64(e.rng.Intn(26) + 75) // 75..100 rad
		}
	}
	e.active = a
	e.logEvent(EventStarted, t, severity, p.Minute)
}

func (e *Engine) release(p *reactor.Plant) {
	e.logEvent(EventEnded, e.active.typ, e.active.severity, p.Minute)
	e.active = nil
}

// stepInjectionOfAir rides the in-progress chemical addition: oxygen consumes
// dissolved hydrogen, nitrogen rides in with the air, and a major injection
// shocks pH and causes a crud burst.
func (e *Engine) stepInjectionOfAir(p *reactor.Plant) {
	a := e.active
	op := p.Charging()
	if op == nil {
		e.release(p)
		return
	}
	dur := float64(op.Duration)
	stepN2 := a.deltaO2 * airN2PerO2 / dur

	elapsed := p.Minute - op.Start
	if elapsed >= op.Duration {
		p.FinishCharging()
		e.release(p)
		return
	}

	p.ChargingRampPressurePH()

	if a.severity == SeverityMinor {
		p.Hydrogen -= a.deltaO2 / dur
		p.Updated.Hydrogen = true
		p.DissolvedN2 += stepN2
		p.TotalGas = p.Hydrogen + p.DissolvedO2 + p.DissolvedN2
		p.Updated.TotalGas = true
		return
	}

	// Major injection: chemical shock raises pH and releases crud.
	p.PH += airPHRise * (a.extraO2 / 10) / dur
	p.Updated.PH = true
	p.Radioactivity += airCrudRise * (a.extraO2 / 10) / dur
	p.Updated.Radioactivity = true

	// Hydrogen burns off first, then free oxygen accumulates.
	h2Phase := (a.h2Start / (a.deltaO2 + a.extraO2 + a.h2Start)) * dur
	if float64(elapsed) <= h2Phase {
		p.Hydrogen -= a.h2Start / h2Phase
	} else {
		p.Hydrogen = 0
		p.DissolvedO2 += a.extraO2 / (dur - h2Phase)
	}
	p.Updated.Hydrogen = true
	p.DissolvedN2 += stepN2
	p.TotalGas = p.Hydrogen + p.DissolvedO2 + p.DissolvedN2
	p.Updated.TotalGas = true
}

// stepResinOverheat ramps temperature to the operating limit, then follows a
// sine arc to the overheat target while the exhausting resin bed drives pH
// and, for a major casualty, radioactivity.
func (e *Engine) stepResinOverheat(p *reactor.Plant) {
	a := e.active
	// A scripted window is authoritative: the warm-up ramp counts against it.
	if a.budget > 0 && p.Minute-a.start >= a.budget {
		p.Temperature = overheatRecoveryF
		e.release(p)
		return
	}
	if a.overheatStart < 0 && p.Temperature < overheatLimitF {
		p.Temperature++
		p.Updated.Temperature = true
		return // remaining channels update normally this minute
	}
	if a.overheatStart < 0 {
		a.overheatStart = p.Minute
		if a.budget > 0 {
			a.timeAboveLimit = a.budget - (p.Minute - a.start)
			if a.timeAboveLimit < 1 {
				a.timeAboveLimit = 1
			}
		}
		a.initialPH = p.PH
		a.initialRad = p.Radioactivity
	}

	elapsed := p.Minute - a.overheatStart
	if a.budget == 0 && elapsed >= a.timeAboveLimit-1 {
		// Settle just inside the band; the baseline oscillation takes over.
		p.Temperature = overheatRecoveryF
		e.release(p)
		return
	}

	p.Temperature = overheatLimitF + (a.targetTemp-overheatLimitF)*math.Sin(math.Pi/float64(a.timeAboveLimit)*float64(elapsed))
	p.Updated.Temperature = true

	factor := resinExhaustionRate * (p.Temperature / overheatLimitF)
	p.PH += a.initialPH * factor
	p.Updated.PH = true

	if a.severity == SeverityMajor {
		p.Radioactivity += a.initialRad * resinCrudRate * (p.Temperature / overheatLimitF)
		p.Updated.Radioactivity = true
	}
}

// stepFuelElementFailure climbs radioactivity toward the failure target and,
// once the window closes, ratchets the plant's baseline up to the new level.
func (e *Engine) stepFuelElementFailure(p *reactor.Plant) {
	a := e.active
	if a.failureStart < 0 {
		a.failureStart = p.Minute
	}
	if p.Minute-a.failureStart >= a.window {
		p.BaselineRadioactivity = p.Radioactivity
		e.release(p)
		return
	}

	rate := fuelMinorRadRate
	if a.severity == SeverityMajor {
		rate = fuelMajorRadRate
	}
	if p.Radioactivity < a.failureTarget+p.BaselineRadioactivity {
		p.Radioactivity += rate
	}
	p.Updated.Radioactivity = true
}

func (e *Engine) logEvent(event string, t Type, severity Severity, minute int) {
	e.events = append(e.events, EventRow{
		RunID:     e.runID,
		EventID:   uuid.New().String(),
		Event:     event,
		Type:      t,
		Severity:  severity,
		Minute:    minute,
		Timestamp: e.now().UTC(),
	})
}
