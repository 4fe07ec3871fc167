// Plant models primary-coolant water chemistry one minute at a time.
package reactor

import (
	"math"
	"math/rand"
	"time"
)

// Normal operating bands. A reading outside any band marks the reactor unsafe.
const (
	phMin            = 10.0
	phMax            = 11.0
	powerMax         = 100.0
	pressureMin      = 2000.0
	pressureMax      = 2200.0
	totalGasMax      = 75.0
	temperatureMin   = 485.0
	temperatureMax   = 515.0
	hydrogenMin      = 10.0
	hydrogenMax      = 60.0
	radioactivityTol = 5.0
)

// Baseline oscillation constants for pressure and temperature.
const (
	pressureMid    = 2100.0
	pressureAmp    = 95.0
	temperatureMid = 500.0
	temperatureAmp = 14.0
	oscPeriod      = 120.0 // minutes
)

const (
	phDecayRate      = 0.002 // pH loss per minute at 100% power
	henrysLawRef     = 2200.0
	filterEfficiency = 0.95 // cleanup filter retention per minute
	safeSoakMinutes  = 180  // safe time before the radioactivity baseline ratchets
)

// Conditions are the initial reactor plant parameters for a run.
type Conditions struct {
	PH            float64 `yaml:"ph"`
	Power         float64 `yaml:"power"`
	Pressure      float64 `yaml:"pressure"`
	Temperature   float64 `yaml:"temperature"`
	Hydrogen      float64 `yaml:"hydrogen"`
	TotalGas      float64 `yaml:"total_gas"`
	Radioactivity float64 `yaml:"radioactivity"`
}

// DefaultConditions returns the nominal startup state.
func DefaultConditions() Conditions {
	return Conditions{
		PH:            11.0,
		Power:         100.0,
		Pressure:      2100.0,
		Temperature:   500.0,
		Hydrogen:      50.0,
		TotalGas:      60.0,
		Radioactivity: 10.0,
	}
}

// Updated tracks which channels have already been written this minute.
// Casualty profiles and maintenance operations set a channel and mark it so
// the normal-operation calculation does not overwrite it.
type Updated struct {
	Pressure      bool
	Temperature   bool
	PH            bool
	Hydrogen      bool
	TotalGas      bool
	Radioactivity bool
}

// Plant holds the runtime state of the simulated reactor plant.
type Plant struct {
	PH            float64
	Power         float64
	Pressure      float64
	Temperature   float64
	Hydrogen      float64
	TotalGas      float64
	Radioactivity float64

	DissolvedN2 float64
	DissolvedO2 float64

	BaselineRadioactivity float64

	Safety        int // 0 safe, 1 unsafe
	Minute        int
	TimeSinceSafe int

	Updated Updated

	prevPressure float64

	// Maintenance flags and operations.
	addPH     bool
	addH2     bool
	degas     bool
	charging  *ChargingOp
	vent      *ventOp
	smoothing *pressureSmoothing

	rng *rand.Rand
}

// NewPlant creates a plant in the given initial state. All randomness flows
// through rng so a seeded source reproduces a run exactly.
func NewPlant(c Conditions, rng *rand.Rand) *Plant {
	p := &Plant{
		PH:                    c.PH,
		Power:                 c.Power,
		Pressure:              c.Pressure,
		Temperature:           c.Temperature,
		Hydrogen:              c.Hydrogen,
		TotalGas:              c.TotalGas,
		Radioactivity:         c.Radioactivity,
		DissolvedN2:           c.TotalGas - c.Hydrogen,
		BaselineRadioactivity: c.Radioactivity,
		prevPressure:          c.Pressure,
		rng:                   rng,
	}
	// The minute-0 sample is emitted before the first step, so the initial
	// conditions get a safety verdict up front.
	p.evalSafety()
	return p
}

// BeginStep advances simulated time by one minute and resets the per-minute
// channel bookkeeping. The casualty engine runs between BeginStep and
// FinishStep.
func (p *Plant) BeginStep() {
	p.Minute++
	p.Updated = Updated{}
	if p.Safety == 0 {
		p.TimeSinceSafe++
	} else {
		p.TimeSinceSafe = 0
	}
}

// FinishStep runs plant maintenance and computes every channel not already
// written this minute, then re-evaluates the safety status.
func (p *Plant) FinishStep() {
	// Maintenance triggers sit inside the operating bands to keep a margin.
	if p.PH <= 10.2 {
		p.addPH = true
	}
	if p.Hydrogen < 15 {
		p.addH2 = true
	}
	if p.TotalGas > 70 {
		p.degas = true
	}

	if p.degas && p.charging == nil {
		p.ventGasTick()
	}
	if p.smoothing == nil && (p.addPH || p.addH2) && p.vent == nil {
		p.chargingTick()
	}

	// Ordering matters: pressure feeds hydrogen, hydrogen feeds total gas.
	if !p.Updated.Pressure {
		p.calcPressure()
	}
	if !p.Updated.Temperature {
		p.calcTemperature()
	}
	if !p.Updated.PH {
		p.calcPH()
	}
	if !p.Updated.Hydrogen {
		p.calcHydrogen()
	}
	if !p.Updated.TotalGas {
		p.calcTotalGas()
	}
	if !p.Updated.Radioactivity {
		p.calcRadioactivity()
	}

	p.evalSafety()
	p.prevPressure = p.Pressure
}

func (p *Plant) calcPressure() {
	omega := 2 * math.Pi / oscPeriod
	normal := pressureMid + pressureAmp*math.Sin(omega*float64(p.Minute))

	if s := p.smoothing; s != nil {
		elapsed := p.Minute - s.Start
		if elapsed < s.Duration {
			t := float64(elapsed) / float64(s.Duration)
			p.Pressure = (1-t)*s.StartPressure + t*normal
		} else {
			p.Pressure = normal
			p.smoothing = nil
		}
	} else {
		p.Pressure = normal
	}
	p.Updated.Pressure = true
}

func (p *Plant) calcTemperature() {
	omega := 2 * math.Pi / oscPeriod
	p.Temperature = temperatureMid + temperatureAmp*math.Sin(omega*float64(p.Minute))
	p.Updated.Temperature = true
}

func (p *Plant) calcPH() {
	p.PH -= phDecayRate * (p.Power / 100)
	p.Updated.PH = true
}

// calcHydrogen applies Henry's law: dissolved hydrogen tracks the pressure
// change since the previous minute.
func (p *Plant) calcHydrogen() {
	p.Hydrogen += p.Hydrogen * ((p.Pressure - p.prevPressure) / henrysLawRef)
	p.Updated.Hydrogen = true
}

func (p *Plant) calcTotalGas() {
	p.TotalGas = p.Hydrogen + p.DissolvedN2 + p.DissolvedO2
	p.Updated.TotalGas = true
}

func (p *Plant) calcRadioactivity() {
	if p.TimeSinceSafe > safeSoakMinutes && p.Radioactivity > p.BaselineRadioactivity {
		p.BaselineRadioactivity = p.Radioactivity
	}
	// Cleanup filters remove crud-burst and resin activity above baseline.
	if p.Radioactivity > p.BaselineRadioactivity {
		p.Radioactivity *= filterEfficiency
	}
	p.Updated.Radioactivity = true
}

func (p *Plant) evalSafety() {
	switch {
	case p.PH < phMin || p.PH > phMax:
		p.Safety = 1
	case p.Power > powerMax:
		p.Safety = 1
	case p.Pressure < pressureMin || p.Pressure > pressureMax:
		p.Safety = 1
	case p.TotalGas > totalGasMax:
		p.Safety = 1
	case p.Temperature < temperatureMin || p.Temperature > temperatureMax:
		p.Safety = 1
	case p.Hydrogen < hydrogenMin || p.Hydrogen > hydrogenMax:
		p.Safety = 1
	case p.Radioactivity > p.BaselineRadioactivity+radioactivityTol:
		p.Safety = 1
	default:
		p.Safety = 0
	}
}

// Snapshot renders the current plant state as a telemetry row.
func (p *Plant) Snapshot(runID, casualty, severity string, ts time.Time) Row {
	return Row{
		RunID:         runID,
		Minute:        p.Minute,
		PH:            p.PH,
		Hydrogen:      p.Hydrogen,
		TotalGas:      p.TotalGas,
		Temperature:   p.Temperature,
		Pressure:      p.Pressure,
		Radioactivity: p.Radioactivity,
		Power:         p.Power,
		Safety:        p.Safety,
		Casualty:      casualty,
		Severity:      severity,
		Charging:      p.charging != nil,
		VentingGas:    p.vent != nil,
		Timestamp:     ts,
	}
}
