package reactor

import "math"

// Charging (chemical addition) constants.
const (
	chargingLowPressure  = 2060.0 // charging only starts low in the pressure band
	chargingPressureRise = 100.0  // total pressure added over one charging operation
	chargingPHTarget     = 10.8
	chargingH2Target     = 50.0
)

// Vent-gas (degas) constants.
const (
	ventHighPressure = 2175.0 // venting only starts high in the pressure band
	ventGasTarget    = 60.0
	ventGasRate      = 0.5 // cc/kg removed per minute
	ventPressureRate = 1.2 // psi lost per minute while venting
)

// ChargingOp is an in-progress chemical addition. The casualty engine drives
// the ramp itself while an injection-of-air casualty rides the operation, in
// which case AirInjection is set and the plant leaves the operation alone.
type ChargingOp struct {
	Start        int
	Duration     int
	PHStart      float64
	H2Start      float64
	AirInjection bool
}

type ventOp struct {
	Start         int
	TotalGasStart float64
}

type pressureSmoothing struct {
	Start         int
	StartPressure float64
	Duration      int
}

// Charging returns the in-progress chemical addition, or nil.
func (p *Plant) Charging() *ChargingOp { return p.charging }

// AddingPH reports whether a pH adjustment is pending or in progress.
func (p *Plant) AddingPH() bool { return p.addPH }

// AddingHydrogen reports whether a hydrogen addition is pending or in progress.
func (p *Plant) AddingHydrogen() bool { return p.addH2 }

// VentingGas reports whether a degas operation is in progress.
func (p *Plant) VentingGas() bool { return p.vent != nil }

// BeginCharging starts a chemical addition. With duration <= 0 the pump
// lineup is drawn from the rng: 1, 2, or 3 charging pumps finish in 30, 20,
// or 10 minutes.
func (p *Plant) BeginCharging(duration int) *ChargingOp {
	if duration <= 0 {
		pumps := p.rng.Intn(3) + 1
		duration = [...]int{30, 20, 10}[pumps-1]
	}
	p.charging = &ChargingOp{
		Start:    p.Minute,
		Duration: duration,
		PHStart:  p.PH,
		H2Start:  p.Hydrogen,
	}
	return p.charging
}

// FinishCharging ends the chemical addition and arms the pressure smoothing
// that carries the elevated pressure back onto the baseline oscillation at
// its next mid-crossing.
func (p *Plant) FinishCharging() {
	p.charging = nil
	p.addPH = false
	p.addH2 = false
	p.smoothing = &pressureSmoothing{
		Start:         p.Minute,
		StartPressure: p.Pressure,
		Duration:      p.smoothingDuration(),
	}
	p.calcPressure()
}

// ChargingRampPressurePH applies the per-minute pressure and pH ramp of a
// chemical addition. Shared between normal maintenance and the
// injection-of-air casualty, which layers its own gas behavior on top.
func (p *Plant) ChargingRampPressurePH() {
	op := p.charging
	p.Pressure += chargingPressureRise / float64(op.Duration)
	p.Updated.Pressure = true
	if p.addPH {
		p.PH += (chargingPHTarget - op.PHStart) / float64(op.Duration)
		p.Updated.PH = true
	}
}

func (p *Plant) chargingTick() {
	if p.charging == nil {
		if p.Pressure > chargingLowPressure {
			return
		}
		p.BeginCharging(0)
	}
	op := p.charging
	if op.AirInjection {
		return // the casualty engine owns the operation
	}
	elapsed := p.Minute - op.Start
	if elapsed <= op.Duration-1 {
		p.ChargingRampPressurePH()
		if p.addH2 {
			p.Hydrogen += (chargingH2Target - op.H2Start) / float64(op.Duration)
			p.Updated.Hydrogen = true
		}
		return
	}
	p.FinishCharging()
}

func (p *Plant) ventGasTick() {
	if p.TotalGas <= ventGasTarget {
		// Gas reached the target on its own; stand down so the tick stops.
		p.vent = nil
		p.degas = false
		return
	}
	if p.vent == nil {
		if p.Pressure < ventHighPressure {
			return
		}
		p.vent = &ventOp{Start: p.Minute, TotalGasStart: p.TotalGas}
	}
	op := p.vent
	duration := (op.TotalGasStart - ventGasTarget) / ventGasRate
	elapsed := float64(p.Minute - op.Start)

	if elapsed < duration-1 {
		// Venting removes all dissolved gases in proportion.
		scale := (p.TotalGas - ventGasRate) / p.TotalGas
		p.DissolvedN2 *= scale
		p.DissolvedO2 *= scale
		p.Hydrogen *= scale
		p.Updated.Hydrogen = true
		p.TotalGas -= ventGasRate
		p.Updated.TotalGas = true
		p.Pressure -= ventPressureRate
		p.Updated.Pressure = true
		return
	}
	p.vent = nil
	p.degas = false
}

// smoothingDuration returns the minutes until the pressure baseline next
// crosses its midpoint, given the current simulated time.
func (p *Plant) smoothingDuration() int {
	omega := 2 * math.Pi / oscPeriod
	phase := math.Mod(omega*float64(p.Minute), 2*math.Pi)
	next := math.Mod(2*math.Pi-phase, 2*math.Pi) / omega
	return int(next)
}
