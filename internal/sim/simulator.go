// Simulator orchestrating the plant model, casualty engine, and writers
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"nrsim/internal/casualty"
	"nrsim/internal/config"
	"nrsim/internal/logging"
	"nrsim/internal/reactor"
)

// RowWriter is an interface to support different output writers.
type RowWriter interface {
	Write(reactor.Row) error
}

// Optional: writers can also support batch mode.
type batchRowWriter interface {
	WriteBatch([]reactor.Row) error
}

// Simulator drives one simulation run: it advances the plant minute by
// minute, lets the casualty engine perturb it, and hands labeled samples to
// the configured writers.
type Simulator struct {
	runID       string
	cfg         *config.RunConfig
	plant       *reactor.Plant
	engine      *casualty.Engine
	writer      RowWriter
	eventWriter EventWriter
	stateWriter StateWriter

	tickInterval time.Duration
	rowsEmitted  int
	now          func() time.Time
	mu           sync.Mutex
}

// New initializes a simulator from a validated run configuration. The event
// and state writers may be nil. tickInterval only matters for streaming runs.
func New(cfg *config.RunConfig, writer RowWriter, eventWriter EventWriter, stateWriter StateWriter, tickInterval time.Duration) *Simulator {
	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Simulator{
		runID:        cfg.RunID,
		cfg:          cfg,
		plant:        reactor.NewPlant(cfg.InitialConditions, rng),
		engine:       casualty.NewEngine(cfg.RunID, cfg.Mode(), cfg.Scripts(), rng, nil),
		writer:       writer,
		eventWriter:  eventWriter,
		stateWriter:  stateWriter,
		tickInterval: tickInterval,
		now:          time.Now,
	}
}

// GenerateDataset runs the whole configured duration as fast as possible.
// It emits exactly cfg.Rows() samples: the plant advances in one-minute
// steps and every sample_interval-th minute is written out.
func (s *Simulator) GenerateDataset(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info("generating dataset",
		"run_id", s.runID,
		"duration_minutes", s.cfg.DurationMinutes,
		"rows", s.cfg.Rows(),
		"seed", s.cfg.Seed,
		"casualty_mode", s.cfg.Casualties.Mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	for minute := 0; minute < s.cfg.DurationMinutes; minute++ {
		if minute > 0 {
			s.step()
		}
		if minute%s.cfg.SampleIntervalMinutes == 0 {
			if err := s.emit(); err != nil {
				return err
			}
		}
	}
	log.Info("dataset complete", "run_id", s.runID, "rows", s.rowsEmitted)
	return nil
}

// step advances the coupled plant/casualty model by one simulated minute.
func (s *Simulator) step() {
	s.plant.BeginStep()
	s.engine.Step(s.plant)
	s.plant.FinishStep()
}

// emit writes the current sample and drains any casualty lifecycle events.
func (s *Simulator) emit() error {
	label, severity := s.engine.Label()
	row := s.plant.Snapshot(s.runID, label, severity, s.now().UTC())
	if err := s.writer.Write(row); err != nil {
		return err
	}
	s.rowsEmitted++

	events := s.engine.DrainEvents()
	if len(events) == 0 || s.eventWriter == nil {
		return nil
	}
	if bw, ok := s.eventWriter.(batchEventWriter); ok {
		return bw.WriteEvents(events)
	}
	for _, ev := range events {
		if err := s.eventWriter.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) writeState() error {
	if s.stateWriter == nil {
		return nil
	}
	label, severity := s.engine.Label()
	return s.stateWriter.WriteState(reactor.StateRow{
		RunID:         s.runID,
		Minute:        s.plant.Minute,
		Casualty:      label,
		Severity:      severity,
		Charging:      s.plant.Charging() != nil,
		VentingGas:    s.plant.VentingGas(),
		TimeSinceSafe: s.plant.TimeSinceSafe,
		RowsEmitted:   s.rowsEmitted,
		Timestamp:     s.now().UTC(),
	})
}

// InjectCasualty force-starts a casualty, used by the admin surface during
// streaming runs. It reports whether the casualty was accepted.
func (s *Simulator) InjectCasualty(t casualty.Type, severity casualty.Severity, duration int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Inject(s.plant, t, severity, duration)
}

// Status is a point-in-time view of the run for the admin surface and TUI.
type Status struct {
	RunID         string  `json:"run_id"`
	Minute        int     `json:"minute"`
	PH            float64 `json:"ph"`
	Hydrogen      float64 `json:"hydrogen"`
	TotalGas      float64 `json:"total_gas"`
	Temperature   float64 `json:"temperature"`
	Pressure      float64 `json:"pressure"`
	Radioactivity float64 `json:"radioactivity"`
	Power         float64 `json:"power"`
	Safety        int     `json:"reactor_safety"`
	Casualty      string  `json:"casualty"`
	Severity      string  `json:"severity"`
	Charging      bool    `json:"chemical_addition"`
	VentingGas    bool    `json:"vent_gas"`
	TimeSinceSafe int     `json:"time_since_safe"`
	RowsEmitted   int     `json:"rows_emitted"`
}

// Status returns the current simulation state.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, severity := s.engine.Label()
	return Status{
		RunID:         s.runID,
		Minute:        s.plant.Minute,
		PH:            s.plant.PH,
		Hydrogen:      s.plant.Hydrogen,
		TotalGas:      s.plant.TotalGas,
		Temperature:   s.plant.Temperature,
		Pressure:      s.plant.Pressure,
		Radioactivity: s.plant.Radioactivity,
		Power:         s.plant.Power,
		Safety:        s.plant.Safety,
		Casualty:      label,
		Severity:      severity,
		Charging:      s.plant.Charging() != nil,
		VentingGas:    s.plant.VentingGas(),
		TimeSinceSafe: s.plant.TimeSinceSafe,
		RowsEmitted:   s.rowsEmitted,
	}
}

// Config returns the run configuration.
func (s *Simulator) Config() *config.RunConfig {
	return s.cfg
}
