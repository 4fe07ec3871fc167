package sim

import (
	"context"
	"time"

	"nrsim/internal/logging"
)

// Run starts the streaming simulation loop: one sample per tick until the
// configured duration elapses or the context is canceled.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "run_id", s.runID, "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			done, err := s.tick()
			if err != nil {
				log.Error("write failed", "minute", s.plant.Minute, "err", err)
			}
			if done {
				log.Info("run complete", "run_id", s.runID, "rows", s.rowsEmitted)
				return
			}
		case <-ctx.Done():
			log.Info("stopping simulator", "run_id", s.runID)
			return
		}
	}
}

// tick emits one sample, advancing the plant by the sample interval. The
// first tick emits the initial state. Returns done once the configured
// duration has been emitted.
func (s *Simulator) tick() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rowsEmitted > 0 {
		for i := 0; i < s.cfg.SampleIntervalMinutes; i++ {
			s.step()
		}
	}
	if err := s.emit(); err != nil {
		return false, err
	}
	if err := s.writeState(); err != nil {
		return false, err
	}
	return s.rowsEmitted >= s.cfg.Rows(), nil
}
