// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nrsim/internal/casualty"
	"nrsim/internal/reactor"
	"nrsim/internal/scenario"
)

// ErrInvalid marks configuration errors. Generation never starts on an
// invalid configuration; no partial output files are written.
var ErrInvalid = errors.New("invalid simulation config")

// Casualties configures casualty scheduling for a run.
type Casualties struct {
	Mode         string           `yaml:"mode"`
	Scripted     []scenario.Event `yaml:"scripted,omitempty"`
	ScenarioFile string           `yaml:"scenario_file,omitempty"`
}

// RunConfig is the root configuration for one simulation run.
type RunConfig struct {
	RunID                 string             `yaml:"run_id"`
	DurationMinutes       int                `yaml:"duration_minutes"`
	SampleIntervalMinutes int                `yaml:"sample_interval_minutes"`
	Seed                  int64              `yaml:"seed"`
	InitialConditions     reactor.Conditions `yaml:"initial_conditions"`
	Casualties            Casualties         `yaml:"casualties"`
}

// Default returns a runnable baseline configuration: a three-day nominal run
// sampled every minute.
func Default() *RunConfig {
	return &RunConfig{
		RunID:                 "nrsim-run",
		DurationMinutes:       3 * 24 * 60,
		SampleIntervalMinutes: 1,
		Seed:                  1,
		InitialConditions:     reactor.DefaultConditions(),
		Casualties:            Casualties{Mode: string(casualty.ModeRandom)},
	}
}

// Load loads YAML config, validates it against a CUE schema, resolves any
// referenced scenario file, and applies semantic validation.
func Load(configPath, cueSchemaPath string) (*RunConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := &RunConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if (cfg.InitialConditions == reactor.Conditions{}) {
		cfg.InitialConditions = reactor.DefaultConditions()
	}
	if cfg.Casualties.ScenarioFile != "" {
		sc, err := scenario.Load(cfg.Casualties.ScenarioFile)
		if err != nil {
			return nil, err
		}
		cfg.Casualties.Scripted = append(cfg.Casualties.Scripted, sc.Events...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies the semantic rules the CUE schema cannot express.
func (c *RunConfig) Validate() error {
	if c.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration_minutes must be > 0, got %d", ErrInvalid, c.DurationMinutes)
	}
	if c.SampleIntervalMinutes <= 0 {
		return fmt.Errorf("%w: sample_interval_minutes must be > 0, got %d", ErrInvalid, c.SampleIntervalMinutes)
	}
	if c.DurationMinutes%c.SampleIntervalMinutes != 0 {
		return fmt.Errorf("%w: duration_minutes (%d) must be a multiple of sample_interval_minutes (%d)",
			ErrInvalid, c.DurationMinutes, c.SampleIntervalMinutes)
	}
	switch casualty.Mode(c.Casualties.Mode) {
	case casualty.ModeNone, casualty.ModeRandom, casualty.ModeScripted:
	case "":
		return fmt.Errorf("%w: casualties.mode is required (none, random, or scripted)", ErrInvalid)
	default:
		return fmt.Errorf("%w: unknown casualties.mode %q", ErrInvalid, c.Casualties.Mode)
	}
	if casualty.Mode(c.Casualties.Mode) != casualty.ModeScripted && len(c.Casualties.Scripted) > 0 {
		return fmt.Errorf("%w: scripted casualties given but mode is %q", ErrInvalid, c.Casualties.Mode)
	}

	sc := scenario.Scenario{Events: c.Casualties.Scripted}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, ev := range c.Casualties.Scripted {
		if ev.Onset+ev.Duration > c.DurationMinutes {
			return fmt.Errorf("%w: scripted event %d (%s) runs past the end of the simulation (%d > %d)",
				ErrInvalid, i, ev.Type, ev.Onset+ev.Duration, c.DurationMinutes)
		}
	}
	return nil
}

// Mode returns the configured casualty scheduling mode.
func (c *RunConfig) Mode() casualty.Mode {
	return casualty.Mode(c.Casualties.Mode)
}

// Scripts returns the scripted casualties as engine scripts.
func (c *RunConfig) Scripts() []casualty.Script {
	sc := scenario.Scenario{Events: c.Casualties.Scripted}
	return sc.Scripts()
}

// Rows returns the number of samples one run emits.
func (c *RunConfig) Rows() int {
	return c.DurationMinutes / c.SampleIntervalMinutes
}
