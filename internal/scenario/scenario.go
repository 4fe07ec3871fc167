package scenario

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"nrsim/internal/casualty"
)

// Scenario defines a named set of scripted casualty events for a run.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Events      []Event `yaml:"events"`
}

// Event schedules one casualty. Onset and Duration are simulated minutes.
type Event struct {
	Type     string `yaml:"type"`
	Onset    int    `yaml:"onset"`
	Duration int    `yaml:"duration"`
	Severity string `yaml:"severity,omitempty"`
}

// Load reads a scenario YAML file and validates it.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read scenario file: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cannot unmarshal scenario file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks event types, severities, and that no two event windows
// overlap. Overlapping windows would make sample labels ambiguous, so they
// are rejected up front rather than resolved at runtime.
func (s *Scenario) Validate() error {
	for i, ev := range s.Events {
		if !casualty.KnownType(casualty.Type(ev.Type)) {
			return fmt.Errorf("scenario event %d: unknown casualty type %q", i, ev.Type)
		}
		if ev.Onset < 0 {
			return fmt.Errorf("scenario event %d: onset must be >= 0, got %d", i, ev.Onset)
		}
		if ev.Duration <= 0 {
			return fmt.Errorf("scenario event %d: duration must be > 0, got %d", i, ev.Duration)
		}
		if ev.Severity != "" && !casualty.KnownSeverity(casualty.Severity(ev.Severity)) {
			return fmt.Errorf("scenario event %d: unknown severity %q", i, ev.Severity)
		}
	}
	ordered := make([]Event, len(s.Events))
	copy(ordered, s.Events)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Onset < ordered[j].Onset })
	for i := 1; i < len(ordered); i++ {
		prev := ordered[i-1]
		if ordered[i].Onset < prev.Onset+prev.Duration {
			return fmt.Errorf("scenario events overlap: %s at minute %d starts inside %s [%d, %d)",
				ordered[i].Type, ordered[i].Onset, prev.Type, prev.Onset, prev.Onset+prev.Duration)
		}
	}
	return nil
}

// Scripts converts the scenario's events into casualty engine scripts.
func (s *Scenario) Scripts() []casualty.Script {
	scripts := make([]casualty.Script, len(s.Events))
	for i, ev := range s.Events {
		scripts[i] = casualty.Script{
			Type:     casualty.Type(ev.Type),
			Onset:    ev.Onset,
			Duration: ev.Duration,
			Severity: casualty.Severity(ev.Severity),
		}
	}
	return scripts
}
