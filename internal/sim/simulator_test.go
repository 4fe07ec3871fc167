package sim

import (
	"context"
	"testing"
	"time"

	"nrsim/internal/casualty"
	"nrsim/internal/config"
	"nrsim/internal/reactor"
	"nrsim/internal/scenario"
)

// MockWriter collects telemetry rows for validation.
type MockWriter struct {
	Rows []reactor.Row
}

func (w *MockWriter) Write(row reactor.Row) error {
	w.Rows = append(w.Rows, row)
	return nil
}

type MockEventWriter struct {
	Events []casualty.EventRow
}

func (w *MockEventWriter) WriteEvent(ev casualty.EventRow) error {
	w.Events = append(w.Events, ev)
	return nil
}

type MockStateWriter struct {
	States []reactor.StateRow
}

func (w *MockStateWriter) WriteState(row reactor.StateRow) error {
	w.States = append(w.States, row)
	return nil
}

func testConfig(duration, interval int, seed int64) *config.RunConfig {
	cfg := config.Default()
	cfg.RunID = "test-run"
	cfg.DurationMinutes = duration
	cfg.SampleIntervalMinutes = interval
	cfg.Seed = seed
	cfg.Casualties.Mode = string(casualty.ModeNone)
	return cfg
}

func TestGenerateDatasetRowCount(t *testing.T) {
	cfg := testConfig(1000, 1, 42)
	writer := &MockWriter{}
	s := New(cfg, writer, nil, nil, time.Second)

	if err := s.GenerateDataset(context.Background()); err != nil {
		t.Fatalf("GenerateDataset: %v", err)
	}
	if len(writer.Rows) != 1000 {
		t.Fatalf("emitted %d rows, want 1000", len(writer.Rows))
	}
	for i, row := range writer.Rows {
		if row.Minute != i {
			t.Fatalf("row %d carries minute %d, want %d", i, row.Minute, i)
		}
		if row.Casualty != casualty.LabelNominal {
			t.Fatalf("row %d labeled %q on a casualty-free run", i, row.Casualty)
		}
	}
}

func TestGenerateDatasetSampleInterval(t *testing.T) {
	cfg := testConfig(600, 5, 1)
	writer := &MockWriter{}
	s := New(cfg, writer, nil, nil, time.Second)

	if err := s.GenerateDataset(context.Background()); err != nil {
		t.Fatalf("GenerateDataset: %v", err)
	}
	if len(writer.Rows) != 120 {
		t.Fatalf("emitted %d rows, want 120", len(writer.Rows))
	}
	for i, row := range writer.Rows {
		if row.Minute != i*5 {
			t.Fatalf("row %d carries minute %d, want %d", i, row.Minute, i*5)
		}
	}
}

func TestGenerateDatasetDeterministic(t *testing.T) {
	generate := func() []reactor.Row {
		cfg := testConfig(1440, 1, 42)
		cfg.Casualties.Mode = string(casualty.ModeRandom)
		writer := &MockWriter{}
		s := New(cfg, writer, nil, nil, time.Second)
		if err := s.GenerateDataset(context.Background()); err != nil {
			t.Fatalf("GenerateDataset: %v", err)
		}
		return writer.Rows
	}

	a, b := generate(), generate()
	if len(a) != len(b) {
		t.Fatalf("row counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		ra, rb := a[i].Record(), b[i].Record()
		for j := range ra {
			if ra[j] != rb[j] {
				t.Fatalf("row %d column %s differs: %q vs %q", i, reactor.Columns[j], ra[j], rb[j])
			}
		}
	}
}

func TestGenerateDatasetScriptedMatchesBaselineBeforeOnset(t *testing.T) {
	const onset, duration = 500, 50
	generate := func(scripted bool) []reactor.Row {
		cfg := testConfig(1000, 1, 42)
		if scripted {
			cfg.Casualties.Mode = string(casualty.ModeScripted)
			cfg.Casualties.Scripted = []scenario.Event{
				{Type: string(casualty.FuelElementFailure), Onset: onset, Duration: duration, Severity: "major"},
			}
		}
		writer := &MockWriter{}
		s := New(cfg, writer, nil, nil, time.Second)
		if err := s.GenerateDataset(context.Background()); err != nil {
			t.Fatalf("GenerateDataset: %v", err)
		}
		return writer.Rows
	}

	nominal := generate(false)
	scripted := generate(true)

	for i := 0; i < onset; i++ {
		ra, rb := nominal[i].Record(), scripted[i].Record()
		for j := range ra {
			if ra[j] != rb[j] {
				t.Fatalf("pre-onset row %d differs from baseline in column %s", i, reactor.Columns[j])
			}
		}
	}
	labeled := 0
	for i, row := range scripted {
		if row.Casualty != string(casualty.FuelElementFailure) {
			continue
		}
		labeled++
		if i < onset || i >= onset+duration {
			t.Fatalf("row %d labeled %q outside the [%d, %d) window", i, row.Casualty, onset, onset+duration)
		}
	}
	if labeled != duration {
		t.Fatalf("%d rows carry the casualty label, want %d", labeled, duration)
	}
}

func TestGenerateDatasetFlagsUnsafeInitialConditions(t *testing.T) {
	cfg := testConfig(10, 1, 1)
	cfg.InitialConditions.PH = 9.5
	writer := &MockWriter{}
	s := New(cfg, writer, nil, nil, time.Second)

	if err := s.GenerateDataset(context.Background()); err != nil {
		t.Fatalf("GenerateDataset: %v", err)
	}
	if writer.Rows[0].Safety != 1 {
		t.Fatalf("row 0 with pH %.1f reports safety %d, want 1", cfg.InitialConditions.PH, writer.Rows[0].Safety)
	}
}

func TestTickEmitsAndFinishes(t *testing.T) {
	cfg := testConfig(10, 1, 1)
	writer := &MockWriter{}
	events := &MockEventWriter{}
	states := &MockStateWriter{}
	s := New(cfg, writer, events, states, time.Millisecond)

	var done bool
	var err error
	for i := 0; i < 20 && !done; i++ {
		done, err = s.tick()
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if !done {
		t.Fatal("run never reported completion")
	}
	if len(writer.Rows) != 10 {
		t.Fatalf("emitted %d rows, want 10", len(writer.Rows))
	}
	if len(states.States) != 10 {
		t.Fatalf("emitted %d state rows, want 10", len(states.States))
	}
	if states.States[9].RowsEmitted != 10 {
		t.Fatalf("final state reports %d rows, want 10", states.States[9].RowsEmitted)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := testConfig(100000, 1, 1)
	writer := &MockWriter{}
	s := New(cfg, writer, nil, nil, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(finished)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	if s.Status().RowsEmitted == 0 {
		t.Fatal("no rows emitted before cancellation")
	}
}

func TestStatusReflectsInjection(t *testing.T) {
	cfg := testConfig(100, 1, 1)
	s := New(cfg, &MockWriter{}, nil, nil, time.Second)

	if got := s.Status(); got.Casualty != casualty.LabelNominal {
		t.Fatalf("initial casualty label = %q, want nominal", got.Casualty)
	}
	if !s.InjectCasualty(casualty.ResinOverheat, casualty.SeverityMinor, 10) {
		t.Fatal("injection rejected on idle simulator")
	}
	if got := s.Status(); got.Casualty != string(casualty.ResinOverheat) {
		t.Fatalf("casualty label = %q after injection", got.Casualty)
	}
	if s.InjectCasualty(casualty.FuelElementFailure, casualty.SeverityMinor, 10) {
		t.Fatal("second injection accepted while one is active")
	}
}
