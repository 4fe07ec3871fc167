package dataset

import (
	"fmt"
	"strings"
	"testing"
)

func sampleCSV(rows int) string {
	var b strings.Builder
	b.WriteString("minute,ph,hydrogen,total_gas,temperature,pressure,radioactivity,power,reactor_safety,casualty,severity,chemical_addition,vent_gas\n")
	for i := 0; i < rows; i++ {
		label, severity := "nominal", "none"
		if i >= rows/2 {
			label, severity = "resin_overheat", "major"
		}
		fmt.Fprintf(&b, "%d,%g,%g,%g,%g,%g,%g,100,1,%s,%s,false,false\n",
			i, 10.5+float64(i)*0.01, 50.0+float64(i), 60.0+float64(i),
			500.0+float64(i), 2100.0-float64(i), 10.0, label, severity)
	}
	return b.String()
}

func TestReadRejectsBadHeader(t *testing.T) {
	_, err := Read(strings.NewReader("a,b,c\n1,2,3\n"))
	if err == nil {
		t.Fatal("expected error for wrong header")
	}
}

func TestReadRejectsEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(sampleCSV(0)))
	if err == nil {
		t.Fatal("expected error for dataset with no samples")
	}
}

func TestReadAndScale(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV(10)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ds.Len() != 10 {
		t.Fatalf("expected 10 samples, got %d", ds.Len())
	}
	if ds.Labels[0] != "nominal" || ds.Labels[9] != "resin_overheat" {
		t.Fatalf("labels not preserved: %v", ds.Labels)
	}

	p := ds.Scale()
	for j := range FeatureColumns {
		for _, row := range ds.Features {
			if row[j] < 0 || row[j] > 1 {
				t.Fatalf("feature %s outside [0,1]: %g", FeatureColumns[j], row[j])
			}
		}
		if p.Min[j] > p.Max[j] {
			t.Fatalf("bad scale params for %s: min %g max %g", FeatureColumns[j], p.Min[j], p.Max[j])
		}
	}
	// power is constant 100 and must scale to 0
	powerIdx := -1
	for j, name := range FeatureColumns {
		if name == "power" {
			powerIdx = j
		}
	}
	if ds.Features[3][powerIdx] != 0 {
		t.Fatalf("constant column should scale to 0, got %g", ds.Features[3][powerIdx])
	}
}

func TestWindowsClassification(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV(20)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	wins, err := ds.Windows(5, 5, 0)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(wins) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(wins))
	}
	if wins[0].Label != "nominal" {
		t.Errorf("first window label = %q, want nominal", wins[0].Label)
	}
	if wins[3].Label != "resin_overheat" || wins[3].Severity != "major" {
		t.Errorf("last window label = %q/%q, want resin_overheat/major", wins[3].Label, wins[3].Severity)
	}
	if wins[0].Future != nil {
		t.Errorf("classification windows must not carry a forecast target")
	}
}

func TestWindowsForecast(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV(20)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	wins, err := ds.Windows(8, 1, 4)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	// start can range over [0, 20-8-4]
	if len(wins) != 9 {
		t.Fatalf("expected 9 windows, got %d", len(wins))
	}
	for i, w := range wins {
		if len(w.Input) != 8 || len(w.Future) != 4 {
			t.Fatalf("window %d: input %d future %d", i, len(w.Input), len(w.Future))
		}
	}
	// target rows follow directly after the input block
	if &wins[0].Future[0][0] != &ds.Features[8][0] {
		t.Errorf("forecast target does not follow input block")
	}
}

func TestWindowsValidation(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV(10)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := ds.Windows(0, 1, 0); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := ds.Windows(5, 0, 0); err == nil {
		t.Error("expected error for zero stride")
	}
	if _, err := ds.Windows(5, 1, -1); err == nil {
		t.Error("expected error for negative horizon")
	}
	if _, err := ds.Windows(50, 1, 0); err == nil {
		t.Error("expected error for window wider than dataset")
	}
}

func TestSplitDeterministic(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV(40)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	wins, err := ds.Windows(4, 2, 0)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}

	train1, test1, err := Split(wins, 0.75, 7)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	train2, test2, err := Split(wins, 0.75, 7)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(train1) != len(train2) || len(test1) != len(test2) {
		t.Fatalf("same seed produced different split sizes")
	}
	if len(train1)+len(test1) != len(wins) {
		t.Fatalf("split lost windows: %d + %d != %d", len(train1), len(test1), len(wins))
	}
	for i := range train1 {
		if train1[i].Label != train2[i].Label || &train1[i].Input[0][0] != &train2[i].Input[0][0] {
			t.Fatalf("same seed produced different shuffle at %d", i)
		}
	}

	if _, _, err := Split(wins, 1.5, 7); err == nil {
		t.Error("expected error for train fraction outside (0,1)")
	}
}

func TestWriteWindows(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV(12)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	wins, err := ds.Windows(3, 3, 2)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}

	var out strings.Builder
	if err := WriteWindows(&out, wins); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(wins) {
		t.Fatalf("expected %d lines, got %d", len(wins), len(lines))
	}
	// 3*7 input values + label + severity + 2*7 target values
	want := 3*len(FeatureColumns) + 2 + 2*len(FeatureColumns)
	if got := len(strings.Split(lines[0], ",")); got != want {
		t.Fatalf("expected %d fields per line, got %d", want, got)
	}
}
