// Package dataset prepares generated telemetry CSVs for model training:
// min-max scaling, sliding-window extraction and a seeded train/test split.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"nrsim/internal/reactor"
)

// FeatureColumns are the continuous channels used as model features, in
// dataset column order.
var FeatureColumns = []string{
	"ph", "hydrogen", "total_gas", "temperature", "pressure", "radioactivity", "power",
}

// Dataset holds one loaded telemetry run: a feature matrix plus the casualty
// label of every sample.
type Dataset struct {
	Features   [][]float64
	Labels     []string
	Severities []string
}

// Load reads a telemetry CSV produced by the simulator.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses telemetry CSV from r. The header must match the simulator's
// column contract.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if len(header) != len(reactor.Columns) {
		return nil, fmt.Errorf("unexpected header: got %d columns, want %d", len(header), len(reactor.Columns))
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		if name != reactor.Columns[i] {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, name, reactor.Columns[i])
		}
		col[name] = i
	}
	featIdx := make([]int, len(FeatureColumns))
	for i, name := range FeatureColumns {
		idx, ok := col[name]
		if !ok {
			return nil, fmt.Errorf("dataset missing column %q", name)
		}
		featIdx[i] = idx
	}
	casIdx, ok := col["casualty"]
	if !ok {
		return nil, fmt.Errorf("dataset missing column %q", "casualty")
	}
	sevIdx, ok := col["severity"]
	if !ok {
		return nil, fmt.Errorf("dataset missing column %q", "severity")
	}

	ds := &Dataset{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row := make([]float64, len(featIdx))
		for i, idx := range featIdx {
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, FeatureColumns[i], err)
			}
			row[i] = v
		}
		ds.Features = append(ds.Features, row)
		ds.Labels = append(ds.Labels, rec[casIdx])
		ds.Severities = append(ds.Severities, rec[sevIdx])
	}
	if len(ds.Features) == 0 {
		return nil, fmt.Errorf("dataset has no samples")
	}
	return ds, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Features) }

// ScaleParams records per-feature min/max so scaled values can be mapped back.
type ScaleParams struct {
	Min []float64
	Max []float64
}

// Scale rescales every feature column into [0,1] in place and returns the
// parameters used. Constant columns map to 0.
func (d *Dataset) Scale() ScaleParams {
	n := len(FeatureColumns)
	p := ScaleParams{Min: make([]float64, n), Max: make([]float64, n)}
	for j := 0; j < n; j++ {
		p.Min[j] = d.Features[0][j]
		p.Max[j] = d.Features[0][j]
	}
	for _, row := range d.Features {
		for j, v := range row {
			if v < p.Min[j] {
				p.Min[j] = v
			}
			if v > p.Max[j] {
				p.Max[j] = v
			}
		}
	}
	for _, row := range d.Features {
		for j := range row {
			span := p.Max[j] - p.Min[j]
			if span == 0 {
				row[j] = 0
				continue
			}
			row[j] = (row[j] - p.Min[j]) / span
		}
	}
	return p
}

// Window is one training sample: a width*features input block and either a
// class label (classification) or the following horizon rows (forecasting).
type Window struct {
	Input    [][]float64
	Label    string
	Severity string
	Future   [][]float64
}

// Windows cuts sliding windows of the given width and stride. With horizon 0
// each window is labeled with the casualty at its last sample; with
// horizon > 0 the window additionally carries the next horizon rows as the
// forecast target.
func (d *Dataset) Windows(width, stride, horizon int) ([]Window, error) {
	if width <= 0 {
		return nil, fmt.Errorf("window width must be positive, got %d", width)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("window stride must be positive, got %d", stride)
	}
	if horizon < 0 {
		return nil, fmt.Errorf("forecast horizon must not be negative, got %d", horizon)
	}
	var out []Window
	for start := 0; start+width+horizon <= d.Len(); start += stride {
		end := start + width
		w := Window{
			Input:    d.Features[start:end],
			Label:    d.Labels[end-1],
			Severity: d.Severities[end-1],
		}
		if horizon > 0 {
			w.Future = d.Features[end : end+horizon]
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("dataset too short for window width %d and horizon %d", width, horizon)
	}
	return out, nil
}

// Split shuffles windows with the given seed and splits them into train and
// test sets, with trainFrac of the samples in the training set.
func Split(windows []Window, trainFrac float64, seed int64) (train, test []Window, err error) {
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, fmt.Errorf("train fraction must be in (0,1), got %g", trainFrac)
	}
	shuffled := make([]Window, len(windows))
	copy(shuffled, windows)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	cut := int(float64(len(shuffled)) * trainFrac)
	return shuffled[:cut], shuffled[cut:], nil
}

// WriteWindows writes windows as flattened CSV rows: width*features input
// values, then the label and severity, then any horizon*features target
// values. Training code reshapes by position.
func WriteWindows(w io.Writer, windows []Window) error {
	cw := csv.NewWriter(w)
	for _, win := range windows {
		rec := make([]string, 0, len(win.Input)*len(FeatureColumns)+2)
		for _, row := range win.Input {
			for _, v := range row {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		rec = append(rec, win.Label, win.Severity)
		for _, row := range win.Future {
			for _, v := range row {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write window: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWindowsFile writes windows to a CSV file at path.
func WriteWindowsFile(path string, windows []Window) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create window file: %w", err)
	}
	if err := WriteWindows(f, windows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
