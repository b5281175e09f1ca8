package simulate

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/kirchhoff/pkg/errors"
)

func TestRunScalarDecay(t *testing.T) {
	// dx/dt = -0.5x, x(0) = 7
	p := &Problem{A: [][]float64{{-0.5}}, X0: []float64{7}}
	tr, err := Run(p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Times) != DefaultSamples || tr.Times[len(tr.Times)-1] != DefaultDuration {
		t.Fatalf("grid = %d samples ending at %v", len(tr.Times), tr.Times[len(tr.Times)-1])
	}
	for k, tm := range tr.Times {
		want := 7 * math.Exp(-0.5*tm)
		if math.Abs(tr.States[k][0]-want) > 1e-9 {
			t.Fatalf("x(%v) = %v, want %v", tm, tr.States[k][0], want)
		}
	}
}

func TestRunRotation(t *testing.T) {
	// harmonic oscillator: x'' = -x
	p := &Problem{A: [][]float64{{0, 1}, {-1, 0}}, X0: []float64{1, 0}}
	tr, err := Run(p, Options{Duration: math.Pi, Samples: 3})
	if err != nil {
		t.Fatal(err)
	}
	mid := tr.States[1] // t = π/2
	if math.Abs(mid[0]) > 1e-9 || math.Abs(mid[1]+1) > 1e-9 {
		t.Errorf("X(π/2) = %v, want [0 -1]", mid)
	}
	end := tr.States[2]
	if math.Abs(end[0]+1) > 1e-9 || math.Abs(end[1]) > 1e-9 {
		t.Errorf("X(π) = %v, want [-1 0]", end)
	}
	if got := tr.Component(0); len(got) != 3 || math.Abs(got[0]-1) > 1e-12 {
		t.Errorf("Component(0) = %v", got)
	}
}

func TestRunInvalid(t *testing.T) {
	tests := []struct {
		name string
		p    *Problem
		opts Options
	}{
		{"empty", &Problem{}, Options{}},
		{"not square", &Problem{A: [][]float64{{1, 2}}, X0: []float64{1, 2}}, Options{}},
		{"nan", &Problem{A: [][]float64{{math.NaN()}}, X0: []float64{1}}, Options{}},
		{"one sample", &Problem{A: [][]float64{{1}}, X0: []float64{1}}, Options{Samples: 1}},
		{"negative duration", &Problem{A: [][]float64{{1}}, X0: []float64{1}}, Options{Duration: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.p, tt.opts)
			if err == nil {
				t.Fatal("Run succeeded, want error")
			}
			if !errors.IsUserError(err) {
				t.Errorf("error %v should be a user error", err)
			}
		})
	}
}

func TestReadProblem(t *testing.T) {
	tests := []struct {
		format string
		input  string
	}{
		{"toml", "a = [[-0.5]]\nx0 = [7.0]\n"},
		{"json", `{"a": [[-0.5]], "x0": [7]}`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, err := ReadProblem(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if p.A[0][0] != -0.5 || p.X0[0] != 7 {
				t.Errorf("problem = %+v", p)
			}
		})
	}
	if _, err := ReadProblem(strings.NewReader(""), "yaml"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("yaml error = %v, want UNSUPPORTED", err)
	}
	if _, err := ReadProblem(strings.NewReader(`{"a": [[1]], "x0": [1, 2]}`), "json"); err == nil {
		t.Error("mismatched problem accepted")
	}
}

func TestWriteCSV(t *testing.T) {
	p := &Problem{A: [][]float64{{0, 0}, {0, 0}}, X0: []float64{1, 2}}
	tr, err := Run(p, Options{Duration: 1, Samples: 2})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := tr.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"t", "x[0]", "x[1]"}, {"0", "1", "2"}, {"1", "1", "2"}}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if strings.Join(rows[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestWritePlot(t *testing.T) {
	tr, err := Run(&Problem{A: [][]float64{{-0.5}}, X0: []float64{7}}, Options{Samples: 11})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := tr.WritePlot(&buf, "svg", PlotOptions{}); err != nil {
		t.Fatalf("WritePlot: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("output is not SVG: %.100s", buf.String())
	}
	if err := tr.WritePlot(&buf, "gif", PlotOptions{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("gif error = %v, want UNSUPPORTED", err)
	}
}
