// Package simulate integrates linear time-invariant systems dX/dt = A·X.
//
// The solution of dX/dt = A·X with X(0) = X0 is X(t) = exp(A·t)·X0. [Run]
// evaluates it on an evenly spaced time grid with gonum's matrix
// exponential, so no step-size control is needed and every sample is exact
// up to the accuracy of the exponential.
//
// The trajectory can be written as CSV ([Trajectory.WriteCSV]) or drawn
// with gonum/plot ([Trajectory.Plot]).
package simulate

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/kirchhoff/pkg/errors"
)

// Default sampling: ten time units in 201 samples.
const (
	DefaultDuration = 10.0
	DefaultSamples  = 201
)

// Options controls the time grid.
type Options struct {
	Duration float64 // Last sample time; the first is always 0
	Samples  int     // Number of samples including both ends
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// unusable grids.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Duration == 0 {
		o.Duration = DefaultDuration
	}
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.Duration < 0 || math.IsNaN(o.Duration) || math.IsInf(o.Duration, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "duration must be positive and finite, got %v", o.Duration)
	}
	if o.Samples < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "need at least 2 samples, got %d", o.Samples)
	}
	return nil
}

// Problem is a coefficient matrix and initial state.
type Problem struct {
	A  [][]float64 `json:"a" toml:"a"`
	X0 []float64   `json:"x0" toml:"x0"`
}

// Validate checks that A is square, matches X0, and holds only finite values.
func (p *Problem) Validate() error {
	n := len(p.X0)
	if n == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "initial state is empty")
	}
	if len(p.A) != n {
		return errors.New(errors.ErrCodeInvalidInput, "matrix has %d rows, initial state has %d entries", len(p.A), n)
	}
	for i, row := range p.A {
		if len(row) != n {
			return errors.New(errors.ErrCodeInvalidInput, "matrix row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			if err := errors.ValidateFinite(fmt.Sprintf("a[%d][%d]", i, j), v); err != nil {
				return err
			}
		}
	}
	for i, v := range p.X0 {
		if err := errors.ValidateFinite(fmt.Sprintf("x0[%d]", i), v); err != nil {
			return err
		}
	}
	return nil
}

// ReadProblem decodes a problem from TOML (keys a and x0) or JSON.
func ReadProblem(r io.Reader, format string) (*Problem, error) {
	var p Problem
	switch format {
	case "toml":
		if _, err := toml.NewDecoder(r).Decode(&p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode problem")
		}
	case "json", "":
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode problem")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown problem format %q", format)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Trajectory holds sampled states. States[k][i] is component i at Times[k].
type Trajectory struct {
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// Dim returns the number of state components.
func (t *Trajectory) Dim() int {
	if len(t.States) == 0 {
		return 0
	}
	return len(t.States[0])
}

// Component returns the samples of state component i.
func (t *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(t.States))
	for k, s := range t.States {
		out[k] = s[i]
	}
	return out
}

// Run samples X(t) = exp(A·t)·X0 on opts' time grid.
func Run(p *Problem, opts Options) (*Trajectory, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := len(p.X0)
	a := mat.NewDense(n, n, nil)
	for i, row := range p.A {
		a.SetRow(i, row)
	}
	x0 := mat.NewVecDense(n, append([]float64(nil), p.X0...))

	tr := &Trajectory{
		Times:  make([]float64, opts.Samples),
		States: make([][]float64, opts.Samples),
	}
	step := opts.Duration / float64(opts.Samples-1)

	var at, e mat.Dense
	var x mat.VecDense
	for k := range opts.Samples {
		t := float64(k) * step
		if k == opts.Samples-1 {
			t = opts.Duration
		}
		at.Scale(t, a)
		e.Exp(&at)
		x.MulVec(&e, x0)

		tr.Times[k] = t
		state := make([]float64, n)
		for i := range state {
			state[i] = x.AtVec(i)
		}
		tr.States[k] = state
	}
	return tr, nil
}
