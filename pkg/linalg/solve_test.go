package linalg

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name string
		A    [][]float64
		b    []float64
		want []float64
	}{
		{
			name: "identity",
			A:    [][]float64{{1, 0}, {0, 1}},
			b:    []float64{3, -4},
			want: []float64{3, -4},
		},
		{
			name: "needs pivot",
			A:    [][]float64{{0, 1}, {1, 0}},
			b:    []float64{2, 5},
			want: []float64{5, 2},
		},
		{
			name: "triangle loop",
			A:    [][]float64{{-1, -1, -1}, {-1, 0, 1}, {1, -1, 0}},
			b:    []float64{-6, 0, 0},
			want: []float64{2, 2, 2},
		},
		{
			name: "empty",
			A:    [][]float64{},
			b:    []float64{},
			want: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Solve(tt.A, tt.b)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("x[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSolveDoesNotModifyInputs(t *testing.T) {
	A := [][]float64{{0, 2}, {3, 1}}
	b := []float64{4, 5}
	if _, err := Solve(A, b); err != nil {
		t.Fatal(err)
	}
	if A[0][0] != 0 || A[0][1] != 2 || A[1][0] != 3 || A[1][1] != 1 {
		t.Errorf("A modified: %v", A)
	}
	if b[0] != 4 || b[1] != 5 {
		t.Errorf("b modified: %v", b)
	}
}

func TestSolveMatchesGonum(t *testing.T) {
	A := [][]float64{
		{6, -2, 1, 0},
		{-2, 6, -2, 1},
		{1, -2, 6, -2},
		{0, 1, -2, 6},
	}
	b := []float64{11, -16, 17, -9}

	got, err := Solve(A, b)
	if err != nil {
		t.Fatal(err)
	}

	dense := mat.NewDense(4, 4, nil)
	for i, row := range A {
		dense.SetRow(i, row)
	}
	var want mat.VecDense
	if err := want.SolveVec(dense, mat.NewVecDense(4, b)); err != nil {
		t.Fatalf("gonum SolveVec: %v", err)
	}
	for i := range got {
		if math.Abs(got[i]-want.AtVec(i)) > 1e-9 {
			t.Errorf("x[%d] = %v, gonum %v", i, got[i], want.AtVec(i))
		}
	}
}

func TestSolveSingular(t *testing.T) {
	tests := []struct {
		name string
		A    [][]float64
		b    []float64
	}{
		{"dependent rows", [][]float64{{1, 2}, {2, 4}}, []float64{1, 2}},
		{"zero matrix", [][]float64{{0, 0}, {0, 0}}, []float64{0, 0}},
		{"not square", [][]float64{{1, 2}}, []float64{1}},
		{"rhs mismatch", [][]float64{{1, 0}, {0, 1}}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.A, tt.b)
			if !errors.Is(err, ErrSingular) {
				t.Errorf("error = %v, want ErrSingular", err)
			}
			if !kerrors.Is(err, kerrors.ErrCodeSingular) {
				t.Errorf("code = %v, want SINGULAR_MATRIX", kerrors.GetCode(err))
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{2.00049, 3, 2},
		{1.23456, 3, 1.235},
		{-0.0001, 3, 0},
		{1.5, 0, 2},
		{3.14159, -1, 3.14159},
	}
	for _, tt := range tests {
		got := Round(tt.x, tt.places)
		if got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
		if got == 0 && math.Signbit(got) {
			t.Errorf("Round(%v, %d) returned negative zero", tt.x, tt.places)
		}
	}

	xs := []float64{1.0004, 2.9996}
	out := RoundAll(xs, 3)
	if out[0] != 1 || out[1] != 3 || xs[0] != 1.0004 {
		t.Errorf("RoundAll = %v (input %v)", out, xs)
	}
}
