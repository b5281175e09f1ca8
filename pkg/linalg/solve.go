// Package linalg solves small dense linear systems.
//
// [Solve] uses Gaussian elimination with partial pivoting. Inputs are never
// modified. Rounding is not part of the solve; use [Round] or [RoundAll] when
// presenting results.
package linalg

import (
	"errors"
	"math"

	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

// Tolerance is the relative pivot magnitude below which a matrix is treated
// as singular. It is scaled by the largest absolute entry of the matrix.
const Tolerance = 1e-12

// ErrSingular is wrapped by every [Solve] failure.
var ErrSingular = errors.New("matrix is singular")

// Solve returns x such that A·x = b.
//
// A must be square with len(b) rows. Dimension mismatches and (numerically)
// singular matrices fail with SINGULAR_MATRIX wrapping [ErrSingular].
func Solve(A [][]float64, b []float64) ([]float64, error) {
	n := len(A)
	if len(b) != n {
		return nil, kerrors.Wrap(kerrors.ErrCodeSingular, ErrSingular, "%d rows but %d right-hand values", n, len(b))
	}
	for i, row := range A {
		if len(row) != n {
			return nil, kerrors.Wrap(kerrors.ErrCodeSingular, ErrSingular, "row %d has %d columns, want %d", i, len(row), n)
		}
	}
	if n == 0 {
		return []float64{}, nil
	}

	// Augmented copy [A | b]
	m := make([][]float64, n)
	scale := 0.0
	for i := range A {
		m[i] = make([]float64, n+1)
		copy(m[i], A[i])
		m[i][n] = b[i]
		for _, v := range A[i] {
			scale = math.Max(scale, math.Abs(v))
		}
	}
	eps := Tolerance * scale

	for k := range n {
		p := k
		for i := k + 1; i < n; i++ {
			if math.Abs(m[i][k]) > math.Abs(m[p][k]) {
				p = i
			}
		}
		if math.Abs(m[p][k]) <= eps {
			return nil, kerrors.Wrap(kerrors.ErrCodeSingular, ErrSingular, "no pivot in column %d", k)
		}
		m[k], m[p] = m[p], m[k]

		for i := k + 1; i < n; i++ {
			f := m[i][k] / m[k][k]
			if f == 0 {
				continue
			}
			for j := k; j <= n; j++ {
				m[i][j] -= f * m[k][j]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := m[i][n]
		for j := i + 1; j < n; j++ {
			s -= m[i][j] * x[j]
		}
		x[i] = s / m[i][i]
	}
	return x, nil
}

// Round rounds x to the given number of decimal places. Negative places
// return x unchanged. Negative zero is normalized to zero.
func Round(x float64, places int) float64 {
	if places < 0 {
		return x
	}
	p := math.Pow(10, float64(places))
	r := math.Round(x*p) / p
	if r == 0 {
		return 0
	}
	return r
}

// RoundAll returns a rounded copy of xs.
func RoundAll(xs []float64, places int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Round(x, places)
	}
	return out
}
