package kirchhoff

import (
	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/circuit/topology"
	"github.com/matzehuels/kirchhoff/pkg/linalg"
)

// Solution holds solved branch currents. Currents[i] is the current through
// graph column Columns[i], positive along the branch's reference direction.
type Solution struct {
	Currents []float64 `json:"currents"`
	Columns  []int     `json:"columns"`
}

// Current returns the current through graph column col and whether the
// solution covers that column.
func (s *Solution) Current(col int) (float64, bool) {
	for i, c := range s.Columns {
		if c == col {
			return s.Currents[i], true
		}
	}
	return 0, false
}

// Rounded returns a copy of s with currents rounded to places decimals.
func (s *Solution) Rounded(places int) *Solution {
	return &Solution{
		Currents: linalg.RoundAll(s.Currents, places),
		Columns:  append([]int(nil), s.Columns...),
	}
}

// SolveSystem solves sys with [linalg.Solve].
func SolveSystem(sys *System) (*Solution, error) {
	x, err := linalg.Solve(sys.A, sys.B)
	if err != nil {
		return nil, err
	}
	return &Solution{Currents: x, Columns: append([]int(nil), sys.Columns...)}, nil
}

// Solve assembles and solves the full system of g.
func Solve(g *circuit.Graph, basis *topology.Basis) (*Solution, error) {
	sys, err := Assemble(g, basis)
	if err != nil {
		return nil, err
	}
	return SolveSystem(sys)
}

// SolveReduced assembles the full system of g, removes its variable-weight
// rows and columns and solves what remains.
func SolveReduced(g *circuit.Graph, basis *topology.Basis) (*Solution, error) {
	sys, err := Assemble(g, basis)
	if err != nil {
		return nil, err
	}
	red, err := Reduce(sys, Split(g, basis))
	if err != nil {
		return nil, err
	}
	return SolveSystem(red)
}
