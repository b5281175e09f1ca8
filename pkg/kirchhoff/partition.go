package kirchhoff

import (
	"slices"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/circuit/topology"
	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/linalg"
)

// Partition separates branches and fundamental cycles by whether their
// weight varies with time (the branch holds a capacitance) or not.
//
// Every branch appears in exactly one of ConstantBranches and
// VariableBranches, given in its reference direction. Every cycle appears in
// exactly one of ConstantCycles and VariableCycles. VariableCycleIndex holds
// the positions of the variable cycles within the basis, which are also
// their row indices in the full system. VariableColumns holds the graph
// columns of VariableBranches, in the same order.
type Partition struct {
	ConstantBranches   []circuit.Direction `json:"constant_branches"`
	VariableBranches   []circuit.Direction `json:"variable_branches"`
	ConstantCycles     []topology.Cycle    `json:"constant_cycles"`
	VariableCycles     []topology.Cycle    `json:"variable_cycles"`
	VariableCycleIndex []int               `json:"variable_cycle_index"`
	VariableColumns    []int               `json:"variable_columns"`
}

// Split partitions the branches and cycles of g.
//
// Branches are listed in the order they are first met while walking the
// cycles. Branches on no cycle (bridges) follow in column order.
func Split(g *circuit.Graph, basis *topology.Basis) Partition {
	var p Partition
	placed := make([]bool, g.EdgeCount())

	place := func(b circuit.Branch) {
		if placed[b.Column] {
			return
		}
		placed[b.Column] = true
		if b.IsVariable() {
			p.VariableBranches = append(p.VariableBranches, b.Ref)
			p.VariableColumns = append(p.VariableColumns, b.Column)
		} else {
			p.ConstantBranches = append(p.ConstantBranches, b.Ref)
		}
	}

	for i, c := range basis.Cycles {
		variable := false
		for _, s := range c.Steps {
			b := g.Branch(s.Column)
			place(b)
			variable = variable || b.IsVariable()
		}
		if variable {
			p.VariableCycles = append(p.VariableCycles, c)
			p.VariableCycleIndex = append(p.VariableCycleIndex, i)
		} else {
			p.ConstantCycles = append(p.ConstantCycles, c)
		}
	}

	for _, b := range g.Branches() {
		place(b)
	}
	return p
}

// Reduce removes the rows of the variable cycles and the columns of the
// variable branches from sys. All indices refer to sys as given and are
// removed together.
//
// A reduced system that is not square cannot be solved and is reported as
// SINGULAR_MATRIX wrapping [linalg.ErrSingular].
func Reduce(sys *System, p Partition) (*System, error) {
	dropRow := make(map[int]bool, len(p.VariableCycleIndex))
	for _, r := range p.VariableCycleIndex {
		dropRow[r] = true
	}
	dropCol := make(map[int]bool, len(p.VariableColumns))
	for _, c := range p.VariableColumns {
		dropCol[c] = true
	}

	var keepCols []int
	for j, c := range sys.Columns {
		if !dropCol[c] {
			keepCols = append(keepCols, j)
		}
	}

	out := &System{}
	for i, row := range sys.A {
		if dropRow[i] {
			continue
		}
		r := make([]float64, len(keepCols))
		for k, j := range keepCols {
			r[k] = row[j]
		}
		out.A = append(out.A, r)
		out.B = append(out.B, sys.B[i])
		out.Rows = append(out.Rows, sys.Rows[i])
	}
	for _, j := range keepCols {
		out.Columns = append(out.Columns, sys.Columns[j])
	}

	if len(out.A) != len(out.Columns) {
		return out, kerrors.Wrap(kerrors.ErrCodeSingular, linalg.ErrSingular,
			"reduced system is %d×%d", len(out.A), len(out.Columns))
	}
	return out, nil
}

// IsVariableCycle reports whether cycle index i is variable-weight.
func (p Partition) IsVariableCycle(i int) bool {
	return slices.Contains(p.VariableCycleIndex, i)
}
