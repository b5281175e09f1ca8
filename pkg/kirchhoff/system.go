package kirchhoff

import (
	"fmt"
	"slices"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/circuit/topology"
)

// RowKind tells which law an equation row comes from.
type RowKind int

const (
	// KVL rows sum voltages around a fundamental cycle.
	KVL RowKind = iota
	// KCL rows sum currents at a node.
	KCL
)

func (k RowKind) String() string {
	if k == KCL {
		return "KCL"
	}
	return "KVL"
}

// MarshalText encodes the kind as "KVL" or "KCL".
func (k RowKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes "KVL" or "KCL".
func (k *RowKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "KVL":
		*k = KVL
	case "KCL":
		*k = KCL
	default:
		return fmt.Errorf("unknown row kind %q", b)
	}
	return nil
}

// Row names the origin of one equation: a cycle index for KVL rows, a node
// for KCL rows.
type Row struct {
	Kind  RowKind `json:"kind"`
	Index int     `json:"index"`
}

// System is the linear system A·x = B over branch currents.
//
// Columns maps each system column to a graph column. It is the identity for
// a full system and a subset after [Reduce].
type System struct {
	A       [][]float64 `json:"a"`
	B       []float64   `json:"b"`
	Rows    []Row       `json:"rows"`
	Columns []int       `json:"columns"`
}

// Size returns the number of rows and columns.
func (s *System) Size() (rows, cols int) {
	if len(s.A) == 0 {
		return 0, len(s.Columns)
	}
	return len(s.A), len(s.A[0])
}

// Clone returns a deep copy of s.
func (s *System) Clone() *System {
	a := make([][]float64, len(s.A))
	for i, row := range s.A {
		a[i] = slices.Clone(row)
	}
	return &System{
		A:       a,
		B:       slices.Clone(s.B),
		Rows:    slices.Clone(s.Rows),
		Columns: slices.Clone(s.Columns),
	}
}

// Assemble builds the full E×E system for g from its fundamental cycles.
//
// Within one KVL row each branch coefficient is written, not summed, so a
// branch visited twice keeps the value of its last traversal. Column lookups
// that fail are NOT_FOUND errors.
func Assemble(g *circuit.Graph, basis *topology.Basis) (*System, error) {
	n := g.EdgeCount()
	sys := &System{
		A:       make([][]float64, n),
		B:       make([]float64, n),
		Rows:    make([]Row, 0, n),
		Columns: make([]int, n),
	}
	for i := range sys.A {
		sys.A[i] = make([]float64, n)
		sys.Columns[i] = i
	}

	row := 0
	for ci, c := range basis.Cycles {
		if row == n {
			break
		}
		var acc float64
		for _, s := range c.Steps {
			col, err := g.Column(s.From, s.To)
			if err != nil {
				return nil, err
			}
			b := g.Branch(col)
			if b.Straight(s.From, s.To) {
				acc -= b.Voltage
				sys.A[row][col] = -b.Resistance
			} else {
				acc += b.Voltage
				sys.A[row][col] = b.Resistance
			}
		}
		sys.B[row] = acc
		sys.Rows = append(sys.Rows, Row{Kind: KVL, Index: ci})
		row++
	}

	for node := range g.NodeCount() {
		if row == n {
			break
		}
		for _, nb := range g.Neighbors(node) {
			col, err := g.Column(node, nb)
			if err != nil {
				return nil, err
			}
			if g.Branch(col).Straight(node, nb) {
				sys.A[row][col] = -1
			} else {
				sys.A[row][col] = 1
			}
		}
		sys.Rows = append(sys.Rows, Row{Kind: KCL, Index: node})
		row++
	}
	return sys, nil
}

// CountRows returns the number of rows of each kind.
func (s *System) CountRows() (kvl, kcl int) {
	for _, r := range s.Rows {
		if r.Kind == KVL {
			kvl++
		} else {
			kcl++
		}
	}
	return kvl, kcl
}
