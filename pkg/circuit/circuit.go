package circuit

import (
	"errors"
	"fmt"
	"slices"

	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

var (
	// ErrNodeOutOfRange is returned by [New] when a record references a node
	// index outside [0, nodeCount).
	ErrNodeOutOfRange = errors.New("node index out of range")

	// ErrSelfLoop is returned by [New] when a record connects a node to itself.
	ErrSelfLoop = errors.New("branch connects a node to itself")

	// ErrParallelBranch is returned by [New] when two records declare the same
	// unordered node pair. Parallel branches are not supported; combine them
	// into a single equivalent branch instead.
	ErrParallelBranch = errors.New("parallel branch")

	// ErrBranchNotFound is returned by [Graph.Column] when a node pair does not
	// name any branch. For a well-formed graph this indicates a bug in the caller.
	ErrBranchNotFound = errors.New("branch not found")
)

// Record is one parsed branch description, as read from a netlist.
type Record struct {
	From        int     `json:"from" toml:"from"`
	To          int     `json:"to" toml:"to"`
	Resistance  float64 `json:"resistance" toml:"resistance"`
	Voltage     float64 `json:"voltage" toml:"voltage"`
	Capacitance float64 `json:"capacitance" toml:"capacitance"`
	Inductance  float64 `json:"inductance" toml:"inductance"`
}

// Direction is an ordered node pair.
type Direction struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Reverse returns the direction pointing the other way.
func (d Direction) Reverse() Direction { return Direction{From: d.To, To: d.From} }

// Pair returns the unordered pair covered by d.
func (d Direction) Pair() Pair { return PairOf(d.From, d.To) }

func (d Direction) String() string { return fmt.Sprintf("[%d]---->[%d]", d.From, d.To) }

// Pair is an unordered node pair in canonical form (Lo < Hi).
type Pair struct {
	Lo, Hi int
}

// PairOf returns the canonical pair for nodes a and b.
func PairOf(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}
}

// Branch is a two-terminal circuit element: a series combination of a
// resistor, an ideal voltage source, a capacitor and an inductor.
//
// Ref fixes the polarity convention of the branch. A positive current flows
// from Ref.From to Ref.To, and a positive Voltage drives current that way.
type Branch struct {
	Column      int       // Position in the graph's branch enumeration
	Ref         Direction // Reference direction (origin, destination) as declared
	Resistance  float64   // Ω
	Voltage     float64   // V
	Capacitance float64   // F
	Inductance  float64   // H
	Label       string    // Display string, e.g. "1Ω 6V"
}

// Pair returns the unordered endpoints of the branch.
func (b Branch) Pair() Pair { return b.Ref.Pair() }

// Straight reports whether traversing the branch from -> to agrees with its
// reference direction.
func (b Branch) Straight(from, to int) bool {
	return b.Ref.From == from && b.Ref.To == to
}

// IsVariable reports whether the branch carries a capacitance and therefore
// has time-variant weight.
func (b Branch) IsVariable() bool { return b.Capacitance != 0 }

// Other returns the endpoint of b opposite n.
func (b Branch) Other(n int) int {
	if b.Ref.From == n {
		return b.Ref.To
	}
	return b.Ref.From
}

// Record converts the branch back into the record it was built from.
func (b Branch) Record() Record {
	return Record{
		From:        b.Ref.From,
		To:          b.Ref.To,
		Resistance:  b.Resistance,
		Voltage:     b.Voltage,
		Capacitance: b.Capacitance,
		Inductance:  b.Inductance,
	}
}

// Graph is a simple undirected graph of branches over nodes 0..NodeCount-1.
//
// Branch columns follow record order. The graph is immutable after [New]
// returns and is safe for concurrent readers.
type Graph struct {
	nodes     int
	branches  []Branch
	index     map[Pair]int
	neighbors [][]int // node -> ascending neighbour list
}

// New builds a Graph from branch records. Each record becomes one branch whose
// reference direction is (From, To) as given and whose column is the record's
// position.
//
// All failures are FormatErrors ([kerrors.ErrCodeInvalidFormat]) wrapping one of
// [ErrNodeOutOfRange], [ErrSelfLoop] or [ErrParallelBranch].
func New(nodeCount int, records []Record) (*Graph, error) {
	if nodeCount < 0 {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, ErrNodeOutOfRange, "negative node count %d", nodeCount)
	}

	g := &Graph{
		nodes:     nodeCount,
		branches:  make([]Branch, 0, len(records)),
		index:     make(map[Pair]int, len(records)),
		neighbors: make([][]int, nodeCount),
	}

	for i, r := range records {
		if err := validateRecord(nodeCount, r); err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "branch %d (%d, %d)", i, r.From, r.To)
		}
		p := PairOf(r.From, r.To)
		if prev, ok := g.index[p]; ok {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, ErrParallelBranch,
				"branch %d (%d, %d) duplicates branch %d", i, r.From, r.To, prev)
		}

		b := Branch{
			Column:      i,
			Ref:         Direction{From: r.From, To: r.To},
			Resistance:  r.Resistance,
			Voltage:     r.Voltage,
			Capacitance: r.Capacitance,
			Inductance:  r.Inductance,
		}
		b.Label = Label(b)

		g.index[p] = i
		g.branches = append(g.branches, b)
		g.neighbors[r.From] = append(g.neighbors[r.From], r.To)
		g.neighbors[r.To] = append(g.neighbors[r.To], r.From)
	}

	for _, ns := range g.neighbors {
		slices.Sort(ns)
	}
	return g, nil
}

func validateRecord(nodeCount int, r Record) error {
	if r.From < 0 || r.From >= nodeCount {
		return fmt.Errorf("%w: origin %d not in [0, %d)", ErrNodeOutOfRange, r.From, nodeCount)
	}
	if r.To < 0 || r.To >= nodeCount {
		return fmt.Errorf("%w: destination %d not in [0, %d)", ErrNodeOutOfRange, r.To, nodeCount)
	}
	if r.From == r.To {
		return ErrSelfLoop
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"resistance", r.Resistance},
		{"voltage", r.Voltage},
		{"capacitance", r.Capacitance},
		{"inductance", r.Inductance},
	} {
		if err := kerrors.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// NodeCount returns the number of nodes, including isolated ones.
func (g *Graph) NodeCount() int { return g.nodes }

// EdgeCount returns the number of branches.
func (g *Graph) EdgeCount() int { return len(g.branches) }

// Branches returns a copy of all branches in column order.
func (g *Graph) Branches() []Branch { return slices.Clone(g.branches) }

// Branch returns the branch at column col. It panics if col is out of range.
func (g *Graph) Branch(col int) Branch { return g.branches[col] }

// Column returns the column of the branch connecting a and b, regardless of
// argument order. A miss is a NOT_FOUND error wrapping [ErrBranchNotFound].
func (g *Graph) Column(a, b int) (int, error) {
	col, ok := g.index[PairOf(a, b)]
	if !ok {
		return 0, kerrors.Wrap(kerrors.ErrCodeNotFound, ErrBranchNotFound, "no branch between %d and %d", a, b)
	}
	return col, nil
}

// Neighbors returns the nodes adjacent to n in ascending order.
func (g *Graph) Neighbors(n int) []int {
	if n < 0 || n >= g.nodes {
		return nil
	}
	return slices.Clone(g.neighbors[n])
}

// Records converts the graph back into the records it was built from.
func (g *Graph) Records() []Record {
	out := make([]Record, len(g.branches))
	for i, b := range g.branches {
		out[i] = b.Record()
	}
	return out
}
