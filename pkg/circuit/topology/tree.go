package topology

import (
	"errors"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

var (
	// ErrDisconnected is returned by [SpanningTree] when no tree reaches every
	// node of the graph.
	ErrDisconnected = errors.New("graph is not connected")

	// ErrNoCycle is returned by [FundamentalCycles] when a co-tree branch does
	// not close a loop through the tree. It cannot happen for a tree returned
	// by [SpanningTree] on the same graph.
	ErrNoCycle = errors.New("co-tree branch closes no cycle")
)

// Tree is a spanning tree given as graph columns in the order they were
// accepted.
type Tree struct {
	Columns []int
}

// Contains reports whether column col belongs to the tree.
func (t *Tree) Contains(col int) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// SpanningTree returns a spanning tree of g. Branch weights play no part:
// branches are considered in column order and kept unless they would close
// a loop.
//
// A graph whose tree cannot reach every node, including nodes with no
// branches at all, fails with DISCONNECTED_GRAPH wrapping [ErrDisconnected].
func SpanningTree(g *circuit.Graph) (*Tree, error) {
	n := g.NodeCount()
	if n == 0 {
		return nil, kerrors.Wrap(kerrors.ErrCodeDisconnected, ErrDisconnected, "graph has no nodes")
	}

	uf := newUnionFind(n)
	t := &Tree{Columns: make([]int, 0, n-1)}
	for _, b := range g.Branches() {
		if uf.union(b.Ref.From, b.Ref.To) {
			t.Columns = append(t.Columns, b.Column)
			if len(t.Columns) == n-1 {
				break
			}
		}
	}

	if len(t.Columns) != n-1 {
		return nil, kerrors.Wrap(kerrors.ErrCodeDisconnected, ErrDisconnected,
			"%d components among %d nodes", n-len(t.Columns), n)
	}
	return t, nil
}

// CoTree returns the columns of g not in t, in column order.
func CoTree(g *circuit.Graph, t *Tree) []int {
	in := make([]bool, g.EdgeCount())
	for _, c := range t.Columns {
		in[c] = true
	}
	out := make([]int, 0, g.EdgeCount()-len(t.Columns))
	for col, used := range in {
		if !used {
			out = append(out, col)
		}
	}
	return out
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union merges the sets holding a and b and reports whether they were distinct.
func (uf *unionFind) union(a, b int) bool {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return false
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
	return true
}
