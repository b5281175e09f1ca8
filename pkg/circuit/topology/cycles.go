package topology

import (
	"github.com/matzehuels/kirchhoff/pkg/circuit"
	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

// Step is one traversal of a branch inside a cycle, from node From to node To.
type Step struct {
	Column int `json:"column"`
	From   int `json:"from"`
	To     int `json:"to"`
}

// Direction returns the traversal as an ordered pair.
func (s Step) Direction() circuit.Direction {
	return circuit.Direction{From: s.From, To: s.To}
}

// Cycle is a fundamental cycle: a closed walk that starts with its defining
// co-tree branch, traversed in its reference direction, and returns through
// the tree.
type Cycle struct {
	CoTree int    `json:"cotree"`
	Steps  []Step `json:"steps"`
}

// Columns returns the branch columns visited by c in walk order.
func (c Cycle) Columns() []int {
	out := make([]int, len(c.Steps))
	for i, s := range c.Steps {
		out[i] = s.Column
	}
	return out
}

// Contains reports whether c traverses column col.
func (c Cycle) Contains(col int) bool {
	for _, s := range c.Steps {
		if s.Column == col {
			return true
		}
	}
	return false
}

// FundamentalCycles returns one cycle per co-tree column, in co-tree order.
//
// For a co-tree branch u->v the cycle walks u->v and then the unique tree
// path from v back to u. A missing path means t does not span g and is
// reported as INTERNAL_INVARIANT wrapping [ErrNoCycle].
func FundamentalCycles(g *circuit.Graph, t *Tree, cotree []int) ([]Cycle, error) {
	adj := treeAdjacency(g, t)
	cycles := make([]Cycle, 0, len(cotree))
	for _, col := range cotree {
		b := g.Branch(col)
		path, ok := treePath(adj, g.NodeCount(), b.Ref.To, b.Ref.From)
		if !ok {
			return nil, kerrors.Wrap(kerrors.ErrCodeInternalInvariant, ErrNoCycle,
				"co-tree branch %d %v", col, b.Ref)
		}
		steps := make([]Step, 0, len(path)+1)
		steps = append(steps, Step{Column: col, From: b.Ref.From, To: b.Ref.To})
		steps = append(steps, path...)
		cycles = append(cycles, Cycle{CoTree: col, Steps: steps})
	}
	return cycles, nil
}

type arc struct {
	to, column int
}

func treeAdjacency(g *circuit.Graph, t *Tree) [][]arc {
	adj := make([][]arc, g.NodeCount())
	for _, col := range t.Columns {
		b := g.Branch(col)
		adj[b.Ref.From] = append(adj[b.Ref.From], arc{to: b.Ref.To, column: col})
		adj[b.Ref.To] = append(adj[b.Ref.To], arc{to: b.Ref.From, column: col})
	}
	return adj
}

// treePath finds the path src -> dst with an iterative depth-first search.
func treePath(adj [][]arc, n, src, dst int) ([]Step, bool) {
	const unvisited = -1
	via := make([]arc, n) // node -> arc used to reach it (to holds the predecessor)
	seen := make([]bool, n)
	for i := range via {
		via[i] = arc{to: unvisited, column: unvisited}
	}

	stack := []int{src}
	seen[src] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == dst {
			break
		}
		for _, a := range adj[cur] {
			if !seen[a.to] {
				seen[a.to] = true
				via[a.to] = arc{to: cur, column: a.column}
				stack = append(stack, a.to)
			}
		}
	}
	if !seen[dst] {
		return nil, false
	}

	var rev []Step
	for node := dst; node != src; node = via[node].to {
		rev = append(rev, Step{Column: via[node].column, From: via[node].to, To: node})
	}
	path := make([]Step, len(rev))
	for i, s := range rev {
		path[len(rev)-1-i] = s
	}
	return path, true
}
