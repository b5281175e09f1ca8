package topology

import "github.com/matzehuels/kirchhoff/pkg/circuit"

// Basis is the spanning tree, co-tree and fundamental cycles of one graph.
type Basis struct {
	Tree   *Tree
	CoTree []int
	Cycles []Cycle
}

// Analyze computes the spanning tree, co-tree and fundamental cycles of g.
func Analyze(g *circuit.Graph) (*Basis, error) {
	t, err := SpanningTree(g)
	if err != nil {
		return nil, err
	}
	co := CoTree(g, t)
	cycles, err := FundamentalCycles(g, t, co)
	if err != nil {
		return nil, err
	}
	return &Basis{Tree: t, CoTree: co, Cycles: cycles}, nil
}
