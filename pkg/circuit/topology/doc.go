// Package topology derives the loop structure of a circuit graph.
//
// [SpanningTree] picks a spanning tree with Kruskal's algorithm, scanning
// branches in column order, so the result is deterministic for a given
// graph. The branches left over form the co-tree ([CoTree]). Adding any one
// co-tree branch back into the tree closes exactly one loop, its fundamental
// cycle, which [FundamentalCycles] recovers with a depth-first search over
// the tree.
//
// [Analyze] runs all three steps once and returns a [Basis] that the
// equation assembler, the partitioner and both solvers share.
//
// For a connected graph with N nodes and E branches the tree holds N-1
// branches and the basis holds E-N+1 cycles.
package topology
