// Package kirchhoff assembles and solves the branch-current equations of a
// circuit graph.
//
// # Equations
//
// [Assemble] builds a square system with one row and one column per branch.
// The first rows are Kirchhoff voltage law equations, one per fundamental
// cycle of the [topology.Basis]. Walking the cycle, a branch traversed along
// its reference direction contributes -R to its column and -V to the
// right-hand side; a branch traversed against it contributes +R and +V.
//
// The remaining rows are Kirchhoff current law equations, one per node in
// ascending order: each incident branch contributes -1 when it leaves the
// node along its reference direction and +1 otherwise. Assembly stops as
// soon as the system is square, so the last node's equation, which is
// implied by the others, is left out.
//
// Column j always refers to graph column j, so [Solution.Currents] can be
// matched against [circuit.Graph.Branch]. A positive current flows along the
// branch's reference direction.
//
// # Reduced systems
//
// [Split] sorts branches and fundamental cycles into constant-weight
// (no capacitance) and variable-weight groups. [Reduce] drops the rows of
// the variable cycles and the columns of the variable branches, leaving the
// resistive network that drives the capacitors. [SolveReduced] runs the
// whole chain.
//
// # Example
//
//	basis, err := topology.Analyze(g)
//	if err != nil {
//	    return err
//	}
//	sol, err := kirchhoff.Solve(g, basis)
package kirchhoff
