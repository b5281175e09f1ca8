// Package circuit models an electrical network as a simple undirected graph
// of two-terminal branches.
//
// # Overview
//
// Every branch is a series combination of a resistor, an ideal voltage
// source, a capacitor and an inductor between two nodes. Nodes are plain
// integers 0..n-1. At most one branch may connect any pair of nodes.
//
// Each branch keeps the direction it was declared in as its reference
// direction ([Branch.Ref]). Currents and voltages are signed relative to that
// direction, so the equations assembled by package kirchhoff and the currents
// it solves for are only meaningful together with it.
//
// # Building a Graph
//
// [New] converts parsed branch records into a [Graph]. Columns follow record
// order, and that enumeration is used by every matrix built from the graph:
//
//	g, err := circuit.New(3, []circuit.Record{
//	    {From: 0, To: 1, Resistance: 1, Voltage: 6},
//	    {From: 1, To: 2, Resistance: 1},
//	    {From: 2, To: 0, Resistance: 1},
//	})
//
// Out-of-range node indices, self loops and parallel branches are rejected
// with an INVALID_FORMAT error. Use [Graph.Column] to resolve a node pair
// to its column in either order.
//
// # Classification
//
// [Classify] reports whether a circuit is [Ordinary], [RC], [RL] or [RLC]
// depending on which reactive components appear on its branches.
package circuit
