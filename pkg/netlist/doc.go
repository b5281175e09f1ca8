// Package netlist reads and writes circuit descriptions.
//
// # Formats
//
// Three encodings carry the same content: a node count and an ordered list
// of branch records.
//
// The line format ([FormatLine], extensions .txt and .net) starts with a
// header giving the node and branch counts, followed by one line per branch
// with six numbers: origin, destination, resistance, source voltage,
// capacitance and inductance. Blank lines and lines starting with # are
// ignored:
//
//	# 6V source driving three 1Ω resistors
//	3 3
//	0 1 1 6 0 0
//	1 2 1 0 0 0
//	2 0 1 0 0 0
//
// The TOML format ([FormatTOML]) uses a nodes key and one [[branch]] table
// per record:
//
//	nodes = 3
//
//	[[branch]]
//	from = 0
//	to = 1
//	resistance = 1.0
//	voltage = 6.0
//
// The JSON format ([FormatJSON]) mirrors the TOML layout:
//
//	{"nodes": 3, "branches": [{"from": 0, "to": 1, "resistance": 1, "voltage": 6}]}
//
// # Errors
//
// Syntax problems are INVALID_FORMAT errors wrapping [ErrSyntax]; for the
// line format they name the offending line. Range checks on node indices
// happen when the netlist is turned into a graph with [Netlist.Graph].
package netlist
