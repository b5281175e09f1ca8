// Package nodelink draws circuit graphs as node-link diagrams.
//
// # Overview
//
// Two diagrams are produced, both as Graphviz DOT source:
//
//   - [GraphDOT] draws the circuit itself: an undirected graph whose edges
//     carry the branch components ("1Ω 6V"). Spanning tree branches can be
//     highlighted.
//   - [CurrentsDOT] draws a solved circuit as a directed graph. Every edge
//     points the way its current actually flows and is labelled with the
//     current's magnitude.
//
// # Usage
//
//	dot := nodelink.GraphDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
