// Package render converts circuit drawings between output formats.
//
// # Overview
//
// Drawings are produced as SVG, either by the [nodelink] subpackage (circuit
// graphs through Graphviz) or by package simulate (trajectory plots). This
// package turns SVG into PDF or PNG with the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [Format] names the supported outputs and [Convert] dispatches on it.
//
// [nodelink]: github.com/matzehuels/kirchhoff/pkg/render/nodelink
package render
