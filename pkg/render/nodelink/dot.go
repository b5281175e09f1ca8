package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/circuit/topology"
	"github.com/matzehuels/kirchhoff/pkg/kirchhoff"
	"github.com/matzehuels/kirchhoff/pkg/linalg"
	"github.com/matzehuels/kirchhoff/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Detailed prefixes edge labels with the branch column and reference
	// direction.
	Detailed bool

	// Tree, when set, draws spanning tree branches solid and co-tree
	// branches dashed.
	Tree *topology.Tree

	// Precision is the number of decimals for currents in [CurrentsDOT].
	// Negative values print full precision.
	Precision int
}

const header = `  bgcolor="transparent";
  rankdir=LR;
  nodesep=0.6;
  ranksep=1.0;
  node [shape=circle, style=filled, fontsize=18, width=0.5, fixedsize=true];
  edge [fontsize=14];
`

// GraphDOT converts a circuit graph to an undirected DOT graph. Edges are
// emitted in column order.
func GraphDOT(g *circuit.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString(header)
	buf.WriteString("  node [fillcolor=\"#FF6B6B\"];\n\n")

	for n := range g.NodeCount() {
		fmt.Fprintf(&buf, "  %d;\n", n)
	}

	buf.WriteString("\n")
	for _, b := range g.Branches() {
		label := b.Label
		if opts.Detailed {
			label = fmt.Sprintf("c%d %d→%d\n%s", b.Column, b.Ref.From, b.Ref.To, b.Label)
		}
		attrs := fmt.Sprintf("label=%q", label)
		if opts.Tree != nil && !opts.Tree.Contains(b.Column) {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&buf, "  %d -- %d [%s];\n", b.Ref.From, b.Ref.To, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// CurrentsDOT converts a solved circuit to a directed DOT graph. A branch
// with positive current points along its reference direction; a negative
// current reverses the arrow and the label shows its magnitude. Branches
// not covered by sol are left out.
func CurrentsDOT(g *circuit.Graph, sol *kirchhoff.Solution, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString(header)
	buf.WriteString("  node [fillcolor=\"#51CF66\"];\n\n")

	for n := range g.NodeCount() {
		fmt.Fprintf(&buf, "  %d;\n", n)
	}

	buf.WriteString("\n")
	for i, col := range sol.Columns {
		b := g.Branch(col)
		d := b.Ref
		cur := linalg.Round(sol.Currents[i], opts.Precision)
		if cur < 0 {
			d = d.Reverse()
			cur = -cur
		}
		label := strconv.FormatFloat(cur, 'f', -1, 64) + "A"
		if opts.Detailed {
			label = fmt.Sprintf("c%d: %s", col, label)
		}
		attrs := fmt.Sprintf("label=%q", label)
		if cur == 0 || math.IsNaN(cur) {
			attrs += ", style=dotted, arrowhead=none"
		}
		fmt.Fprintf(&buf, "  %d -> %d [%s];\n", d.From, d.To, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the drawing scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Render renders a DOT graph into format f. DOT output returns the source as is.
func Render(ctx context.Context, dot string, f render.Format, scale float64) ([]byte, error) {
	if f == render.FormatDOT {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, f, scale)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, render.FormatPDF, 1)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	return Render(ctx, dot, render.FormatPNG, scale)
}
