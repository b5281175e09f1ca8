package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
	"github.com/matzehuels/kirchhoff/pkg/render"
)

// stdinBase names outputs derived from a netlist read from stdin.
const stdinBase = "circuit"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	inputOpts
	output    string          // output file (single format) or base path (multiple)
	kind      string          // graph or currents
	formats   []render.Format // svg, png, pdf, dot
	detailed  bool            // show component values
	tree      bool            // dash co-tree branches
	scale     float64         // PNG resolution multiplier
	reduced   bool            // currents of the constant part only
	precision int             // decimal places for current labels
}

// renderCommand creates the render command for Graphviz drawings.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{kind: pipeline.KindGraph, scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [netlist]",
		Short: "Draw a circuit or its solved currents",
		Long: `Draw a circuit or its solved currents with Graphviz.

Kinds:
  graph      the circuit topology, one edge per branch (--tree dashes co-tree branches)
  currents   the solved currents, each edge oriented along its current

Several formats may be given as a comma-separated list; files are then named
after --output (or the netlist) with one extension per format. Use -o - to
write a single drawing to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.Config.Render.Detailed
			}
			c.defaultPrecision(cmd, &opts.precision)
			if formatsStr == "" {
				formatsStr = c.Config.Render.Format
			}
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			if opts.output == "-" && len(formats) > 1 {
				return fmt.Errorf("cannot write %d formats to stdout", len(formats))
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", opts.kind, "drawing kind: graph, currents")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, png, pdf, dot (comma-separated; default from config)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show component values on edges")
	cmd.Flags().BoolVar(&opts.tree, "tree", false, "dash co-tree branches (graph kind)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.reduced, "reduced", false, "draw currents of the constant part only (currents kind)")
	cmd.Flags().IntVarP(&opts.precision, "precision", "p", 0, "decimal places for current labels (default from config; -1 keeps full precision)")

	return cmd
}

// parseFormats parses the --format flag into drawing formats.
func parseFormats(s string) ([]render.Format, error) {
	var formats []render.Format
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// basePath derives the base output path from the output and input paths.
// A known drawing extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return stdinBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where a drawing in format f is written.
func (o *renderOpts) outputPath(input string, f render.Format) string {
	if o.output != "" && len(o.formats) == 1 && filepath.Ext(o.output) != "" {
		return o.output
	}
	return basePath(o.output, input) + f.Ext()
}

func (o *renderOpts) renderOptions(c *CLI, f render.Format) pipeline.RenderOptions {
	return pipeline.RenderOptions{
		Kind:     o.kind,
		Format:   f,
		Detailed: o.detailed,
		Tree:     o.tree,
		Scale:    o.scale,
		Solve: pipeline.Options{
			Reduced:   o.reduced,
			Precision: pipeline.Places(o.precision),
			Logger:    c.Logger,
		},
	}
}

func (c *CLI) runRender(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, input string, opts *renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := opts.readGraph(ctx, runner, input, stdin)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded circuit: %d nodes, %d branches", g.NodeCount(), g.EdgeCount())

	for _, f := range opts.formats {
		if err := c.renderOne(ctx, runner, g, input, f, opts, stdout, stderr); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) renderOne(ctx context.Context, runner *pipeline.Runner, g *circuit.Graph, input string, f render.Format, opts *renderOpts, stdout, stderr io.Writer) error {
	spin := startSpinner(ctx, stderr, fmt.Sprintf("Rendering %s %s...", opts.kind, f))
	data, cached, err := runner.RenderWithCacheInfo(ctx, g, opts.renderOptions(c, f))
	if err != nil {
		spin.fail(fmt.Sprintf("Rendering %s failed", f))
		return err
	}
	spin.stop()
	c.Logger.Debugf("Generated %s: %d bytes (cached=%t)", f, len(data), cached)

	if opts.output == "-" {
		_, err := stdout.Write(data)
		return err
	}

	path := opts.outputPath(input, f)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess(stderr, "Rendered %s", opts.kind)
	printFile(stderr, path)
	return nil
}
