package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

// solveOpts holds the flags of the solve and reduce commands.
type solveOpts struct {
	inputOpts
	precision int
	refresh   bool
	jsonOut   bool
	reduced   bool
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve [netlist]",
		Short: "Solve every branch current of a circuit",
		Long: `Solve every branch current of a circuit.

The netlist is read from the file argument, or from stdin when it is "-".
Currents are positive along each branch's reference direction (the order its
endpoints are listed in the netlist).

Results are cached locally; use --refresh to recompute.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.defaultPrecision(cmd, &opts.precision)
			return c.runSolve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	opts.register(cmd)
	c.registerSolveFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.reduced, "reduced", false, "solve only the constant part (drop capacitive cycles and branches)")
	return cmd
}

// reduceCommand creates the reduce command, a shortcut for solve --reduced.
func (c *CLI) reduceCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "reduce [netlist]",
		Short: "Solve the constant part of an RC circuit",
		Long: `Solve the constant part of an RC circuit.

Fundamental cycles that pass through a capacitive branch are dropped together
with the capacitive branch currents; the remaining square system is solved.
Capacitive branches are reported without a current.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.reduced = true
			c.defaultPrecision(cmd, &opts.precision)
			return c.runSolve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	opts.register(cmd)
	c.registerSolveFlags(cmd, &opts)
	return cmd
}

func (c *CLI) registerSolveFlags(cmd *cobra.Command, opts *solveOpts) {
	cmd.Flags().IntVarP(&opts.precision, "precision", "p", 0, "decimal places for currents (default from config; 0 rounds to whole amperes, -1 keeps full precision)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached reports")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the full report as JSON")
}

// defaultPrecision replaces *p with the configured precision unless the
// --precision flag was given.
func (c *CLI) defaultPrecision(cmd *cobra.Command, p *int) {
	if !cmd.Flags().Changed("precision") {
		*p = c.Config.Precision
	}
}

func (c *CLI) pipelineOptions(opts solveOpts) pipeline.Options {
	return pipeline.Options{
		Reduced:   opts.reduced,
		Precision: pipeline.Places(opts.precision),
		Refresh:   opts.refresh,
		Logger:    c.Logger,
	}
}

func (c *CLI) runSolve(ctx context.Context, stdin io.Reader, out io.Writer, input string, opts solveOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger, "solve")
	g, err := opts.readGraph(ctx, runner, input, stdin)
	if err != nil {
		return err
	}
	res, err := runner.Execute(ctx, g, c.pipelineOptions(opts))
	if err != nil {
		return err
	}
	prog.done("branches", g.EdgeCount(), "reduced", opts.reduced)

	if opts.jsonOut {
		return writeJSON(out, res.Report)
	}

	title := "Branch currents"
	if opts.reduced {
		title = "Branch currents (constant part)"
	}
	fmt.Fprintln(out, StyleTitle.Render(title))
	printStats(out, res.Stats.NodeCount, res.Stats.BranchCount, res.CacheInfo.ReportHit)
	fmt.Fprintln(out, currentsTable(res.Report))
	printKeyValue(out, "classification", res.Report.Classification)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
