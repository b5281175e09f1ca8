package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

type analyzeOpts struct {
	inputOpts
	jsonOut bool
	refresh bool
}

// analyzeCommand creates the analyze command, which reports the structure of
// a circuit without solving it.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [netlist]",
		Short: "Show the spanning tree, fundamental cycles and partition of a circuit",
		Long: `Show the spanning tree, fundamental cycles and partition of a circuit.

Branches are numbered in netlist order. The spanning tree is built by adding
branches in that order whenever they join two separate components; each
remaining (co-tree) branch closes exactly one fundamental cycle.

Cycles through a capacitive branch are variable: they are dropped by the
reduce command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached reports")
	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, stdin io.Reader, out io.Writer, input string, opts analyzeOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := opts.readGraph(ctx, runner, input, stdin)
	if err != nil {
		return err
	}
	res, err := runner.Execute(ctx, g, pipeline.Options{SkipSolve: true, Refresh: opts.refresh, Logger: c.Logger})
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(out, res.Report)
	}
	printAnalysis(out, res)
	return nil
}

func printAnalysis(out io.Writer, res *pipeline.Result) {
	rep := res.Report

	fmt.Fprintln(out, StyleTitle.Render("Circuit"))
	printStats(out, res.Stats.NodeCount, res.Stats.BranchCount, res.CacheInfo.ReportHit)
	printKeyValue(out, "classification", rep.Classification)
	fmt.Fprintln(out)

	fmt.Fprintln(out, StyleTitle.Render("Branches"))
	for _, b := range rep.Branches {
		line := fmt.Sprintf("c%-3d %s  %s", b.Column, b.Direction, b.Label)
		if b.Variable {
			line = StyleWarning.Render(line)
		}
		fmt.Fprintln(out, "  "+line)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, StyleTitle.Render("Spanning tree"))
	printKeyValue(out, "tree", formatColumns(rep.Tree))
	printKeyValue(out, "co-tree", formatColumns(rep.CoTree))
	fmt.Fprintln(out)

	fmt.Fprintln(out, StyleTitle.Render("Fundamental cycles"))
	if len(rep.Cycles) == 0 {
		printDetail(out, "none (the circuit is a tree)")
	}
	for i, cyc := range rep.Cycles {
		line := formatCycle(cyc)
		if rep.Partition.IsVariableCycle(i) {
			line = StyleWarning.Render(line + "  (variable)")
		}
		fmt.Fprintf(out, "  %s %s\n", StyleNumber.Render(strconv.Itoa(i)), line)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, StyleTitle.Render("Partition"))
	printKeyValue(out, "variable branches", formatColumns(rep.Partition.VariableColumns))
	printKeyValue(out, "variable cycles", formatIndices(rep.Partition.VariableCycleIndex))
}

// formatIndices writes cycle indices as "0 2", or "—" when empty.
func formatIndices(idx []int) string {
	if len(idx) == 0 {
		return "—"
	}
	s := ""
	for i, v := range idx {
		if i > 0 {
			s += " "
		}
		s += strconv.Itoa(v)
	}
	return s
}
