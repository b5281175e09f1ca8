package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

type exploreOpts struct {
	inputOpts
	reduced bool
}

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore [netlist]",
		Short: "Browse the cycles and equations of a circuit interactively",
		Long: `Browse the cycles and equations of a circuit interactively.

Tab switches between the fundamental cycles and the rows of the linear
system. Variable (capacitive) cycles are highlighted. A circuit whose system
is singular can still be browsed; only its cycles are shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.exploreReport(cmd.Context(), cmd.InOrStdin(), args[0], opts)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewExploreModel(rep), tea.WithOutput(cmd.OutOrStdout()), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.reduced, "reduced", false, "browse the reduced system")
	return cmd
}

// exploreReport solves the circuit, falling back to the unsolved report
// when the system is singular.
func (c *CLI) exploreReport(ctx context.Context, stdin io.Reader, input string, opts exploreOpts) (*pipeline.Report, error) {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := opts.readGraph(ctx, runner, input, stdin)
	if err != nil {
		return nil, err
	}
	res, err := runner.Execute(ctx, g, pipeline.Options{Reduced: opts.reduced, Precision: pipeline.Places(c.Config.Precision), Logger: c.Logger})
	if errors.Is(err, errors.ErrCodeSingular) {
		c.Logger.Warn("system is singular; showing cycles only")
		res, err = runner.Execute(ctx, g, pipeline.Options{SkipSolve: true, Logger: c.Logger})
	}
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}
