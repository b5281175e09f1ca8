package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/simulate"
)

type simulateOpts struct {
	output   string
	duration float64
	samples  int
	title    string
}

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var opts simulateOpts

	cmd := &cobra.Command{
		Use:   "simulate [problem]",
		Short: "Integrate dX/dt = A·X from a problem file",
		Long: `Integrate dX/dt = A·X from a problem file.

The problem file holds the coefficient matrix "a" and the initial state "x0",
in TOML or (with a .json extension) JSON:

  a  = [[-1.0, 0.0], [0.0, -2.0]]
  x0 = [1.0, 1.0]

The trajectory is written as CSV to stdout, or to --output. An output ending
in .png or .svg is drawn as a plot instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := c.Config.SimulateOptions()
			if !cmd.Flags().Changed("duration") {
				opts.duration = defaults.Duration
			}
			if !cmd.Flags().Changed("samples") {
				opts.samples = defaults.Samples
			}
			return c.runSimulate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.csv, .png or .svg; default CSV on stdout)")
	cmd.Flags().Float64Var(&opts.duration, "duration", simulate.DefaultDuration, "last sample time (default from config)")
	cmd.Flags().IntVar(&opts.samples, "samples", simulate.DefaultSamples, "number of samples (default from config)")
	cmd.Flags().StringVar(&opts.title, "title", "", "plot title")
	return cmd
}

func problemFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "toml"
}

func readProblem(path string) (*simulate.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "problem %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p, err := simulate.ReadProblem(bytes.NewReader(data), problemFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (c *CLI) runSimulate(ctx context.Context, stdout, stderr io.Writer, input string, opts simulateOpts) error {
	p, err := readProblem(input)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger, "simulate")
	traj, err := simulate.Run(p, simulate.Options{Duration: opts.duration, Samples: opts.samples})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done("states", traj.Dim(), "samples", len(traj.Times))

	if opts.output == "" {
		return traj.WriteCSV(stdout)
	}

	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(opts.output)); ext {
	case ".csv":
		err = traj.WriteCSV(&buf)
	case ".png", ".svg":
		err = traj.WritePlot(&buf, strings.TrimPrefix(ext, "."), simulate.PlotOptions{Title: opts.title})
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown output extension %q (want .csv, .png or .svg)", ext)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(stderr, "Simulated %d states", traj.Dim())
	printFile(stderr, opts.output)
	return nil
}
