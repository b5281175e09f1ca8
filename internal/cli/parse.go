package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/netlist"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

// inputOpts are the flags shared by every command that reads a netlist.
type inputOpts struct {
	format string // overrides the format inferred from the file extension
}

func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "input-format", "", "netlist format: line, toml, json (default from file extension; line for stdin)")
}

// readNetlist decodes the netlist at path without building its graph. "-"
// reads stdin in the line format unless --input-format says otherwise.
func (o *inputOpts) readNetlist(path string, stdin io.Reader) (*netlist.Netlist, error) {
	if path == "-" || o.format != "" {
		f, err := netlist.ParseFormat(o.format)
		if err != nil {
			return nil, err
		}
		if path == "-" {
			return netlist.Read(stdin, f)
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, openErr(path, err)
		}
		defer file.Close()
		return netlist.Read(file, f)
	}
	return netlist.Import(path)
}

func openErr(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "netlist %s", path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}

// readGraph parses the netlist at path ("-" reads stdin) with runner.
func (o *inputOpts) readGraph(ctx context.Context, runner *pipeline.Runner, path string, stdin io.Reader) (*circuit.Graph, error) {
	f := netlist.FormatLine
	if path != "-" {
		f = netlist.FormatFromPath(path)
	}
	if o.format != "" {
		var err error
		if f, err = netlist.ParseFormat(o.format); err != nil {
			return nil, err
		}
	}

	if path == "-" {
		return runner.Parse(ctx, stdin, f)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, openErr(path, err)
	}
	defer file.Close()

	g, err := runner.Parse(ctx, file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
