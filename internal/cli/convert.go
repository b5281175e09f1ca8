package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/netlist"
)

type convertOpts struct {
	inputOpts
	to string // output format when writing to stdout
}

// convertCommand creates the convert command, which rewrites a netlist in
// another format.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [netlist] [output]",
		Short: "Rewrite a netlist in another format",
		Long: `Rewrite a netlist in another format.

Formats follow the file extensions (.net or .txt for the line format, .toml,
.json). Either path may be "-" for stdin or stdout; --to picks the format
written to stdout. The circuit is validated before it is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.to, "to", "", "format written to stdout: line, toml, json (default line)")
	return cmd
}

func (c *CLI) runConvert(stdin io.Reader, stdout, stderr io.Writer, input, output string, opts convertOpts) error {
	n, err := opts.readNetlist(input, stdin)
	if err != nil {
		return err
	}
	g, err := n.Graph()
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	n = netlist.FromGraph(g)

	if output == "-" {
		f, err := netlist.ParseFormat(opts.to)
		if err != nil {
			return err
		}
		return netlist.Write(stdout, n, f)
	}
	if err := netlist.Export(n, output); err != nil {
		return err
	}
	c.Logger.Debug("converted netlist", "from", input, "to", output, "branches", g.EdgeCount())
	printSuccess(stderr, "Converted %d branches", g.EdgeCount())
	printFile(stderr, output)
	return nil
}
