package netlist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("netlist syntax error")

// Format names a netlist encoding.
type Format string

const (
	FormatLine Format = "line"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatLine, FormatTOML, FormatJSON}

// ParseFormat resolves a format name. The empty string selects [FormatLine].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line", "txt", "net", "text/plain":
		return FormatLine, nil
	case "toml", "application/toml":
		return FormatTOML, nil
	case "json", "application/json":
		return FormatJSON, nil
	}
	return "", kerrors.New(kerrors.ErrCodeUnsupported, "unknown netlist format %q (want line, toml or json)", s)
}

// FormatFromPath picks a format from the file extension of path. Unknown
// extensions fall back to [FormatLine].
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return FormatLine
}

// Netlist is a parsed circuit description.
type Netlist struct {
	Nodes   int              `json:"nodes" toml:"nodes"`
	Records []circuit.Record `json:"branches" toml:"branch"`
}

// FromGraph converts a graph back into a netlist.
func FromGraph(g *circuit.Graph) *Netlist {
	return &Netlist{Nodes: g.NodeCount(), Records: g.Records()}
}

// Graph builds the circuit graph described by n.
func (n *Netlist) Graph() (*circuit.Graph, error) {
	return circuit.New(n.Nodes, n.Records)
}

// Read decodes a netlist in format f from r.
func Read(r io.Reader, f Format) (*Netlist, error) {
	switch f {
	case FormatLine, "":
		return ReadLine(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatJSON:
		return ReadJSON(r)
	}
	return nil, kerrors.New(kerrors.ErrCodeUnsupported, "unknown netlist format %q", f)
}

// Write encodes n in format f to w.
func Write(w io.Writer, n *Netlist, f Format) error {
	switch f {
	case FormatLine, "":
		return WriteLine(w, n)
	case FormatTOML:
		return WriteTOML(w, n)
	case FormatJSON:
		return WriteJSON(w, n)
	}
	return kerrors.New(kerrors.ErrCodeUnsupported, "unknown netlist format %q", f)
}

// Import reads the netlist file at path, choosing the format from its
// extension. A missing file is a FILE_NOT_FOUND error.
func Import(path string) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "netlist %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := Read(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Export writes n to path, choosing the format from its extension.
func Export(n *Netlist, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, n, FormatFromPath(path))
}

func syntaxErr(format string, args ...any) error {
	return kerrors.Wrap(kerrors.ErrCodeInvalidFormat, ErrSyntax, format, args...)
}
