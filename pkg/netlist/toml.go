package netlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// ReadTOML decodes the TOML format. Unknown keys are rejected.
func ReadTOML(r io.Reader) (*Netlist, error) {
	var n Netlist
	md, err := toml.NewDecoder(r).Decode(&n)
	if err != nil {
		return nil, syntaxErr("toml: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, syntaxErr("toml: unknown keys: %s", strings.Join(keys, ", "))
	}
	if !md.IsDefined("nodes") {
		return nil, syntaxErr("toml: missing nodes")
	}
	return &n, nil
}

// WriteTOML encodes n in the TOML format.
func WriteTOML(w io.Writer, n *Netlist) error {
	if err := toml.NewEncoder(w).Encode(n); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}
