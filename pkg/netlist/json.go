package netlist

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadJSON decodes the JSON format. Unknown fields are rejected.
func ReadJSON(r io.Reader) (*Netlist, error) {
	var raw struct {
		Nodes   *int `json:"nodes"`
		Netlist
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, syntaxErr("json: %v", err)
	}
	if raw.Nodes == nil {
		return nil, syntaxErr("json: missing nodes")
	}
	raw.Netlist.Nodes = *raw.Nodes
	return &raw.Netlist, nil
}

// WriteJSON encodes n in the JSON format.
func WriteJSON(w io.Writer, n *Netlist) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
