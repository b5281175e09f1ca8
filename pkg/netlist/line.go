package netlist

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/kirchhoff/pkg/circuit"
)

// ReadLine decodes the line format. The header's branch count must match
// the number of branch lines.
func ReadLine(r io.Reader) (*Netlist, error) {
	sc := bufio.NewScanner(r)
	var (
		n      *Netlist
		want   int
		header int
		lineNo int
	)

	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		if n == nil {
			if len(fields) != 2 {
				return nil, syntaxErr("line %d: header needs 2 fields (nodes branches), got %d", lineNo, len(fields))
			}
			nodes, err := parseIndex(fields[0])
			if err != nil {
				return nil, syntaxErr("line %d: node count: %v", lineNo, err)
			}
			edges, err := parseIndex(fields[1])
			if err != nil {
				return nil, syntaxErr("line %d: branch count: %v", lineNo, err)
			}
			n = &Netlist{Nodes: nodes, Records: make([]circuit.Record, 0, max(edges, 0))}
			want, header = edges, lineNo
			continue
		}

		if len(fields) != 6 {
			return nil, syntaxErr("line %d: branch needs 6 fields (from to R V C L), got %d", lineNo, len(fields))
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, syntaxErr("line %d: %v", lineNo, err)
		}
		n.Records = append(n.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read netlist: %w", err)
	}

	if n == nil {
		return nil, syntaxErr("empty netlist")
	}
	if len(n.Records) != want {
		return nil, syntaxErr("line %d: header declares %d branches, found %d", header, want, len(n.Records))
	}
	return n, nil
}

func parseRecord(fields []string) (circuit.Record, error) {
	from, err := parseIndex(fields[0])
	if err != nil {
		return circuit.Record{}, fmt.Errorf("origin: %w", err)
	}
	to, err := parseIndex(fields[1])
	if err != nil {
		return circuit.Record{}, fmt.Errorf("destination: %w", err)
	}
	vals := make([]float64, 4)
	names := [...]string{"resistance", "voltage", "capacitance", "inductance"}
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return circuit.Record{}, fmt.Errorf("%s: %q is not a number", names[i], fields[i+2])
		}
		vals[i] = v
	}
	return circuit.Record{
		From:        from,
		To:          to,
		Resistance:  vals[0],
		Voltage:     vals[1],
		Capacitance: vals[2],
		Inductance:  vals[3],
	}, nil
}

// parseIndex accepts integers written either plainly or as whole floats ("2.0").
func parseIndex(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

// WriteLine encodes n in the line format.
func WriteLine(w io.Writer, n *Netlist) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", n.Nodes, len(n.Records))
	for _, r := range n.Records {
		fmt.Fprintf(bw, "%d %d %s %s %s %s\n", r.From, r.To,
			formatFloat(r.Resistance), formatFloat(r.Voltage),
			formatFloat(r.Capacitance), formatFloat(r.Inductance))
	}
	return bw.Flush()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
