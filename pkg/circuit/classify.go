package circuit

import (
	"strconv"
	"strings"
)

// Classification labels a circuit by the kinds of reactive components it holds.
type Classification int

const (
	// Ordinary circuits hold only resistors and sources.
	Ordinary Classification = iota
	// RC circuits hold at least one capacitance and no inductance.
	RC
	// RL circuits hold at least one inductance and no capacitance.
	RL
	// RLC circuits hold both.
	RLC
)

func (c Classification) String() string {
	switch c {
	case Ordinary:
		return "Ordinary"
	case RC:
		return "RC"
	case RL:
		return "RL"
	case RLC:
		return "RLC"
	}
	return "Classification(" + strconv.Itoa(int(c)) + ")"
}

// Classify inspects every branch of g. It returns RLC if some branch has a
// nonzero inductance and some branch has a nonzero capacitance, RL or RC if
// only one kind is present, and Ordinary otherwise.
func Classify(g *Graph) Classification {
	var hasC, hasL bool
	for _, b := range g.branches {
		hasC = hasC || b.Capacitance != 0
		hasL = hasL || b.Inductance != 0
	}
	switch {
	case hasC && hasL:
		return RLC
	case hasL:
		return RL
	case hasC:
		return RC
	}
	return Ordinary
}

// Label formats the nonzero components of b, e.g. "1Ω 6V" or "2Ω 0.5F".
// A branch with no components yields an empty string.
func Label(b Branch) string {
	parts := make([]string, 0, 4)
	add := func(v float64, unit string) {
		if v != 0 {
			parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64)+unit)
		}
	}
	add(b.Resistance, "Ω")
	add(b.Voltage, "V")
	add(b.Capacitance, "F")
	add(b.Inductance, "H")
	return strings.Join(parts, " ")
}
