package circuit

import (
	"errors"
	"math"
	"slices"
	"testing"

	kerrors "github.com/matzehuels/kirchhoff/pkg/errors"
)

func triangle() []Record {
	return []Record{
		{From: 0, To: 1, Resistance: 1, Voltage: 6},
		{From: 1, To: 2, Resistance: 1},
		{From: 2, To: 0, Resistance: 1},
	}
}

func TestNew(t *testing.T) {
	g, err := New(3, triangle())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Fatalf("got %d nodes %d edges, want 3/3", g.NodeCount(), g.EdgeCount())
	}
	for i, b := range g.Branches() {
		if b.Column != i {
			t.Errorf("branch %d: Column = %d", i, b.Column)
		}
	}
	b := g.Branch(2)
	if b.Ref != (Direction{From: 2, To: 0}) {
		t.Errorf("Ref = %v, want (2,0)", b.Ref)
	}
	if !b.Straight(2, 0) || b.Straight(0, 2) {
		t.Error("Straight does not follow the reference direction")
	}
	if got := g.Neighbors(0); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Neighbors(0) = %v, want [1 2]", got)
	}
	if !slices.Equal(g.Records(), triangle()) {
		t.Errorf("Records() = %v, want input back", g.Records())
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name     string
		nodes    int
		records  []Record
		sentinel error
	}{
		{"origin out of range", 2, []Record{{From: 2, To: 0}}, ErrNodeOutOfRange},
		{"destination out of range", 3, []Record{{From: 0, To: 3}}, ErrNodeOutOfRange},
		{"negative index", 3, []Record{{From: -1, To: 0}}, ErrNodeOutOfRange},
		{"negative node count", -1, nil, ErrNodeOutOfRange},
		{"self loop", 2, []Record{{From: 1, To: 1}}, ErrSelfLoop},
		{"parallel", 2, []Record{{From: 0, To: 1}, {From: 1, To: 0}}, ErrParallelBranch},
		{"parallel same direction", 2, []Record{{From: 0, To: 1}, {From: 0, To: 1}}, ErrParallelBranch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.nodes, tt.records)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			if !kerrors.Is(err, kerrors.ErrCodeInvalidFormat) {
				t.Errorf("code = %v, want %v", kerrors.GetCode(err), kerrors.ErrCodeInvalidFormat)
			}
			if !kerrors.IsUserError(err) {
				t.Error("IsUserError = false, want true")
			}
		})
	}
}

func TestNewRejectsNonFinite(t *testing.T) {
	_, err := New(2, []Record{{From: 0, To: 1, Resistance: math.NaN()}})
	if !kerrors.Is(err, kerrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestColumnNotFound(t *testing.T) {
	g, _ := New(4, triangle())
	_, err := g.Column(0, 3)
	if !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("error = %v, want ErrBranchNotFound", err)
	}
	if !kerrors.Is(err, kerrors.ErrCodeNotFound) {
		t.Errorf("code = %v, want NOT_FOUND", kerrors.GetCode(err))
	}
	if kerrors.IsUserError(err) {
		t.Error("NOT_FOUND must not be reported as a user error")
	}
}

func TestBranchesIsCopy(t *testing.T) {
	g, _ := New(3, triangle())
	bs := g.Branches()
	bs[0].Resistance = 100
	if g.Branch(0).Resistance != 1 {
		t.Error("mutating Branches() result changed the graph")
	}
}

func TestIsolatedNode(t *testing.T) {
	g, err := New(3, []Record{{From: 0, To: 1, Resistance: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(g.Neighbors(2)); n != 0 {
		t.Errorf("isolated node has %d neighbors", n)
	}
	if g.Neighbors(5) != nil {
		t.Error("Neighbors of unknown node should be nil")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		c, l float64
		want Classification
	}{
		{0, 0, Ordinary},
		{1e-3, 0, RC},
		{0, 2, RL},
		{1e-3, 2, RLC},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			g, err := New(3, []Record{
				{From: 0, To: 1, Resistance: 1, Voltage: 6},
				{From: 1, To: 2, Resistance: 1, Capacitance: tt.c},
				{From: 2, To: 0, Resistance: 1, Inductance: tt.l},
			})
			if err != nil {
				t.Fatal(err)
			}
			if got := Classify(g); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyComponentsOnDifferentBranches(t *testing.T) {
	g, _ := New(3, []Record{
		{From: 0, To: 1, Capacitance: 1},
		{From: 1, To: 2, Inductance: 1},
	})
	if got := Classify(g); got != RLC {
		t.Errorf("Classify = %v, want RLC", got)
	}
	empty, _ := New(0, nil)
	if got := Classify(empty); got != Ordinary {
		t.Errorf("Classify(empty) = %v, want Ordinary", got)
	}
}

func TestClassificationString(t *testing.T) {
	if got := Classification(9).String(); got != "Classification(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		b    Branch
		want string
	}{
		{Branch{Resistance: 1, Voltage: 6}, "1Ω 6V"},
		{Branch{Resistance: 2.5, Capacitance: 0.001}, "2.5Ω 0.001F"},
		{Branch{Voltage: -3, Inductance: 4}, "-3V 4H"},
		{Branch{}, ""},
	}
	for _, tt := range tests {
		if got := Label(tt.b); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	d := Direction{From: 3, To: 1}
	if d.Reverse() != (Direction{From: 1, To: 3}) {
		t.Errorf("Reverse = %v", d.Reverse())
	}
	if d.Pair() != (Pair{Lo: 1, Hi: 3}) {
		t.Errorf("Pair = %v", d.Pair())
	}
	if d.String() != "[3]---->[1]" {
		t.Errorf("String = %q", d.String())
	}
	b := Branch{Ref: d}
	if b.Other(3) != 1 || b.Other(1) != 3 {
		t.Error("Other returned wrong endpoint")
	}
}
