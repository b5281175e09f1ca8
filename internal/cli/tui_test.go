package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/kirchhoff/pkg/kirchhoff"
	"github.com/matzehuels/kirchhoff/pkg/netlist"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

func ladderReport(t *testing.T, opts pipeline.Options) *pipeline.Report {
	t.Helper()
	r := pipeline.NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	g, err := r.Parse(context.Background(), strings.NewReader(rcLadderNet), netlist.FormatLine)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	return res.Report
}

func press(m ExploreModel, key tea.KeyMsg) (ExploreModel, tea.Cmd) {
	next, cmd := m.Update(key)
	return next.(ExploreModel), cmd
}

var (
	keyDown = tea.KeyMsg{Type: tea.KeyDown}
	keyUp   = tea.KeyMsg{Type: tea.KeyUp}
	keyTab  = tea.KeyMsg{Type: tea.KeyTab}
	keyQuit = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
)

func TestExploreNavigation(t *testing.T) {
	m := NewExploreModel(ladderReport(t, pipeline.Options{}))

	m, _ = press(m, keyDown)
	if m.Cursor != 1 {
		t.Fatalf("Cursor = %d after down, want 1", m.Cursor)
	}
	m, _ = press(m, keyDown)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d past the last cycle, want 1", m.Cursor)
	}
	m, _ = press(m, keyUp)
	m, _ = press(m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after moving up, want 0", m.Cursor)
	}

	m, _ = press(m, keyDown)
	m, _ = press(m, keyTab)
	if m.Pane != PaneEquations || m.Cursor != 0 {
		t.Errorf("after tab: Pane = %v, Cursor = %d; want Equations, 0", m.Pane, m.Cursor)
	}
	for range 10 {
		m, _ = press(m, keyDown)
	}
	if m.Cursor != 4 {
		t.Errorf("Cursor = %d at the last equation, want 4", m.Cursor)
	}
	m, _ = press(m, keyTab)
	if m.Pane != PaneCycles {
		t.Errorf("Pane = %v after second tab, want Cycles", m.Pane)
	}
}

func TestExploreScrolling(t *testing.T) {
	m := NewExploreModel(ladderReport(t, pipeline.Options{}))
	m.Pane = PaneEquations
	m.Height = 2

	for range 3 {
		m, _ = press(m, keyDown)
	}
	if m.Cursor != 3 || m.Offset != 2 {
		t.Errorf("Cursor, Offset = %d, %d; want 3, 2", m.Cursor, m.Offset)
	}
	m, _ = press(m, keyUp)
	m, _ = press(m, keyUp)
	if m.Offset != 1 {
		t.Errorf("Offset = %d after scrolling up, want 1", m.Offset)
	}
}

func TestExploreQuit(t *testing.T) {
	m := NewExploreModel(ladderReport(t, pipeline.Options{}))
	_, cmd := press(m, keyQuit)
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestExploreView(t *testing.T) {
	m := NewExploreModel(ladderReport(t, pipeline.Options{}))

	view := m.View()
	for _, want := range []string{"Cycles", "Equations", "RC", "variable", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("cycles view missing %q:\n%s", want, view)
		}
	}

	m, _ = press(m, keyTab)
	view = m.View()
	for _, want := range []string{"KVL", "KCL", "= -6", "[1/5]", "2 KVL · 3 KCL"} {
		if !strings.Contains(view, want) {
			t.Errorf("equations view missing %q:\n%s", want, view)
		}
	}
}

func TestExploreViewWithoutSystem(t *testing.T) {
	m := NewExploreModel(ladderReport(t, pipeline.Options{SkipSolve: true}))
	m, _ = press(m, keyTab)
	if !strings.Contains(m.View(), "(empty)") {
		t.Errorf("unsolved equations pane should be empty:\n%s", m.View())
	}
	m, _ = press(m, keyDown)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d in an empty pane, want 0", m.Cursor)
	}
}

func TestFormatEquation(t *testing.T) {
	tests := []struct {
		name string
		sys  *kirchhoff.System
		want string
	}{
		{
			name: "mixed signs",
			sys:  &kirchhoff.System{A: [][]float64{{1, 0, -2}}, B: []float64{6}, Columns: []int{0, 1, 3}},
			want: "1·i0 - 2·i3 = 6",
		},
		{
			name: "leading negative",
			sys:  &kirchhoff.System{A: [][]float64{{-1, 1}}, B: []float64{0}, Columns: []int{0, 1}},
			want: "-1·i0 + 1·i1 = 0",
		},
		{
			name: "empty row",
			sys:  &kirchhoff.System{A: [][]float64{{0, 0}}, B: []float64{0}, Columns: []int{0, 1}},
			want: "0 = 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatEquation(tt.sys, 0); got != tt.want {
				t.Errorf("formatEquation() = %q, want %q", got, tt.want)
			}
		})
	}
}
