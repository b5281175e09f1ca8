package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kirchhoff/pkg/kirchhoff"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
)

// Pane selects what ExploreModel lists.
type Pane int

const (
	PaneCycles Pane = iota
	PaneEquations
)

func (p Pane) String() string {
	if p == PaneEquations {
		return "Equations"
	}
	return "Cycles"
}

// =============================================================================
// ExploreModel - Interactive cycle and equation browser
// =============================================================================

// ExploreModel is the bubbletea model behind the explore command. It lists
// either the fundamental cycles or the equation rows of a report; tab
// switches between them.
type ExploreModel struct {
	Report *pipeline.Report
	Pane   Pane
	Cursor int
	Height int
	Offset int
}

// NewExploreModel creates a browser over rep.
func NewExploreModel(rep *pipeline.Report) ExploreModel {
	return ExploreModel{Report: rep, Height: 15}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

// rowCount returns the number of entries in the active pane.
func (m ExploreModel) rowCount() int {
	if m.Pane == PaneEquations {
		if m.Report.System == nil {
			return 0
		}
		return len(m.Report.System.A)
	}
	return len(m.Report.Cycles)
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.Pane = (m.Pane + 1) % 2
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rowCount()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore circuit"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d nodes · %d branches · %s",
		m.Report.Nodes, len(m.Report.Branches), m.Report.Classification)))
	b.WriteString("\n")
	for _, p := range []Pane{PaneCycles, PaneEquations} {
		if p == m.Pane {
			b.WriteString(tabActiveStyle.Render(p.String()))
		} else {
			b.WriteString(listDimStyle.Render(p.String()))
		}
		b.WriteString("   ")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab switch  q quit"))
	b.WriteString("\n\n")

	n := m.rowCount()
	if n == 0 {
		b.WriteString(listDimStyle.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, n)
	var t *table.Table
	if m.Pane == PaneEquations {
		t = m.equationTable(m.Offset, end)
	} else {
		t = m.cycleTable(m.Offset, end)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listSelectedStyle.Render(m.detail()))
	b.WriteString("\n\n")
	footer := fmt.Sprintf("  [%d/%d]", m.Cursor+1, n)
	if m.Pane == PaneEquations {
		kvl, kcl := m.Report.System.CountRows()
		footer += fmt.Sprintf("  %d KVL · %d KCL", kvl, kcl)
	}
	b.WriteString(listDimStyle.Render(footer))

	return b.String()
}

func (m ExploreModel) styleFunc(variable func(i int) bool) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		if row == -1 {
			return styleHeader
		}
		i := m.Offset + row
		base := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case i == m.Cursor:
			return base.Foreground(colorCyan).Bold(true)
		case variable(i):
			return base.Foreground(colorYellow)
		}
		return base
	}
}

func (m ExploreModel) cycleTable(start, end int) *table.Table {
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		c := m.Report.Cycles[i]
		kind := "constant"
		if m.Report.Partition.IsVariableCycle(i) {
			kind = "variable"
		}
		rows = append(rows, []string{strconv.Itoa(i), "c" + strconv.Itoa(c.CoTree), formatCycle(c), kind})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Co-tree", "Walk", "").
		Rows(rows...).
		StyleFunc(m.styleFunc(m.Report.Partition.IsVariableCycle))
}

func (m ExploreModel) equationTable(start, end int) *table.Table {
	sys := m.Report.System
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		r := sys.Rows[i]
		rows = append(rows, []string{strconv.Itoa(i), r.Kind.String(), strconv.Itoa(r.Index), formatEquation(sys, i)})
	}
	isVariable := func(i int) bool {
		r := sys.Rows[i]
		return r.Kind == kirchhoff.KVL && m.Report.Partition.IsVariableCycle(r.Index)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Law", "Cycle/Node", "Equation").
		Rows(rows...).
		StyleFunc(m.styleFunc(isVariable))
}

// detail describes the entry under the cursor.
func (m ExploreModel) detail() string {
	if m.Pane == PaneEquations {
		r := m.Report.System.Rows[m.Cursor]
		if r.Kind == kirchhoff.KCL {
			return fmt.Sprintf("  currents meeting at node %d sum to zero", r.Index)
		}
		return fmt.Sprintf("  voltage drops around cycle %d equal its sources", r.Index)
	}
	c := m.Report.Cycles[m.Cursor]
	return "  branches " + formatColumns(c.Columns())
}

// formatEquation writes row i of sys as "1·i0 - 2·i3 = 6", naming currents
// by graph column.
func formatEquation(sys *kirchhoff.System, i int) string {
	var b strings.Builder
	for j, coef := range sys.A[i] {
		if coef == 0 {
			continue
		}
		abs := coef
		switch {
		case b.Len() == 0 && coef < 0:
			b.WriteString("-")
			abs = -coef
		case b.Len() > 0 && coef < 0:
			b.WriteString(" - ")
			abs = -coef
		case b.Len() > 0:
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%s·i%d", strconv.FormatFloat(abs, 'g', -1, 64), sys.Columns[j])
	}
	if b.Len() == 0 {
		b.WriteString("0")
	}
	b.WriteString(" = ")
	b.WriteString(strconv.FormatFloat(sys.B[i], 'g', -1, 64))
	return b.String()
}
