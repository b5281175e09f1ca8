package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kirchhoff/pkg/circuit/topology"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - capacitive branches
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for capacitive branches and warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(16)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints circuit statistics on a single line.
func printStats(w io.Writer, nodes, branches int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodes),
		fmt.Sprintf("%d branches", branches),
	}
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Fprintln(w, line)
}

// =============================================================================
// Tables
// =============================================================================

// currentsTable renders one row per branch with its reference direction,
// components and current. Branches without a current show "—".
func currentsTable(rep *pipeline.Report) string {
	rows := make([][]string, 0, len(rep.Branches))
	for _, b := range rep.Branches {
		cur := "—"
		if b.Current != nil {
			cur = strconv.FormatFloat(*b.Current, 'f', -1, 64) + " A"
		}
		tree := ""
		if b.Tree {
			tree = "tree"
		}
		rows = append(rows, []string{strconv.Itoa(b.Column), b.Direction.String(), b.Label, tree, cur})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Direction", "Components", "", "Current").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row >= 0 && row < len(rep.Branches) && rep.Branches[row].Variable {
				return base.Foreground(colorYellow)
			}
			if col == 4 {
				return base.Foreground(colorCyan)
			}
			if col == 3 {
				return base.Foreground(colorDim)
			}
			return base
		}).
		Render()
}

// formatCycle writes a cycle as its node walk, e.g. "0 → 1 → 2 → 0".
func formatCycle(c topology.Cycle) string {
	if len(c.Steps) == 0 {
		return ""
	}
	nodes := []string{strconv.Itoa(c.Steps[0].From)}
	for _, s := range c.Steps {
		nodes = append(nodes, strconv.Itoa(s.To))
	}
	return strings.Join(nodes, " "+iconArrow+" ")
}

// formatColumns writes column indices as "c0 c1 c3".
func formatColumns(cols []int) string {
	if len(cols) == 0 {
		return "—"
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "c" + strconv.Itoa(c)
	}
	return strings.Join(parts, " ")
}
