package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// itemColors cycles through distinguishable colors for grid cells.
var itemColors = []lipgloss.Color{"36", "75", "35", "220", "141", "209", "44", "168"}

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleOverlap = lipgloss.NewStyle().Foreground(colorRed)
	styleClean   = lipgloss.NewStyle().Foreground(colorGreen)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconEmpty   = "·"
)

// statusOut receives status lines. Snapshot data goes to stdout, so status
// goes to stderr to keep pipelines clean.
var statusOut io.Writer = os.Stderr

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(statusOut, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(statusOut, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(statusOut, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(statusOut, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(statusOut, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints layout statistics on a single line, e.g.
// "4 items · 7 rows · no overlaps".
func printStats(l grid.Layout) {
	fmt.Fprintln(statusOut, "  "+statsLine(l))
}

func statsLine(l grid.Layout) string {
	parts := []string{
		StyleDim.Render(plural(len(l), "item")),
		StyleDim.Render(plural(l.Bottom(), "row")),
	}
	if n := len(l.Overlapping()); n > 0 {
		parts = append(parts, styleOverlap.Render(plural(n, "overlap")))
	} else {
		parts = append(parts, styleClean.Render("no overlaps"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// =============================================================================
// Layout Rendering
// =============================================================================

// renderGrid draws a layout as a character grid, one cell per grid unit. Each
// item is drawn with the first letter of its id in its own color; cells
// covered by more than one item are drawn as a red "#". The item whose id is
// focus is drawn bold.
func renderGrid(l grid.Layout, columns int, focus string) string {
	rows := l.Bottom()
	cells := make([][]int, rows)
	for y := range cells {
		cells[y] = make([]int, columns)
		for x := range cells[y] {
			cells[y][x] = -1
		}
	}
	for i, it := range l {
		r := it.Rect()
		for y := max(r.Y, 0); y < min(r.Bottom(), rows); y++ {
			for x := max(r.X, 0); x < min(r.Right(), columns); x++ {
				if cells[y][x] == -1 {
					cells[y][x] = i
				} else {
					cells[y][x] = -2
				}
			}
		}
	}

	var b strings.Builder
	for y := range cells {
		for x := range cells[y] {
			switch i := cells[y][x]; i {
			case -1:
				b.WriteString(StyleDim.Render(iconEmpty))
			case -2:
				b.WriteString(styleOverlap.Render("#"))
			default:
				style := lipgloss.NewStyle().Foreground(itemColors[i%len(itemColors)])
				if l[i].ID == focus {
					style = style.Bold(true).Reverse(true)
				}
				b.WriteString(style.Render(glyph(l[i].ID)))
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func glyph(id string) string {
	for _, r := range id {
		return string(r)
	}
	return "?"
}

// itemsTable renders the items of a snapshot with their component types.
func itemsTable(s dashboard.Snapshot) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		}).
		Headers("ID", "TYPE", "X", "Y", "W", "H", "MIN", "MAX W")

	for _, i := range s.Layout.ReadOrder() {
		it := s.Layout[i]
		minSize := "-"
		if it.MinW > 0 || it.MinH > 0 {
			minSize = fmt.Sprintf("%dx%d", it.MinW, it.MinH)
		}
		maxW := "-"
		if it.MaxW > 0 {
			maxW = strconv.Itoa(it.MaxW)
		}
		t.Row(it.ID, s.Components[it.ID].Type,
			strconv.Itoa(it.X), strconv.Itoa(it.Y), strconv.Itoa(it.W), strconv.Itoa(it.H),
			minSize, maxW)
	}
	return t.String()
}
