package rowcast

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	cellKnown     = "K"
	cellPredicted = "?"
	cellEmpty     = "."
)

// RenderOptions controls grid output.
type RenderOptions struct {
	// Color styles known cells gold and predictions green/yellow/red by tier.
	Color bool
}

var (
	knownStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d4af37"))
	tierStyles = map[Tier]lipgloss.Style{
		TierHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4caf50")),
		TierMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffc107")),
		TierLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f44336")),
	}
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b7355"))
)

// RenderGrid draws every row from the smallest to the largest row present so gaps stay
// visible. A known position wins over a prediction in the same cell.
func RenderGrid(known []Position, predictions []Prediction, maxCols int, opts RenderOptions) string {
	if len(known) == 0 && len(predictions) == 0 {
		return "No positions yet: add known positions and run a prediction."
	}

	knownCells := make(map[Position]bool, len(known))
	minRow, maxRow := 0, 0
	track := func(row int) {
		if minRow == 0 || row < minRow {
			minRow = row
		}
		if row > maxRow {
			maxRow = row
		}
	}
	for _, p := range known {
		knownCells[p] = true
		track(p.Row)
	}
	predicted := make(map[Position]Prediction, len(predictions))
	for _, p := range predictions {
		key := Position{Row: p.Row, Col: p.Col}
		if _, seen := predicted[key]; !seen {
			predicted[key] = p
		}
		track(p.Row)
	}

	width := len(fmt.Sprint(maxRow))
	var b strings.Builder
	for row := minRow; row <= maxRow; row++ {
		label := fmt.Sprintf("Row %*d", width, row)
		if opts.Color {
			label = labelStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString(" |")
		for col := 1; col <= maxCols; col++ {
			key := Position{Row: row, Col: col}
			cell := cellEmpty
			switch pred, ok := predicted[key]; {
			case knownCells[key]:
				cell = cellKnown
				if opts.Color {
					cell = knownStyle.Render(cell)
				}
			case ok:
				cell = cellPredicted
				if opts.Color {
					cell = tierStyles[pred.Tier].Render(cell)
				}
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(" |")
		}
		if row < maxRow {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderAnalysis summarizes the column pattern and row gaps behind a report.
func RenderAnalysis(report *Report, known []Position) string {
	var b strings.Builder
	stats := report.Stats

	fmt.Fprintf(&b, "Avg row gap:    %.1f\n", stats.Avg)
	if report.Method == MethodRandom {
		fmt.Fprintf(&b, "Pattern type:   RANDOM\n")
		fmt.Fprintf(&b, "Column pattern: uniform random columns\n")
	} else {
		fmt.Fprintf(&b, "Pattern type:   %s (%.0f%% confidence)\n",
			strings.ToUpper(string(report.Pattern.Type)), report.Pattern.Confidence*100)
		fmt.Fprintf(&b, "Column pattern: %s\n", report.Pattern.Description)
	}

	cols := make([]int, len(known))
	for i, p := range known {
		cols[i] = p.Col
	}
	fmt.Fprintf(&b, "Columns:        %s\n", joinInts(cols, " "))

	switch {
	case stats.IsFibonacci:
		fmt.Fprintf(&b, "Row gaps:       %s (Fibonacci: each gap is the sum of the previous two)\n",
			joinInts(stats.Intervals, " → "))
	case len(stats.Intervals) > 0:
		fmt.Fprintf(&b, "Row gaps:       %s\n", joinInts(stats.Intervals, ", "))
		fmt.Fprintf(&b, "Gap range:      %d-%d rows\n", stats.Min, stats.Max)
	default:
		fmt.Fprintf(&b, "Row gaps:       %s\n", stats.Pattern)
	}
	return strings.TrimRight(b.String(), "\n")
}
