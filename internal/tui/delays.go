package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DelayRow is one line of a delay preview.
type DelayRow struct {
	Step       int
	Delay      time.Duration
	Cumulative time.Duration
}

// BarWidth is the width of a bar for a delay equal to the cap.
const BarWidth = 30

// RenderDelays formats rows as a table. Styled output adds a bar per row
// scaled against limit, dims the running total and highlights capped rows.
func RenderDelays(rows []DelayRow, limit time.Duration, styled bool) string {
	var b strings.Builder

	header := fmt.Sprintf("%-6s %12s %12s", "STEP", "DELAY", "TOTAL")
	if styled {
		header = HeaderStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	for _, row := range rows {
		total := fmt.Sprintf("%12s", row.Cumulative)
		if styled {
			total = MutedStyle.Render(total)
		}
		line := fmt.Sprintf("%-6d %12s %s", row.Step, row.Delay, total)
		if styled {
			line += " " + renderBar(row.Delay, limit)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderBar(delay, limit time.Duration) string {
	if limit <= 0 {
		return ""
	}
	width := int(float64(BarWidth) * float64(delay) / float64(limit))
	if width < 1 {
		width = 1
	}
	if width > BarWidth {
		width = BarWidth
	}

	style := BarStyle
	if delay >= limit {
		style = CappedBarStyle
	}
	bar := style.Render(strings.Repeat(SymbolBar, width))
	// Pad so trailing columns line up regardless of escape sequences.
	return lipgloss.NewStyle().Width(BarWidth).Render(bar)
}
