package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxCellWidth caps a rendered column; longer cells are truncated.
const MaxCellWidth = 40

// RenderTable renders an aligned table with a header separator line.
// Column widths are the widest visible cell, capped at MaxCellWidth.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := make([]int, len(headers))
	measure := func(i int, cell string) {
		widths[i] = min(max(widths[i], lipgloss.Width(cell)), MaxCellWidth)
	}
	for i, h := range headers {
		measure(i, h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			measure(i, row[i])
		}
	}

	const gap = "  "
	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = Truncate(cells[i], widths[i])
			}
			if style != nil {
				cell = style(cell)
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)))
				b.WriteString(gap)
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return StyleHeader.Render(s) })
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = StyleDim.Render(strings.Repeat("─", w))
	}
	writeRow(seps, nil)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}
