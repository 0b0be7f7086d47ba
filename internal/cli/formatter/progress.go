package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░] 45%, green above two thirds,
// yellow above one third and red below.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar(pct, width)), pct*100)
}

// RenderCount renders n against the largest value of a distribution as a
// horizontal bar followed by the count.
func RenderCount(n, largest, width int) string {
	pct := 0.0
	if largest > 0 {
		pct = float64(n) / float64(largest)
	}
	return StyleBlue.Render(bar(pct, width)) + " " + fmt.Sprint(n)
}

func bar(pct float64, width int) string {
	width = max(width, 2)
	filled := min(int(pct*float64(width)+0.5), width)
	if pct > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
}
