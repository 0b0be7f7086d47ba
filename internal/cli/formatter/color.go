package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// Record statuses grouped by tone. The backend is not consistent about
// casing, so lookups are lower-cased.
var (
	positiveStatuses = map[string]bool{"open": true, "approved": true, "active": true, "hired": true, "published": true}
	pendingStatuses  = map[string]bool{"pending": true, "draft": true, "in_review": true, "interview": true, "screening": true, "on_hold": true}
	negativeStatuses = map[string]bool{"closed": true, "rejected": true, "inactive": true, "cancelled": true, "archived": true}
)

// StatusStyle returns the style for a record status value.
func StatusStyle(status string) lipgloss.Style {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case positiveStatuses[s]:
		return StyleGreen
	case pendingStatuses[s]:
		return StyleYellow
	case negativeStatuses[s]:
		return StyleRed
	default:
		return StyleDim
	}
}

// StatusPill renders a status as a colored "● Label".
func StatusPill(status string) string {
	if strings.TrimSpace(status) == "" {
		return StyleDim.Render("○ N/A")
	}
	label := strings.ReplaceAll(status, "_", " ")
	label = strings.ToUpper(label[:1]) + label[1:]
	return StatusStyle(status).Render("● " + label)
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// ErrorLine renders a single red error line.
func ErrorLine(msg string) string {
	return StyleRed.Render("✖ " + msg)
}

// SuccessLine renders a single green confirmation line.
func SuccessLine(msg string) string {
	return StyleGreen.Render("✔") + " " + msg
}
