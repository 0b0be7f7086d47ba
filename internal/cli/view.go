package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID identifies each type of view in the TUI.
type ViewID int

const (
	ViewHome ViewID = iota
	ViewListing
	ViewDetail
	ViewDashboard
	ViewForm
)

// View is the interface that all TUI views must implement.
// It extends tea.Model with navigation and help metadata.
type View interface {
	tea.Model
	ID() ViewID
	ShortHelp() []key.Binding // key hints shown in the bottom bar
	Title() string            // breadcrumb segment for this view
}

// inputCapturer is implemented by views that own a text input while it is
// focused. Such views receive every key, bypassing global bindings.
type inputCapturer interface {
	CapturesInput() bool
}

// closer is implemented by views holding resources, such as an in-flight
// request, that must be released when the view leaves the stack.
type closer interface {
	Close()
}

// viewCapturesInput returns true if the active view has its own text input
// and should receive all key events (bypassing global keybindings like q/:/Esc).
func viewCapturesInput(v View) bool {
	if v == nil {
		return false
	}
	if c, ok := v.(inputCapturer); ok {
		return c.CapturesInput()
	}
	return false
}

func closeView(v View) {
	if c, ok := v.(closer); ok {
		c.Close()
	}
}
