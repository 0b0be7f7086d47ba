package filter

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SettledMsg is delivered when a debounce window elapses. Only the message
// whose generation is still current carries a value to commit.
type SettledMsg struct {
	Owner string
	Gen   uint64
	Value string
}

// Debouncer restarts its window on every Bump. Restarting is expressed as a
// generation counter: earlier ticks still fire but are ignored by Settled.
// A Debouncer is owned by a single bubbletea model and is not safe for
// concurrent use.
type Debouncer struct {
	owner  string
	window time.Duration
	gen    uint64
}

// NewDebouncer creates a debouncer. owner distinguishes ticks when a model
// holds several debouncers.
func NewDebouncer(owner string, window time.Duration) *Debouncer {
	return &Debouncer{owner: owner, window: window}
}

// Window returns the debounce window.
func (d *Debouncer) Window() time.Duration { return d.window }

// Bump starts a new window for value and returns the tick command.
func (d *Debouncer) Bump(value string) tea.Cmd {
	d.gen++
	msg := SettledMsg{Owner: d.owner, Gen: d.gen, Value: value}
	return tea.Tick(d.window, func(time.Time) tea.Msg { return msg })
}

// Cancel invalidates any pending tick.
func (d *Debouncer) Cancel() { d.gen++ }

// Settled reports whether msg belongs to this debouncer and is the latest
// bump, returning the value to commit.
func (d *Debouncer) Settled(msg SettledMsg) (string, bool) {
	if msg.Owner != d.owner || msg.Gen != d.gen {
		return "", false
	}
	return msg.Value, true
}
