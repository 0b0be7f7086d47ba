package cli

import (
	"testing"

	"github.com/alexanderramin/hrdesk/internal/teatest"
)

// TestDriver wraps teatest.Driver with hrdesk-specific inspection methods.
// It provides access to appModel internals (view stack, shared state,
// command bar focus) that the generic driver can't see.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver creates a TestDriver from a test App.
// It constructs the appModel, sets terminal size and drains Init().
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	m := newAppModel(app)
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()

	return &TestDriver{Driver: d}
}

// ── High-level helpers ───────────────────────────────────────────────────────

// Command focuses the command bar with ':', types the command, presses
// Enter and waits for any request the command started.
func (d *TestDriver) Command(input string) {
	d.T.Helper()
	d.PressKey(':')
	d.Type(input)
	d.PressEnter()
	d.Settle()
}

// Open opens a screen's listing and waits for its first page.
func (d *TestDriver) Open(screen string) *listingView {
	d.T.Helper()
	d.Command("open " + screen)
	lv, ok := d.activeView().(*listingView)
	if !ok {
		d.T.Fatalf("open %s: active view is %T", screen, d.activeView())
	}
	return lv
}

// ── hrdesk-specific inspection ───────────────────────────────────────────────

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

func (d *TestDriver) activeView() View {
	m := d.appModel()
	return m.activeView()
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	v := d.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ActiveViewTitle returns the Title() of the top view on the stack.
func (d *TestDriver) ActiveViewTitle() string {
	v := d.activeView()
	if v == nil {
		return ""
	}
	return v.Title()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// ViewStackIDs returns the ViewIDs of all views on the stack, bottom to top.
func (d *TestDriver) ViewStackIDs() []ViewID {
	m := d.appModel()
	ids := make([]ViewID, len(m.viewStack))
	for i, v := range m.viewStack {
		ids[i] = v.ID()
	}
	return ids
}

// State returns the shared state for inspection.
func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// IsQuitting returns whether the app has signaled a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}

// CmdBarFocused returns whether the command bar currently has focus.
func (d *TestDriver) CmdBarFocused() bool {
	m := d.appModel()
	return m.cmdBar.Focused()
}

// LastOutput returns the last command output displayed in the content area.
func (d *TestDriver) LastOutput() string {
	return d.appModel().lastOutput
}

// Flash returns the status bar notice.
func (d *TestDriver) Flash() string {
	return d.appModel().flash
}
