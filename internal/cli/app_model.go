package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// appModel is the root bubbletea Model for the TUI.
// It manages a view stack and a persistent command bar.
type appModel struct {
	state     *SharedState
	viewStack []View
	cmdBar    commandBar
	quitting  bool

	// Transient output from the command bar, displayed in content area.
	lastOutput string

	// Scrollable viewport for command output that exceeds terminal height.
	outputVP     viewport.Model
	outputActive bool // true when lastOutput is being displayed in the viewport

	// One-line notice from the last action, cleared by the next key.
	flash string
}

func newAppModel(app *App) appModel {
	state := &SharedState{App: app}
	state.RefreshRole(context.Background())
	cb := newCommandBar(state)

	vp := viewport.New(0, 0)
	vp.KeyMap = outputViewportKeyMap()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := appModel{
		state:    state,
		cmdBar:   cb,
		outputVP: vp,
	}

	// Start with the screen picker as the home view.
	m.viewStack = []View{newHomeView(state)}

	return m
}

// runTUI runs the TUI on the alternate screen until the user quits.
func runTUI(app *App) error {
	p := tea.NewProgram(newAppModel(app), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
// If the stack is empty, this is a no-op.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// pop removes the top view, keeping the home view.
func (m *appModel) pop() {
	if len(m.viewStack) > 1 {
		closeView(m.activeView())
		m.viewStack = m.viewStack[:len(m.viewStack)-1]
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	if v := m.activeView(); v != nil {
		return v.Init()
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.cmdBar.SetWidth(msg.Width)
		if m.outputActive {
			m.outputVP.Width = msg.Width
			m.outputVP.Height = m.state.ContentHeight()
		}
		// Every view sizes itself from the shared state.
		var cmds []tea.Cmd
		for i, v := range m.viewStack {
			updated, cmd := v.Update(msg)
			m.viewStack[i] = updated.(View)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		m.flash = ""
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.outputActive {
			var cmd tea.Cmd
			m.outputVP, cmd = m.outputVP.Update(msg)
			return m, cmd
		}

	// Navigation messages from views or command bar
	case pushViewMsg:
		m.cmdBar.Blur()
		m.clearOutput()
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case popViewMsg:
		m.pop()
		return m, nil

	case homeMsg:
		for len(m.viewStack) > 1 {
			m.pop()
		}
		m.clearOutput()
		return m, nil

	case replaceViewMsg:
		m.cmdBar.Blur()
		m.clearOutput()
		if len(m.viewStack) > 0 {
			closeView(m.activeView())
			m.viewStack[len(m.viewStack)-1] = msg.view
		} else {
			m.viewStack = append(m.viewStack, msg.view)
		}
		return m, msg.view.Init()

	case refreshViewMsg:
		// Broadcast to all views so underlying listings reload after
		// mutations made from the command bar.
		var cmds []tea.Cmd
		for i, v := range m.viewStack {
			updated, cmd := v.Update(msg)
			m.viewStack[i] = updated.(View)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case cmdOutputMsg:
		m.state.RefreshRole(context.Background())
		var next tea.Cmd
		if msg.refresh {
			next = func() tea.Msg { return refreshViewMsg{} }
		}
		if msg.output == "" {
			return m, next
		}
		m.lastOutput = msg.output
		m.outputActive = true
		m.outputVP.SetContent(msg.output)
		m.outputVP.Width = m.state.Width
		m.outputVP.Height = m.state.ContentHeight()
		m.outputVP.GotoTop()
		return m, next

	case flashMsg:
		m.flash = msg.text
		return m, nil

	case wizardCompleteMsg:
		// Atomically pop the wizard view and execute the follow-up command.
		if v := m.activeView(); v != nil && v.ID() == ViewForm {
			m.pop()
		}
		m.clearOutput()
		return m, msg.nextCmd

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	// Forward other messages to command bar (e.g., cursor blink)
	if m.cmdBar.Focused() {
		if cmd := m.cmdBar.UpdateNonKey(msg); cmd != nil {
			return m, cmd
		}
	}

	// Data messages may belong to a view below the top one, so every view
	// sees them and ignores what it does not own.
	var cmds []tea.Cmd
	for i, v := range m.viewStack {
		updated, cmd := v.Update(msg)
		m.viewStack[i] = updated.(View)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// If command bar is focused, route keys there
	if m.cmdBar.Focused() {
		if msg.Type == tea.KeyEnter {
			m.clearOutput() // Clear stale output before new command runs
		}
		cmd := m.cmdBar.Update(msg)
		return m, cmd
	}

	// When output is displayed, intercept scroll keys for the viewport.
	// Non-scroll keys dismiss the output, then fall through to normal handling.
	if m.outputActive {
		if isOutputScrollKey(msg) {
			var cmd tea.Cmd
			m.outputVP, cmd = m.outputVP.Update(msg)
			return m, cmd
		}
		m.clearOutput()
		if msg.Type == tea.KeyEsc {
			return m, nil
		}
	}

	// If active view captures input (has its own text input), forward directly.
	if v := m.activeView(); v != nil && viewCapturesInput(v) {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	// Global keys when command bar is NOT focused
	switch {
	case msg.String() == ":":
		m.cmdBar.Focus()
		return m, nil

	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit

	case msg.String() == "?":
		return m, outputCmd(tuiHelp())

	case msg.Type == tea.KeyEsc:
		// Pop view stack (go back)
		m.pop()
		return m, nil
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	// Content area: active view or scrollable command output
	if m.lastOutput != "" {
		if m.outputActive && m.state.Height > 0 {
			sections = append(sections, m.outputVP.View())
		} else {
			sections = append(sections, m.lastOutput)
		}
	} else if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}

	sections = append(sections, m.renderStatusBar())
	sections = append(sections, m.cmdBar.View())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}

	return result
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("hrdesk")

	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	breadcrumb := ""
	if len(crumbs) > 0 {
		breadcrumb = " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	header := title + breadcrumb
	if m.state.Role != "" {
		header += "  " + formatter.Dim("[") + formatter.StyleGreen.Render(m.state.Role) + formatter.Dim("]")
	}

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + sep
}

func (m *appModel) renderStatusBar() string {
	var hints []string

	switch {
	case m.flash != "":
		hints = append(hints, m.flash)
	case m.outputActive && m.outputVP.TotalLineCount() > m.outputVP.Height:
		hints = append(hints, scrollIndicator(m.outputVP))
		hints = append(hints, formatter.Dim("↑↓ pgup/pgdn: scroll"))
		hints = append(hints, formatter.Dim("esc: dismiss"))
	case !m.outputActive:
		if v := m.activeView(); v != nil {
			for _, b := range v.ShortHelp() {
				hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
			}
		}
	}

	if m.flash == "" && !m.cmdBar.Focused() && !m.outputActive {
		if len(m.viewStack) > 1 {
			hints = append(hints, formatter.Dim("esc: back"))
		}
		hints = append(hints, formatter.Dim(": command"))
	}

	bar := strings.Join(hints, "  ")
	sepStyle := lipgloss.NewStyle().Foreground(formatter.ColorDim)
	sep := sepStyle.Render(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + bar
}

// clearOutput dismisses the transient command output and deactivates the viewport.
func (m *appModel) clearOutput() {
	m.lastOutput = ""
	m.outputActive = false
}

// outputViewportKeyMap returns a restricted keymap for the output viewport.
// Only arrow/page keys scroll; letter keys stay free for global shortcuts.
func outputViewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up")),
		Down:         key.NewBinding(key.WithKeys("down")),
	}
}

// isOutputScrollKey returns true if the key should scroll the output viewport
// rather than dismissing the output.
func isOutputScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown,
		tea.KeyHome, tea.KeyEnd, tea.KeyCtrlU, tea.KeyCtrlD:
		return true
	}
	return false
}

// scrollIndicator returns a dim scroll position string for the status bar.
func scrollIndicator(vp viewport.Model) string {
	if vp.AtTop() {
		return formatter.Dim("[TOP]")
	}
	if vp.AtBottom() {
		return formatter.Dim("[END]")
	}
	pct := int(vp.ScrollPercent() * 100)
	return formatter.Dim(fmt.Sprintf("[%d%%]", pct))
}

// tuiHelp lists the global keys and command-bar commands.
func tuiHelp() string {
	rows := [][]string{
		{":", "focus the command bar"},
		{"esc", "back / dismiss"},
		{"?", "this help"},
		{"q, ctrl+c", "quit"},
		{"", ""},
		{"open <screen>", "open a listing"},
		{"dashboard", "open the dashboard"},
		{"home", "return to the screen picker"},
		{"login", "sign in"},
		{"list, get, create, update, delete", "same as the CLI"},
		{"approve, reject, export, whoami", "same as the CLI"},
	}
	return formatter.Header("Help") + "\n" + formatter.RenderTable([]string{"Key / command", "Action"}, rows)
}
