package cli

import (
	"context"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// commandBar is the persistent text input at the bottom of the TUI.
// It handles command entry, autocomplete suggestions, and history navigation.
type commandBar struct {
	input   textinput.Model
	state   *SharedState
	focused bool

	history    []string
	historyIdx int
}

func newCommandBar(state *SharedState) commandBar {
	ti := textinput.New()
	ti.Prompt = ""
	ti.ShowSuggestions = true
	ti.CharLimit = 500
	ti.KeyMap.NextSuggestion = key.NewBinding(key.WithKeys("ctrl+n"))
	ti.KeyMap.PrevSuggestion = key.NewBinding(key.WithKeys("ctrl+p"))

	hist := loadHistory(state)

	return commandBar{
		input:      ti,
		state:      state,
		history:    hist,
		historyIdx: len(hist),
	}
}

// Focus gives focus to the command bar.
func (c *commandBar) Focus() {
	c.focused = true
	c.input.Focus()
}

// Blur removes focus from the command bar.
func (c *commandBar) Blur() {
	c.focused = false
	c.input.Blur()
}

// Focused returns whether the command bar has focus.
func (c *commandBar) Focused() bool {
	return c.focused
}

// SetWidth updates the input width for terminal resizing.
func (c *commandBar) SetWidth(w int) {
	c.input.Width = w - len(promptPlain) - 1
}

// Update handles key messages when the command bar is focused.
func (c *commandBar) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		input := strings.TrimSpace(c.input.Value())
		c.input.Reset()
		c.input.SetSuggestions(nil)
		c.Blur()
		if input == "" {
			return nil
		}
		c.addHistory(input)
		return c.executeCommand(input)

	case tea.KeyUp:
		c.historyUp()
		return nil

	case tea.KeyDown:
		c.historyDown()
		return nil

	case tea.KeyEsc:
		c.Blur()
		return nil

	default:
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		c.updateSuggestions()
		return cmd
	}
}

// UpdateNonKey handles non-key messages (e.g., cursor blink).
func (c *commandBar) UpdateNonKey(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// View renders the command bar.
func (c *commandBar) View() string {
	prompt := formatter.StylePurple.Render("hrdesk") + " " + formatter.Dim("❯") + " "
	if !c.focused {
		return prompt + formatter.Dim("press : to type a command")
	}
	return prompt + c.input.View()
}

const promptPlain = "hrdesk > "

// ── execution ────────────────────────────────────────────────────────────────

// mutatingCommands change backend data or the session, so open listings
// reload after they run.
var mutatingCommands = map[string]bool{
	"create": true, "update": true, "delete": true,
	"approve": true, "reject": true,
	"login": true, "logout": true,
}

func (c *commandBar) executeCommand(input string) tea.Cmd {
	args, err := splitShellArgs(input)
	if err != nil {
		return outputCmd(formatter.ErrorLine(err.Error()))
	}
	if len(args) == 0 {
		return nil
	}

	state := c.state
	app := state.App
	name := strings.ToLower(args[0])

	switch name {
	case "quit", "exit":
		return func() tea.Msg { return quitMsg{} }
	case "help", "?":
		if len(args) == 1 {
			return outputCmd(tuiHelp())
		}
	case "clear":
		return nil
	case "home":
		return func() tea.Msg { return homeMsg{} }
	case "open", "o":
		if len(args) != 2 {
			return outputCmd(formatter.ErrorLine("usage: open <screen>"))
		}
		return openScreenCmd(state, args[1])
	case "dashboard":
		if len(args) == 1 {
			return pushView(newDashboardView(state))
		}
	case "login":
		if len(args) == 1 {
			return loginWizardCmd(state)
		}
	}

	run := func() string { return captureCobraOutput(app, args) }
	if mutatingCommands[name] {
		return asyncMutationCmd(run)
	}
	return asyncOutputCmd(run)
}

// openScreenCmd pushes the listing for a screen name or alias.
func openScreenCmd(state *SharedState, name string) tea.Cmd {
	screen, err := state.App.Catalog.Resolve(name)
	if err != nil {
		return outputCmd(formatter.ErrorLine(err.Error()))
	}
	if err := requireAllowed(context.Background(), state.App, screen, authz.ActionRead); err != nil {
		return outputCmd(formatter.ErrorLine(err.Error()))
	}
	return pushView(newListingView(state, screen))
}

// loginWizardCmd asks for credentials in a form and signs in.
func loginWizardCmd(state *SharedState) tea.Cmd {
	var email, password string
	form := loginForm(&email, &password)
	return startWizardCmd(state, "Login", form, func() tea.Cmd {
		return asyncMutationCmd(func() string {
			st, err := state.App.Auth.Login(context.Background(), email, password)
			if err != nil {
				return formatter.ErrorLine("login: " + api.Message(err, err.Error()))
			}
			return formatter.SuccessLine("Logged in.") + "\n" + formatter.FormatSession(st, state.App.now())
		})
	})
}

// ── history ──────────────────────────────────────────────────────────────────

func (c *commandBar) addHistory(line string) {
	if line == "" {
		return
	}
	c.history = append(c.history, line)
	c.historyIdx = len(c.history)
	if c.state == nil || c.state.App == nil || c.state.App.Prefs == nil {
		return
	}
	if err := c.state.App.Prefs.AppendHistory(context.Background(), line); err != nil {
		c.state.App.logger().Warn("saving command history", zap.Error(err))
	}
}

// loadHistory reads the command bar lines kept in the local store.
func loadHistory(state *SharedState) []string {
	if state == nil || state.App == nil || state.App.Prefs == nil {
		return nil
	}
	lines, err := state.App.Prefs.LoadHistory(context.Background())
	if err != nil {
		state.App.logger().Warn("loading command history", zap.Error(err))
		return nil
	}
	return lines
}

func (c *commandBar) historyUp() {
	if c.historyIdx > 0 {
		c.historyIdx--
		c.input.SetValue(c.history[c.historyIdx])
		c.input.CursorEnd()
	}
}

func (c *commandBar) historyDown() {
	if c.historyIdx < len(c.history)-1 {
		c.historyIdx++
		c.input.SetValue(c.history[c.historyIdx])
		c.input.CursorEnd()
	} else {
		c.historyIdx = len(c.history)
		c.input.SetValue("")
	}
}

// ── suggestions ──────────────────────────────────────────────────────────────

// commandNames lists the words the bar completes in first position.
func commandNames() []string {
	return []string{
		"open", "home", "dashboard",
		"list", "get", "create", "update", "delete",
		"approve", "reject", "export",
		"screens", "login", "logout", "whoami",
		"clear", "help", "quit",
	}
}

// screenArgCommands take a screen name as their first argument.
var screenArgCommands = map[string]bool{
	"open": true, "o": true, "list": true, "get": true, "create": true,
	"update": true, "delete": true, "export": true,
}

func (c *commandBar) updateSuggestions() {
	text := c.input.Value()
	if text == "" {
		c.input.SetSuggestions(nil)
		return
	}

	parts := strings.Fields(text)
	trailingSpace := strings.HasSuffix(text, " ")

	if len(parts) == 1 && !trailingSpace {
		c.input.SetSuggestions(filterSuggestions(commandNames(), parts[0]))
		return
	}

	cmd := strings.ToLower(parts[0])
	if screenArgCommands[cmd] && (len(parts) == 1 || (len(parts) == 2 && !trailingSpace)) {
		prefix := ""
		if len(parts) == 2 {
			prefix = parts[1]
		}
		// textinput matches suggestions against the whole line.
		var full []string
		for _, name := range filterSuggestions(c.screenNames(), prefix) {
			full = append(full, parts[0]+" "+name)
		}
		c.input.SetSuggestions(full)
		return
	}

	c.input.SetSuggestions(nil)
}

func (c *commandBar) screenNames() []string {
	var names []string
	for _, s := range c.state.App.Catalog.Screens() {
		if c.state.App.Allowed(context.Background(), s, authz.ActionRead) {
			names = append(names, s.Name)
		}
	}
	return names
}

// filterSuggestions returns items from pool that start with prefix (case-insensitive).
func filterSuggestions(pool []string, prefix string) []string {
	if prefix == "" {
		return pool
	}
	lp := strings.ToLower(prefix)
	var result []string
	for _, s := range pool {
		if strings.HasPrefix(strings.ToLower(s), lp) {
			result = append(result, s)
		}
	}
	return result
}
