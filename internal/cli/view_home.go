package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// homeView lists the screens the current role may read.
type homeView struct {
	state  *SharedState
	cursor int

	// Filtering
	filtering bool
	filter    string
}

func newHomeView(state *SharedState) *homeView {
	return &homeView{state: state}
}

func (v *homeView) ID() ViewID    { return ViewHome }
func (v *homeView) Title() string { return "" }

func (v *homeView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (v *homeView) CapturesInput() bool { return v.filtering }

func (v *homeView) Init() tea.Cmd { return nil }

func (v *homeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if v.filtering {
			return v.updateFilter(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *homeView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := v.visibleScreens()

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(visible)-1 {
			v.cursor++
		}
	case "enter":
		if v.cursor < len(visible) {
			return v, pushView(newListingView(v.state, visible[v.cursor]))
		}
	case "d":
		return v, pushView(newDashboardView(v.state))
	case "/":
		v.filtering = true
		v.filter = ""
	}
	return v, nil
}

func (v *homeView) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filtering = false
		v.filter = ""
		v.cursor = 0
		return v, nil
	case tea.KeyEnter:
		v.filtering = false
		visible := v.visibleScreens()
		if v.cursor < len(visible) {
			return v, pushView(newListingView(v.state, visible[v.cursor]))
		}
		return v, nil
	case tea.KeyBackspace:
		if len(v.filter) > 0 {
			v.filter = v.filter[:len(v.filter)-1]
			v.cursor = 0
		}
	case tea.KeyRunes:
		v.filter += string(msg.Runes)
		v.cursor = 0
	}
	return v, nil
}

// visibleScreens returns readable screens, narrowed by the fuzzy filter.
// The role may change after a login, so this is evaluated on every call.
func (v *homeView) visibleScreens() []catalog.Screen {
	app := v.state.App
	if v.filter == "" {
		return readableScreens(app)
	}
	ctx := context.Background()
	var out []catalog.Screen
	for _, s := range app.Catalog.Find(v.filter) {
		if app.Allowed(ctx, s, authz.ActionRead) {
			out = append(out, s)
		}
	}
	return out
}

func (v *homeView) View() string {
	visible := v.visibleScreens()

	var b strings.Builder
	b.WriteString("\n")

	if v.filtering {
		b.WriteString("  " + formatter.StyleYellow.Render("/") + " " + v.filter + "█\n\n")
	}

	if len(visible) == 0 {
		b.WriteString("  " + formatter.Dim("No screens available.") + "\n")
		if v.state.Role == "" && v.filter == "" {
			b.WriteString("  " + formatter.Dim("Run :login to sign in.") + "\n")
		}
		return b.String()
	}

	for i, s := range visible {
		cursor := "  "
		nameStyle := formatter.StyleFg
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			nameStyle = formatter.StyleBold
		}
		title := s.Title
		if title == "" {
			title = s.Name
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n",
			cursor,
			formatter.StyleGreen.Render(formatter.PadRight(s.Name, 14)),
			nameStyle.Render(formatter.PadRight(title, 24)),
			formatter.Dim(s.Path),
		))
	}

	return b.String()
}
