package cli

import (
	"context"

	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/alexanderramin/hrdesk/internal/state"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type dashboardLoadedMsg struct {
	owner  string
	ticket state.Ticket
	sum    *service.Summary
	err    error
}

// dashboardView shows record counts per screen.
type dashboardView struct {
	state *SharedState
	owner string
	data  *state.Slice[*service.Summary]
	vp    viewport.Model
}

func newDashboardView(s *SharedState) *dashboardView {
	vp := viewport.New(s.Width, s.ContentHeight())
	vp.KeyMap = outputViewportKeyMap()
	return &dashboardView{
		state: s,
		owner: nextOwner("dashboard"),
		data:  state.New[*service.Summary]("dashboard", "Could not load the dashboard"),
		vp:    vp,
	}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Dashboard" }

func (v *dashboardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

func (v *dashboardView) Init() tea.Cmd {
	return v.load()
}

// readableScreens returns the screens the current role may list.
func readableScreens(app *App) []catalog.Screen {
	ctx := context.Background()
	var out []catalog.Screen
	for _, s := range app.Catalog.Screens() {
		if app.Allowed(ctx, s, authz.ActionRead) {
			out = append(out, s)
		}
	}
	return out
}

func (v *dashboardView) load() tea.Cmd {
	ticket := v.data.Begin()
	app, owner := v.state.App, v.owner
	return func() tea.Msg {
		sum, err := app.Dashboard.Summary(context.Background(), readableScreens(app))
		return dashboardLoadedMsg{owner: owner, ticket: ticket, sum: sum, err: err}
	}
}

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.vp.Width = v.state.Width
		v.vp.Height = v.state.ContentHeight()
		return v, nil

	case dashboardLoadedMsg:
		if msg.owner != v.owner || !v.data.Settle(msg.ticket, msg.sum, msg.err) {
			return v, nil
		}
		if msg.err != nil {
			return v, flashCmd(formatter.ErrorLine(errorText(msg.err)))
		}
		v.vp.SetContent(formatter.FormatDashboard(msg.sum))
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		if msg.String() == "r" {
			return v, v.load()
		}
		var cmd tea.Cmd
		v.vp, cmd = v.vp.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *dashboardView) View() string {
	snap := v.data.Snapshot()
	switch {
	case snap.Loading() && !snap.HasData:
		return "\n  " + formatter.Dim("Loading dashboard…")
	case snap.Phase == state.Failed && !snap.HasData:
		return "\n  " + formatter.ErrorLine(snap.Message)
	}
	out := v.vp.View()
	if snap.Loading() {
		out += "\n" + formatter.Dim("Reloading…")
	}
	return out
}
