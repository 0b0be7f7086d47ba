package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/alexanderramin/hrdesk/internal/state"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// recordLoadedMsg is the result of re-reading one record.
type recordLoadedMsg struct {
	owner  string
	ticket state.Ticket
	rec    domain.Record
	err    error
}

// detailView shows every field of one record.
type detailView struct {
	state  *SharedState
	owner  string
	screen catalog.Screen
	id     string

	data *state.Slice[domain.Record]
	rec  domain.Record
	vp   viewport.Model
}

// newDetailView starts from the listing's copy of rec and re-reads it.
func newDetailView(s *SharedState, screen catalog.Screen, rec domain.Record) *detailView {
	vp := viewport.New(s.Width, s.ContentHeight())
	vp.KeyMap = outputViewportKeyMap()
	v := &detailView{
		state:  s,
		owner:  nextOwner(screen.Name + "/" + rec.ID()),
		screen: screen,
		id:     rec.ID(),
		data:   state.New[domain.Record](screen.Name, "Could not load record"),
		rec:    rec,
		vp:     vp,
	}
	v.render()
	return v
}

func (v *detailView) ID() ViewID    { return ViewDetail }
func (v *detailView) Title() string { return v.id }

func (v *detailView) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
	if v.screen.Approvals {
		hints = append(hints,
			key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "approve")),
			key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "reject")),
		)
	}
	return hints
}

func (v *detailView) Init() tea.Cmd {
	return v.load()
}

func (v *detailView) load() tea.Cmd {
	ticket := v.data.Begin()
	app, screen, owner, id := v.state.App, v.screen, v.owner, v.id
	return func() tea.Msg {
		rec, err := app.Resources.Get(context.Background(), screen, id)
		return recordLoadedMsg{owner: owner, ticket: ticket, rec: rec, err: err}
	}
}

func (v *detailView) render() {
	title := fmt.Sprintf("%s %s", screenTitle(v.screen), v.id)
	v.vp.SetContent(formatter.FormatRecord(title, v.rec))
}

func (v *detailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.vp.Width = v.state.Width
		v.vp.Height = v.state.ContentHeight()
		return v, nil

	case recordLoadedMsg:
		if msg.owner != v.owner || !v.data.Settle(msg.ticket, msg.rec, msg.err) {
			return v, nil
		}
		if msg.err != nil {
			return v, flashCmd(formatter.ErrorLine(errorText(msg.err)))
		}
		v.rec = msg.rec
		v.render()
		return v, nil

	case mutationDoneMsg:
		if msg.owner != v.owner {
			return v, nil
		}
		cmd := mutationFlash(msg)
		if msg.deleted {
			// The record is gone; go back and let the listing reload.
			return v, tea.Batch(cmd, popView(), func() tea.Msg { return refreshViewMsg{} })
		}
		if msg.refetch {
			cmd = tea.Batch(cmd, v.load(), func() tea.Msg { return refreshViewMsg{} })
		}
		return v, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return v, v.load()
		case "e":
			return v, editRecordCmd(v.state, v.owner, v.screen, v.rec)
		case "x":
			return v, deleteRecordCmd(v.state, v.owner, v.screen, v.rec)
		case "+", "-":
			if !v.screen.Approvals {
				return v, nil
			}
			decision := service.Approve
			if msg.String() == "-" {
				decision = service.Reject
			}
			return v, decideCmd(v.state, v.owner, v.screen, v.rec, decision)
		}
		var cmd tea.Cmd
		v.vp, cmd = v.vp.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *detailView) View() string {
	if v.data.Snapshot().Loading() {
		return v.vp.View() + "\n" + formatter.Dim("Refreshing…")
	}
	return v.vp.View()
}
