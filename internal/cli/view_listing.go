package cli

import (
	"context"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/cli/formatter"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/alexanderramin/hrdesk/internal/state"
	"github.com/alexanderramin/hrdesk/internal/table"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// filtersRestoredMsg carries the persisted filter values of a listing.
type filtersRestoredMsg struct {
	owner  string
	values filter.Values
}

// listingLoadedMsg is the result of one fetch. Only the fetch holding the
// latest ticket is applied.
type listingLoadedMsg struct {
	owner  string
	ticket state.Ticket
	page   domain.Page
	err    error
}

// listingView is a screen's paginated table with search and filters.
type listingView struct {
	state  *SharedState
	owner  string
	screen catalog.Screen

	table table.Model
	data  *state.Slice[domain.Page]
	ctl   *filter.Controller

	// Search box. query is the committed search sent to the backend.
	search    textinput.Model
	searching bool
	query     string
	debounce  *filter.Debouncer

	// all holds the unfiltered records of a client-filtered screen.
	all []domain.Record

	cancel context.CancelFunc
}

func newListingView(s *SharedState, screen catalog.Screen) *listingView {
	owner := nextOwner(screen.Name)

	mode := table.Manual
	if !screen.ServerFiltering() {
		mode = table.ClientSlicing
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "search"
	ti.CharLimit = 200

	v := &listingView{
		state:    s,
		owner:    owner,
		screen:   screen,
		table:    table.New(screen.TableColumns(), s.App.pageSize(), mode),
		data:     state.New[domain.Page](screen.Name, "Could not load "+strings.ToLower(screenTitle(screen))),
		ctl:      filter.NewController(screen.Filters),
		search:   ti,
		debounce: filter.NewDebouncer(owner, s.App.SearchDebounce),
	}
	v.table.SetHeight(v.tableHeight())
	return v
}

func (v *listingView) ID() ViewID { return ViewListing }

func (v *listingView) Title() string { return screenTitle(v.screen) }

func (v *listingView) CapturesInput() bool { return v.searching }

func (v *listingView) ShortHelp() []key.Binding {
	if v.searching {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search now")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
		}
	}
	keys := v.table.Keys()
	hints := []key.Binding{
		keys.View, keys.NextPage, keys.PrevPage,
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new")),
		keys.Edit, keys.Delete,
	}
	if v.screen.Approvals {
		hints = append(hints,
			key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "approve")),
			key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "reject")),
		)
	}
	return hints
}

// Close cancels the in-flight fetch and any pending debounce tick.
func (v *listingView) Close() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.debounce.Cancel()
}

func (v *listingView) Init() tea.Cmd {
	v.data.Begin()
	return v.restoreFilters()
}

func (v *listingView) restoreFilters() tea.Cmd {
	app, screen, owner := v.state.App, v.screen, v.owner
	if app.Prefs == nil || len(screen.Filters) == 0 {
		return func() tea.Msg { return filtersRestoredMsg{owner: owner} }
	}
	return func() tea.Msg {
		values, err := app.Prefs.LoadFilters(context.Background(), screen)
		if err != nil {
			app.logger().Warn("restoring filters", zap.String("screen", screen.Name), zap.Error(err))
		}
		return filtersRestoredMsg{owner: owner, values: values}
	}
}

// fetch issues a request for the current page, search and applied filters.
// The previous request is cancelled and its result, if it still arrives,
// is discarded.
func (v *listingView) fetch() tea.Cmd {
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	ticket := v.data.Begin()
	pager := v.table.Pager()
	req := listingRequest{
		Page:    pager.Page(),
		Limit:   pager.PageSize(),
		Search:  v.query,
		Filters: v.ctl.Applied(),
	}
	resources, screen, owner := v.state.App.Resources, v.screen, v.owner
	return func() tea.Msg {
		page, err := fetchListing(ctx, resources, screen, req)
		return listingLoadedMsg{owner: owner, ticket: ticket, page: page, err: err}
	}
}

// show puts fetched records into the table. Client-filtered screens are
// filtered here and sliced by the table.
func (v *listingView) show(page domain.Page) {
	if v.screen.ServerFiltering() {
		v.table.SetRecords(page.Items, page.EstimatedTotal())
		return
	}
	v.all = page.Items
	v.refilter()
}

func (v *listingView) refilter() {
	v.table.SetRecords(service.LocalFilter(v.screen, v.ctl.Applied(), v.all), 0)
}

// commitSearch makes q the active search and reloads from the first page.
func (v *listingView) commitSearch(q string) tea.Cmd {
	q = strings.TrimSpace(q)
	if q == v.query {
		return nil
	}
	v.query = q
	v.table.SetPage(0)
	return v.fetch()
}

// filtersChanged reloads after the applied filters change.
func (v *listingView) filtersChanged() tea.Cmd {
	applied := v.ctl.Applied()
	app, screen := v.state.App, v.screen
	save := func() tea.Msg {
		if app.Prefs == nil {
			return nil
		}
		if err := app.Prefs.SaveFilters(context.Background(), screen, applied); err != nil {
			app.logger().Warn("saving filters", zap.String("screen", screen.Name), zap.Error(err))
		}
		return nil
	}

	v.table.SetPage(0)
	if v.screen.ServerFiltering() {
		return tea.Batch(save, v.fetch())
	}
	v.refilter()
	return save
}

func (v *listingView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.table.SetHeight(v.tableHeight())
		return v, nil

	case filtersRestoredMsg:
		if msg.owner != v.owner {
			return v, nil
		}
		if msg.values != nil {
			v.ctl.Restore(msg.values)
		}
		return v, v.fetch()

	case listingLoadedMsg:
		if msg.owner != v.owner || !v.data.Settle(msg.ticket, msg.page, msg.err) {
			return v, nil
		}
		if msg.err != nil {
			return v, flashCmd(formatter.ErrorLine(errorText(msg.err)))
		}
		v.show(msg.page)
		return v, nil

	case filter.SettledMsg:
		if q, ok := v.debounce.Settled(msg); ok {
			return v, v.commitSearch(q)
		}
		return v, nil

	case ownedMsg:
		if msg.owner != v.owner {
			return v, nil
		}
		return v.handleTableMsg(msg.msg)

	case draftLoadedMsg:
		if msg.owner != v.owner {
			return v, nil
		}
		return v, createRecordCmd(v.state, v.owner, v.screen, msg.draft)

	case mutationDoneMsg:
		if msg.owner != v.owner {
			return v, nil
		}
		cmd := mutationFlash(msg)
		if msg.refetch {
			cmd = tea.Batch(cmd, v.fetch())
		}
		return v, cmd

	case refreshViewMsg:
		return v, v.fetch()

	case tea.KeyMsg:
		if v.searching {
			return v.updateSearch(msg)
		}
		return v.updateNormal(msg)
	}

	if v.searching {
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *listingView) handleTableMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case table.PageMsg:
		if v.screen.ServerFiltering() {
			return v, v.fetch()
		}
	case table.ActionMsg:
		switch msg.Action {
		case table.ActionView:
			return v, pushView(newDetailView(v.state, v.screen, msg.Record))
		case table.ActionEdit:
			return v, editRecordCmd(v.state, v.owner, v.screen, msg.Record)
		case table.ActionDelete:
			return v, deleteRecordCmd(v.state, v.owner, v.screen, msg.Record)
		}
	}
	return v, nil
}

func (v *listingView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.searching = false
		v.search.Blur()
		return v, nil
	case tea.KeyEnter:
		v.searching = false
		v.search.Blur()
		v.debounce.Cancel()
		return v, v.commitSearch(v.search.Value())
	}

	before := v.search.Value()
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	if after := v.search.Value(); after != before {
		cmd = tea.Batch(cmd, v.debounce.Bump(after))
	}
	return v, cmd
}

func (v *listingView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		v.searching = true
		return v, v.search.Focus()
	case "f":
		return v, v.openFilters()
	case "R":
		if !v.ctl.Applied().Active(v.screen.Filters) {
			return v, nil
		}
		v.ctl.Reset()
		return v, tea.Batch(v.filtersChanged(), flashCmd(formatter.Dim("Filters cleared.")))
	case "r":
		return v, v.fetch()
	case "c":
		return v, loadDraftCmd(v.state, v.owner, v.screen)
	case "E":
		pager := v.table.Pager()
		return v, exportListingCmd(v.state, v.owner, v.screen, service.ExportRequest{
			Search:   v.query,
			Filters:  v.ctl.Applied(),
			Page:     pager.Page(),
			Limit:    pager.PageSize(),
			AllPages: true,
		})
	case "+", "-":
		if !v.screen.Approvals {
			return v, nil
		}
		rec, ok := v.table.Current()
		if !ok {
			return v, nil
		}
		decision := service.Approve
		if msg.String() == "-" {
			decision = service.Reject
		}
		return v, decideCmd(v.state, v.owner, v.screen, rec, decision)
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, tagCmd(v.owner, cmd)
}

// openFilters shows the filter dialog. Edits are applied only when the
// form is submitted.
func (v *listingView) openFilters() tea.Cmd {
	form, commit := filterForm(v.screen.Filters, v.ctl, "Filter "+v.Title())
	if form == nil {
		return flashCmd(formatter.Dim("This screen has no filters."))
	}
	w := newWizardView(v.state, "Filters", form, func() tea.Cmd {
		commit()
		if !v.ctl.Dirty() {
			return nil
		}
		v.ctl.Apply()
		return v.filtersChanged()
	}).onCancel(func() tea.Cmd {
		v.ctl.Discard()
		return nil
	})
	return pushView(w)
}

// tableHeight leaves room for the search line and the status line.
func (v *listingView) tableHeight() int {
	h := v.state.ContentHeight() - 3
	if h < 3 {
		return 3
	}
	return h
}

func (v *listingView) View() string {
	var b strings.Builder

	// Search and filter line.
	switch {
	case v.searching:
		b.WriteString(formatter.StyleYellow.Render("/") + " " + v.search.View())
	case v.query != "":
		b.WriteString(formatter.Dim("search: ") + v.query)
	default:
		b.WriteString(formatter.Dim("/ to search"))
	}
	if applied := v.ctl.Applied(); applied.Active(v.screen.Filters) {
		b.WriteString(formatter.Dim("  ·  filters: ") + applied.Summary(v.screen.Filters))
	}
	b.WriteString("\n")

	snap := v.data.Snapshot()
	switch {
	case snap.Loading():
		b.WriteString(formatter.Dim("Loading…"))
	case snap.Phase == state.Failed:
		b.WriteString(formatter.ErrorLine(snap.Message))
	}
	b.WriteString("\n")

	if !snap.HasData && snap.Phase != state.Succeeded {
		return b.String()
	}
	b.WriteString(v.table.View())
	return b.String()
}
