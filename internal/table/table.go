package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	btable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Action is a row action requested by the user.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ActionMsg asks the owning view to perform Action on Record.
type ActionMsg struct {
	Action Action
	Record domain.Record
}

// PageMsg reports a page or page-size change. In Manual mode the owner
// fetches the new page.
type PageMsg struct {
	Page     int
	PageSize int
}

// SortDir is the active sort direction.
type SortDir int

const (
	SortNone SortDir = iota
	SortAsc
	SortDesc
)

// PageSizes are the sizes cycled by the page-size keys.
var PageSizes = []int{5, 10, 25, 50}

// KeyMap holds the table's bindings.
type KeyMap struct {
	Up, Down       key.Binding
	NextPage       key.Binding
	PrevPage       key.Binding
	Bigger         key.Binding
	Smaller        key.Binding
	View, Edit     key.Binding
	Delete         key.Binding
	Select         key.Binding
	SelectAll      key.Binding
	Dense          key.Binding
	Sort, SortNext key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextPage:  key.NewBinding(key.WithKeys("right", "n", "pgdown"), key.WithHelp("→/n", "next page")),
		PrevPage:  key.NewBinding(key.WithKeys("left", "p", "pgup"), key.WithHelp("←/p", "prev page")),
		Bigger:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more rows")),
		Smaller:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "fewer rows")),
		View:      key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "view")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Dense:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "dense")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		SortNext:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort column")),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.View, km.Edit, km.Delete, km.NextPage, km.PrevPage, km.Sort, km.Dense}
}

// Styles for normal and dense rendering.
var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fe8019"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fabd2f"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
)

func styles(dense bool) btable.Styles {
	s := btable.Styles{
		Header:   headerStyle.Padding(0, 1),
		Cell:     lipgloss.NewStyle().Padding(0, 1),
		Selected: selectedStyle,
	}
	if dense {
		s.Header = headerStyle.Padding(0, 0, 0, 1)
		s.Cell = lipgloss.NewStyle().Padding(0, 0, 0, 1)
	}
	return s
}

const markerWidth = 2

// Model is a paginated, sortable record table.
type Model struct {
	cols     []Column
	records  []domain.Record
	pager    *Pager
	inner    btable.Model
	keys     KeyMap
	dense    bool
	selected map[string]bool
	sortCol  int
	sortDir  SortDir
	height   int
}

// New creates a table with cols, starting on page 0.
func New(cols []Column, pageSize int, mode Mode) Model {
	m := Model{
		cols:     cols,
		pager:    NewPager(pageSize, mode),
		keys:     DefaultKeyMap(),
		selected: map[string]bool{},
		sortCol:  firstSortable(cols),
	}
	m.inner = btable.New(
		btable.WithColumns(m.columns()),
		btable.WithFocused(true),
		btable.WithKeyMap(btable.KeyMap{LineUp: m.keys.Up, LineDown: m.keys.Down}),
		btable.WithStyles(styles(false)),
	)
	m.pager.SetTotal(0)
	m.refresh()
	return m
}

func firstSortable(cols []Column) int {
	for i, c := range cols {
		if c.Sortable() {
			return i
		}
	}
	return -1
}

// Keys returns the table's bindings.
func (m Model) Keys() KeyMap { return m.keys }

// Pager returns the pager.
func (m Model) Pager() *Pager { return m.pager }

// Columns returns the column schema.
func (m Model) Columns() []Column { return m.cols }

// Dense reports whether dense rendering is on.
func (m Model) Dense() bool { return m.dense }

// SortState returns the sort column index (-1 when no column is sortable)
// and direction.
func (m Model) SortState() (int, SortDir) { return m.sortCol, m.sortDir }

// SetRecords replaces the held records. total is the server-reported total
// in Manual mode and ignored otherwise.
func (m *Model) SetRecords(records []domain.Record, total int) {
	m.records = records
	if m.pager.Mode() == ClientSlicing || total < len(records) {
		total = len(records)
	}
	m.pager.SetTotal(total)
	m.refresh()
}

// Records returns every held record.
func (m Model) Records() []domain.Record { return m.records }

// Visible returns the records on the current page in display order.
func (m Model) Visible() []domain.Record {
	ordered := m.ordered()
	start, end := m.pager.Window(len(ordered))
	return ordered[start:end]
}

// Current returns the record under the cursor.
func (m Model) Current() (domain.Record, bool) {
	vis := m.Visible()
	i := m.inner.Cursor()
	if i < 0 || i >= len(vis) {
		return domain.Record{}, false
	}
	return vis[i], true
}

// Selected returns the selected records among those held.
func (m Model) Selected() []domain.Record {
	var out []domain.Record
	for _, r := range m.records {
		if m.selected[selectionKey(r)] {
			out = append(out, r)
		}
	}
	return out
}

// SetPage jumps to page i.
func (m *Model) SetPage(i int) {
	m.pager.SetPage(i)
	m.refresh()
}

// SetPageSize changes the page size and returns to page 0.
func (m *Model) SetPageSize(n int) {
	m.pager.SetPageSize(n)
	m.refresh()
}

// SetHeight sets the rendered height including header and footer.
func (m *Model) SetHeight(h int) {
	m.height = h
	m.refresh()
}

// ToggleDense flips dense rendering.
func (m *Model) ToggleDense() {
	m.dense = !m.dense
	m.inner.SetStyles(styles(m.dense))
	m.refresh()
}

// CycleSort advances the sort direction of the sort column:
// none → ascending → descending → none.
func (m *Model) CycleSort() {
	if m.sortCol < 0 {
		return
	}
	m.sortDir = (m.sortDir + 1) % 3
	m.refresh()
}

// NextSortColumn moves sorting to the next sortable column, keeping the
// direction.
func (m *Model) NextSortColumn() {
	if m.sortCol < 0 {
		return
	}
	for i := 1; i <= len(m.cols); i++ {
		j := (m.sortCol + i) % len(m.cols)
		if m.cols[j].Sortable() {
			m.sortCol = j
			break
		}
	}
	m.refresh()
}

// ToggleSelect flips selection of the record under the cursor.
func (m *Model) ToggleSelect() {
	r, ok := m.Current()
	if !ok {
		return
	}
	k := selectionKey(r)
	if m.selected[k] {
		delete(m.selected, k)
	} else {
		m.selected[k] = true
	}
	m.refresh()
}

// ToggleSelectPage selects every visible row, or clears them when all are
// already selected.
func (m *Model) ToggleSelectPage() {
	vis := m.Visible()
	all := len(vis) > 0
	for _, r := range vis {
		if !m.selected[selectionKey(r)] {
			all = false
			break
		}
	}
	for _, r := range vis {
		if all {
			delete(m.selected, selectionKey(r))
		} else {
			m.selected[selectionKey(r)] = true
		}
	}
	m.refresh()
}

func (m Model) Init() tea.Cmd { return nil }

// Update handles navigation and row actions. Row actions and page changes
// are reported to the owner as messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.NextPage):
		if m.pager.Next() {
			m.refresh()
			return m, m.pageCmd()
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.PrevPage):
		if m.pager.Prev() {
			m.refresh()
			return m, m.pageCmd()
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Bigger), key.Matches(keyMsg, m.keys.Smaller):
		m.SetPageSize(stepPageSize(m.pager.PageSize(), key.Matches(keyMsg, m.keys.Bigger)))
		return m, m.pageCmd()
	case key.Matches(keyMsg, m.keys.View):
		return m, m.actionCmd(ActionView)
	case key.Matches(keyMsg, m.keys.Edit):
		return m, m.actionCmd(ActionEdit)
	case key.Matches(keyMsg, m.keys.Delete):
		return m, m.actionCmd(ActionDelete)
	case key.Matches(keyMsg, m.keys.Select):
		m.ToggleSelect()
		return m, nil
	case key.Matches(keyMsg, m.keys.SelectAll):
		m.ToggleSelectPage()
		return m, nil
	case key.Matches(keyMsg, m.keys.Dense):
		m.ToggleDense()
		return m, nil
	case key.Matches(keyMsg, m.keys.Sort):
		m.CycleSort()
		return m, nil
	case key.Matches(keyMsg, m.keys.SortNext):
		m.NextSortColumn()
		return m, nil
	}

	var cmd tea.Cmd
	m.inner, cmd = m.inner.Update(msg)
	return m, cmd
}

func (m Model) pageCmd() tea.Cmd {
	msg := PageMsg{Page: m.pager.Page(), PageSize: m.pager.PageSize()}
	return func() tea.Msg { return msg }
}

func (m Model) actionCmd(action Action) tea.Cmd {
	r, ok := m.Current()
	if !ok {
		return nil
	}
	return func() tea.Msg { return ActionMsg{Action: action, Record: r} }
}

func stepPageSize(cur int, up bool) int {
	for i, s := range PageSizes {
		if s == cur {
			if up && i < len(PageSizes)-1 {
				return PageSizes[i+1]
			}
			if !up && i > 0 {
				return PageSizes[i-1]
			}
			return cur
		}
	}
	if up {
		return PageSizes[len(PageSizes)-1]
	}
	return PageSizes[0]
}

// View renders the table and its footer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.inner.View())
	b.WriteString("\n")
	if len(m.records) == 0 {
		b.WriteString(footerStyle.Render("  no records"))
		b.WriteString("\n")
	}
	footer := fmt.Sprintf("  %s · %d rows · %d per page", m.pager.View(), m.pager.Total(), m.pager.PageSize())
	if n := len(m.selected); n > 0 {
		footer += fmt.Sprintf(" · %d selected", n)
	}
	if m.dense {
		footer += " · dense"
	}
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

// selectionKey identifies a row for selection. Records without an id are
// keyed by their content.
func selectionKey(r domain.Record) string {
	if id := r.ID(); id != "" {
		return "id:" + id
	}
	return "raw:" + string(r.Raw())
}

// ordered returns held records in sort order. Sorting is stable so equal
// keys keep server order.
func (m Model) ordered() []domain.Record {
	if m.sortDir == SortNone || m.sortCol < 0 {
		return m.records
	}
	less := m.cols[m.sortCol].Less
	out := append([]domain.Record(nil), m.records...)
	sort.SliceStable(out, func(i, j int) bool {
		if m.sortDir == SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func (m Model) columns() []btable.Column {
	out := make([]btable.Column, 0, len(m.cols)+1)
	out = append(out, btable.Column{Title: "", Width: markerWidth})
	for i, c := range m.cols {
		title := c.Header
		if i == m.sortCol {
			switch m.sortDir {
			case SortAsc:
				title += " ▲"
			case SortDesc:
				title += " ▼"
			}
		}
		out = append(out, btable.Column{Title: title, Width: c.width()})
	}
	return out
}

// refresh rebuilds the inner table from the current page.
func (m *Model) refresh() {
	vis := m.Visible()
	rows := make([]btable.Row, 0, len(vis))
	for _, r := range vis {
		row := make(btable.Row, 0, len(m.cols)+1)
		marker := ""
		if m.selected[selectionKey(r)] {
			marker = "✓"
		}
		row = append(row, marker)
		for _, c := range m.cols {
			row = append(row, c.Cell(r))
		}
		rows = append(rows, row)
	}

	m.inner.SetColumns(m.columns())
	m.inner.SetRows(rows)
	if m.inner.Cursor() < 0 && len(rows) > 0 {
		m.inner.SetCursor(0)
	}

	// header plus one line per row; dense mode fits the whole page
	h := len(rows) + 1
	if !m.dense && m.height > 0 && h > m.height-2 {
		h = m.height - 2
	}
	if h < 2 {
		h = 2
	}
	m.inner.SetHeight(h)
}
