package cli

import (
	"context"
	"net/http"
	"testing"

	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/alexanderramin/hrdesk/internal/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUI_HomeListsReadableScreens(t *testing.T) {
	env := testApp(t)
	env.loginAs(t, "employee")
	d := NewTestDriver(t, env.app)

	assert.Equal(t, ViewHome, d.ActiveViewID())
	view := d.View()
	assert.Contains(t, view, "vacancies")
	assert.Contains(t, view, "employee", "role shown in the header")
	assert.NotContains(t, view, "/users")
	assert.NotContains(t, view, "/department-budget")
}

func TestTUI_HomeFuzzyFilterOpensScreen(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)

	d.PressKey('/')
	d.Type("vacancies")
	d.PressEnter()
	d.Settle()

	assert.Equal(t, ViewListing, d.ActiveViewID())
	assert.Equal(t, "Vacancies", d.ActiveViewTitle())
	assert.Contains(t, d.View(), "Vacancy 02")
}

func TestTUI_OpenListing_LoadsFirstPage(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	d := NewTestDriver(t, env.app)

	lv := d.Open("vacancies")

	assert.Equal(t, []ViewID{ViewHome, ViewListing}, d.ViewStackIDs())
	assert.Len(t, lv.table.Records(), 5)
	assert.Equal(t, 1, env.fake.Hits(http.MethodGet, "/vacancy"))
	req := env.fake.LastRequest()
	assert.Equal(t, "1", req.Query.Get("page"))
	assert.Equal(t, "5", req.Query.Get("limit"))

	view := d.View()
	assert.Contains(t, view, "Vacancies", "breadcrumb")
	assert.Contains(t, view, "Vacancy 00")
	assert.NotContains(t, view, "Vacancy 05")
}

func TestTUI_Listing_NextPageFetchesFromServer(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('n')
	d.Settle()

	assert.Equal(t, 2, env.fake.Hits(http.MethodGet, "/vacancy"))
	assert.Equal(t, "2", env.fake.LastRequest().Query.Get("page"))
	view := d.View()
	assert.Contains(t, view, "Vacancy 05")
	assert.NotContains(t, view, "Vacancy 00")
}

func TestTUI_Listing_PagesWhenServerSendsNoTotal(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	env.fake.OmitTotals("/vacancy")
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('n')
	d.Settle()
	assert.Equal(t, "2", env.fake.LastRequest().Query.Get("page"))

	d.PressKey('n')
	d.Settle()
	assert.Equal(t, "3", env.fake.LastRequest().Query.Get("page"))
	assert.Contains(t, d.View(), "Vacancy 11")

	hits := env.fake.Hits(http.MethodGet, "/vacancy")
	d.PressKey('n')
	d.Settle()
	assert.Equal(t, hits, env.fake.Hits(http.MethodGet, "/vacancy"), "the short third page is the last")
}

func TestTUI_Listing_ClientScreenPagesLocally(t *testing.T) {
	env := testApp(t)
	for i := 0; i < 7; i++ {
		env.seedBudgets()
	}
	d := NewTestDriver(t, env.app)
	d.Open("budgets")
	hits := len(env.fake.Requests())

	d.PressKey('n')
	d.Settle()

	assert.Equal(t, hits, len(env.fake.Requests()), "client-sliced screens do not refetch on paging")
}

func TestTUI_Search_DebouncedToOneRequest(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	d := NewTestDriver(t, env.app)
	lv := d.Open("vacancies")
	require.Equal(t, 1, env.fake.Hits(http.MethodGet, "/vacancy"))

	d.PressKey('/')
	d.Type("Vacancy 1")
	assert.Equal(t, 1, env.fake.Hits(http.MethodGet, "/vacancy"), "no request while typing")

	d.Settle()

	assert.Equal(t, 2, env.fake.Hits(http.MethodGet, "/vacancy"))
	req := env.fake.LastRequest()
	assert.Equal(t, "Vacancy 1", req.Query.Get("search"))
	assert.Equal(t, "1", req.Query.Get("page"))
	assert.Len(t, lv.table.Records(), 3, "Vacancy 01, 10 and 11")
}

func TestTUI_Search_EnterCommitsImmediately(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('/')
	d.Type("Vacancy 03")
	d.PressEnter()
	d.Settle()

	assert.Equal(t, 2, env.fake.Hits(http.MethodGet, "/vacancy"), "the pending debounce tick is dropped")
	assert.Equal(t, "Vacancy 03", env.fake.LastRequest().Query.Get("search"))
	assert.Contains(t, d.View(), "search: Vacancy 03")
}

func TestTUI_Search_ResetsToFirstPage(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")
	d.PressKey('n')
	d.Settle()

	d.PressKey('/')
	d.Type("Vacancy")
	d.PressEnter()
	d.Settle()

	assert.Equal(t, "1", env.fake.LastRequest().Query.Get("page"))
}

func TestTUI_Listing_UnauthorizedShowsSessionExpired(t *testing.T) {
	env := testApp(t)
	env.fake.Fail("/vacancy", http.StatusUnauthorized, `{"message":"jwt expired"}`)
	d := NewTestDriver(t, env.app)

	d.Open("vacancies")

	assert.Contains(t, d.Flash(), "Session expired. Run :login")
}

func TestTUI_Listing_ServerErrorMessage(t *testing.T) {
	env := testApp(t)
	env.fake.Fail("/vacancy", http.StatusInternalServerError, `{"message":"database unavailable"}`)
	d := NewTestDriver(t, env.app)

	lv := d.Open("vacancies")

	assert.Contains(t, d.Flash(), "database unavailable")
	assert.Equal(t, state.Failed, lv.data.Snapshot().Phase)
	assert.Contains(t, lv.View(), "database unavailable")
}

func TestTUI_Listing_StaleResponseIgnored(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	s := &SharedState{App: env.app, Width: 120, Height: 40}
	v := newListingView(s, env.screen(t, "vacancies"))
	v.Init()

	first := v.fetch()
	v.query = "Vacancy 1"
	second := v.fetch()

	_, cmd := v.Update(second())
	assert.Nil(t, cmd)
	require.Len(t, v.table.Records(), 3)

	// The first request was cancelled; its late result must not win.
	_, cmd = v.Update(first())
	assert.Nil(t, cmd, "no error flash for a superseded request")
	assert.Len(t, v.table.Records(), 3)
	assert.Equal(t, state.Succeeded, v.data.Snapshot().Phase)
}

func TestTUI_Listing_OwnerIsolation(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	s := &SharedState{App: env.app, Width: 120, Height: 40}
	a := newListingView(s, env.screen(t, "vacancies"))
	b := newListingView(s, env.screen(t, "vacancies"))
	a.Init()
	b.Init()

	msg := a.fetch()()
	_, cmd := b.Update(msg)
	assert.Nil(t, cmd)
	assert.Empty(t, b.table.Records(), "b ignores a's result")

	a.Update(msg)
	assert.Len(t, a.table.Records(), 3)
}

func TestTUI_Filters_RestoredOnOpen(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	screen := env.screen(t, "vacancies")
	require.NoError(t, env.app.Prefs.SaveFilters(context.Background(), screen, filter.Values{
		"department": {"IT"},
	}))
	d := NewTestDriver(t, env.app)

	lv := d.Open("vacancies")

	assert.Equal(t, []string{"IT"}, env.fake.LastRequest().Query["department"])
	assert.Len(t, lv.table.Records(), 4)
	assert.Contains(t, d.View(), "filters:")
}

func TestTUI_Filters_ResetClearsAndPersists(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(12)
	screen := env.screen(t, "vacancies")
	require.NoError(t, env.app.Prefs.SaveFilters(context.Background(), screen, filter.Values{
		"status": {"closed"},
	}))
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")
	require.Equal(t, "closed", env.fake.LastRequest().Query.Get("status"))

	d.PressKey('R')
	d.Settle()

	assert.Contains(t, d.Flash(), "Filters cleared.")
	_, sent := env.fake.LastRequest().Query["status"]
	assert.False(t, sent)

	saved, err := env.app.Prefs.LoadFilters(context.Background(), screen)
	require.NoError(t, err)
	assert.False(t, saved.Active(screen.Filters))
}

func TestTUI_Filters_DialogCancelKeepsApplied(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")
	hits := env.fake.Hits(http.MethodGet, "/vacancy")

	d.PressKey('f')
	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "Filters", d.ActiveViewTitle())

	d.PressEsc()
	d.Settle()

	assert.Equal(t, ViewListing, d.ActiveViewID())
	assert.Contains(t, d.Flash(), "Cancelled.")
	assert.Equal(t, hits, env.fake.Hits(http.MethodGet, "/vacancy"))
}

func TestTUI_Detail_ViewAndBack(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressEnter()
	d.Settle()

	assert.Equal(t, ViewDetail, d.ActiveViewID())
	assert.Equal(t, "v-00", d.ActiveViewTitle())
	assert.Equal(t, 1, env.fake.Hits(http.MethodGet, "/vacancy/v-00"))
	view := d.View()
	assert.Contains(t, view, "employmentType")
	assert.Contains(t, view, "full-time")

	d.PressEsc()
	assert.Equal(t, ViewListing, d.ActiveViewID())
}

func TestTUI_Detail_DeletedPopsAndRefreshesListing(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")
	d.PressEnter()
	d.Settle()
	dv := d.activeView().(*detailView)
	listHits := env.fake.Hits(http.MethodGet, "/vacancy")

	d.Send(mutationDoneMsg{owner: dv.owner, text: "Deleted vacancies v-00.", refetch: true, deleted: true})
	d.Settle()

	assert.Equal(t, ViewListing, d.ActiveViewID())
	assert.Contains(t, d.Flash(), "Deleted vacancies v-00.")
	assert.Equal(t, listHits+1, env.fake.Hits(http.MethodGet, "/vacancy"))
}

func TestTUI_Edit_OpensFormAndCancels(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('e')
	d.Settle()

	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "Edit vacancies v-00", d.ActiveViewTitle())
	assert.Contains(t, d.View(), "Vacancy 00", "form prefilled with the record")

	d.PressEsc()
	d.Settle()
	assert.Equal(t, ViewListing, d.ActiveViewID())
	assert.Equal(t, 0, env.fake.Hits(http.MethodPatch, "/vacancy/v-00"))
}

func TestTUI_Delete_OpensConfirmation(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('x')
	d.Settle()

	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Contains(t, d.View(), "Delete vacancies v-00?")
}

func TestTUI_Actions_DeniedForRole(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	env.loginAs(t, "employee")
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('x')
	d.Settle()

	assert.Equal(t, ViewListing, d.ActiveViewID(), "no confirmation for a denied action")
	assert.Contains(t, d.Flash(), `role "employee" may not delete`)
}

func TestTUI_MutationDone_FlashesAndRefetches(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)
	lv := d.Open("vacancies")
	hits := env.fake.Hits(http.MethodGet, "/vacancy")

	d.Send(mutationDoneMsg{owner: lv.owner, text: "Updated vacancies v-00.", refetch: true})
	d.Settle()

	assert.Contains(t, d.Flash(), "Updated vacancies v-00.")
	assert.Equal(t, hits+1, env.fake.Hits(http.MethodGet, "/vacancy"))
}

func TestTUI_Create_CancelKeepsDraft(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(1)
	screen := env.screen(t, "vacancies")
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('c')
	d.Settle()
	require.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "New vacancies", d.ActiveViewTitle())

	d.Type("Data Analyst")
	d.PressEsc()
	d.Settle()

	assert.Equal(t, ViewListing, d.ActiveViewID())
	draft, err := env.app.Prefs.LoadDraft(context.Background(), screen)
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", draft["title"])

	// Reopening the form starts from the draft.
	d.PressKey('c')
	d.Settle()
	assert.Contains(t, d.View(), "Data Analyst")
}

func TestTUI_Approvals_DecisionFormOnRequests(t *testing.T) {
	env := testApp(t)
	env.seedRequests()
	d := NewTestDriver(t, env.app)
	d.Open("vacancy-requests")

	d.PressKey('-')
	d.Settle()

	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, "Reject r-1", d.ActiveViewTitle())
}

func TestTUI_Approvals_IgnoredOnOtherScreens(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(2)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('+')
	d.Settle()

	assert.Equal(t, ViewListing, d.ActiveViewID())
}

func TestTUI_Dashboard(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(4)
	env.seedBudgets()
	d := NewTestDriver(t, env.app)

	d.PressKey('d')
	d.Settle()

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	view := d.View()
	assert.Contains(t, view, "TOTALS")
	assert.Contains(t, view, "Vacancies")
}

func TestTUI_CommandBar_CobraOutput(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(2)
	d := NewTestDriver(t, env.app)

	d.Command("list vacancies")

	assert.False(t, d.CmdBarFocused())
	assert.Contains(t, d.LastOutput(), "Vacancy 01")

	// Any non-scroll key dismisses the output.
	d.PressKey('j')
	assert.Empty(t, d.LastOutput())
}

func TestTUI_CommandBar_UnknownCommandSuggests(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.Command("lst vacancies")

	out := d.LastOutput()
	assert.Contains(t, out, "unknown command")
	assert.Contains(t, out, "Did you mean")
	assert.Contains(t, out, "list")
}

func TestTUI_CommandBar_UnterminatedQuote(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.Command(`list "vacancies`)

	assert.Contains(t, d.LastOutput(), "unterminated")
}

func TestTUI_CommandBar_MutationRefreshesOpenListing(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(3)
	d := NewTestDriver(t, env.app)
	lv := d.Open("vacancies")

	d.Command("delete vacancies v-00 --yes")

	assert.Contains(t, d.LastOutput(), "Deleted vacancies v-00.")
	assert.Len(t, lv.table.Records(), 2, "listing reloaded after the command")
}

func TestTUI_CommandBar_LoginUpdatesRole(t *testing.T) {
	env := testApp(t)
	env.fake.AccessToken = tokenFor(t, "recruiter")
	d := NewTestDriver(t, env.app)
	require.Empty(t, d.State().Role)

	d.Command("login --email ana@example.com --password secret")

	assert.Contains(t, d.LastOutput(), "Logged in.")
	assert.Equal(t, "recruiter", d.State().Role)
}

func TestTUI_CommandBar_OpenUnknownScreen(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.Command("open spaceships")

	assert.Equal(t, ViewHome, d.ActiveViewID())
	assert.Contains(t, d.LastOutput(), "unknown screen")
}

func TestTUI_CommandBar_Home(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(2)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")
	d.PressEnter()
	d.Settle()
	require.Equal(t, 3, d.ViewStackLen())

	d.Command("home")

	assert.Equal(t, []ViewID{ViewHome}, d.ViewStackIDs())
}

func TestTUI_Help(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('?')

	assert.Contains(t, d.LastOutput(), "open <screen>")
}

func TestTUI_EscOnHomeStays(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.PressEsc()

	assert.Equal(t, 1, d.ViewStackLen())
	assert.False(t, d.IsQuitting())
}

func TestTUI_Quit(t *testing.T) {
	env := testApp(t)
	d := NewTestDriver(t, env.app)

	d.PressKey('q')

	assert.True(t, d.IsQuitting())
}

func TestTUI_QuitIgnoredWhileSearching(t *testing.T) {
	env := testApp(t)
	env.seedVacancies(2)
	d := NewTestDriver(t, env.app)
	d.Open("vacancies")

	d.PressKey('/')
	d.PressKey('q')

	assert.False(t, d.IsQuitting())
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, d.IsQuitting())
}
