package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/auth"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/repository"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/alexanderramin/hrdesk/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fixedNow is the clock used by every test App.
var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// testEnv is a full App wired against a fake backend and an in-memory
// state database.
type testEnv struct {
	app     *App
	fake    *testutil.FakeAPI
	session *auth.Session
}

// testApp wires a full App for CLI and TUI tests.
func testApp(t *testing.T) *testEnv {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	conn := testutil.NewTestDB(t)
	log := zaptest.NewLogger(t)

	session := auth.NewSession(conn, testutil.NewTestUoW(conn), auth.Options{
		TenantClaim: "tenantId",
		RoleClaim:   "role",
	}, log)
	client := api.NewClient(api.Config{BaseURL: fake.URL()}, session, nil)

	cat, err := catalog.Load()
	require.NoError(t, err)
	gate, err := authz.NewGate(log)
	require.NoError(t, err)

	guard := service.Guard{Gate: gate, Role: session.Role}
	resources := service.NewResourceService(client, guard)

	return &testEnv{
		app: &App{
			Catalog:   cat,
			Auth:      service.NewAuthService(client, session),
			Resources: resources,
			Approvals: service.NewApprovalService(client, guard),
			Dashboard: service.NewDashboardService(resources),
			Export:    service.NewExportService(resources, guard),
			Prefs:     service.NewPrefsService(repository.NewSQLiteKVRepo(conn), log),

			Gate: gate,
			Role: session.Role,
			Log:  log,

			PageSize:       5,
			SearchDebounce: 40 * time.Millisecond,
			Now:            func() time.Time { return fixedNow },
		},
		fake:    fake,
		session: session,
	}
}

// tokenFor signs an access token carrying role for tenant t-1.
func tokenFor(t *testing.T, role string) string {
	t.Helper()
	return testutil.Token(t, map[string]any{
		"sub":      "u-1",
		"email":    "ana@example.com",
		"role":     role,
		"tenantId": "t-1",
	})
}

// loginAs stores a session for role.
func (e *testEnv) loginAs(t *testing.T, role string) {
	t.Helper()
	_, err := e.session.Login(context.Background(), auth.Tokens{AccessToken: tokenFor(t, role), UserID: "u-1"})
	require.NoError(t, err)
}

// seedVacancies adds n vacancies cycling through departments and statuses.
func (e *testEnv) seedVacancies(n int) {
	departments := []string{"IT", "HR", "Finance"}
	statuses := []string{"open", "closed"}
	for i := 0; i < n; i++ {
		e.fake.Seed("/vacancy", map[string]any{
			"id":             fmt.Sprintf("v-%02d", i),
			"title":          fmt.Sprintf("Vacancy %02d", i),
			"department":     departments[i%len(departments)],
			"employmentType": "full-time",
			"status":         statuses[i%len(statuses)],
			"salary":         1000 * (i + 1),
			"branch":         map[string]any{"name": "Main"},
		})
	}
}

func (e *testEnv) seedBudgets() {
	e.fake.Seed("/department-budget",
		map[string]any{"id": "b-1", "department": "IT", "fiscalYear": 2025, "allocatedAmount": 50000, "spentAmount": 1000, "currency": "USD"},
		map[string]any{"id": "b-2", "department": "HR", "fiscalYear": 2025, "allocatedAmount": 20000, "spentAmount": 500, "currency": "USD"},
		map[string]any{"id": "b-3", "department": "IT", "fiscalYear": 2024, "allocatedAmount": 40000, "spentAmount": 40000, "currency": "USD"},
	)
}

func (e *testEnv) seedRequests() {
	e.fake.Seed("/vacancy-request",
		map[string]any{"id": "r-1", "positionTitle": "Analyst", "department": "Finance", "headcount": 2, "status": "pending"},
		map[string]any{"id": "r-2", "positionTitle": "Engineer", "department": "IT", "headcount": 1, "status": "pending"},
	)
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	if args == nil {
		args = []string{} // nil makes cobra read os.Args
	}
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// screen looks up a catalog screen by name.
func (e *testEnv) screen(t *testing.T, name string) catalog.Screen {
	t.Helper()
	s, ok := e.app.Catalog.Lookup(name)
	require.True(t, ok, "screen %s", name)
	return s
}
