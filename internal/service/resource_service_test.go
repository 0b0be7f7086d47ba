package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceService_List_SendsPagingAndFilters(t *testing.T) {
	f := newFixture(t)
	seedVacancies(f, 12)
	svc := NewResourceService(f.client, Guard{})
	screen := f.screen(t, "vacancies")

	values := screen.Filters.Zero()
	values["department"] = []string{"IT"}
	q := QueryFor(screen, 1, 2, "", values)

	page, err := svc.List(context.Background(), screen, q)
	require.NoError(t, err)

	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "v-06", page.Items[0].ID())

	req := f.fake.LastRequest()
	assert.Equal(t, "2", req.Query.Get("page"))
	assert.Equal(t, "2", req.Query.Get("limit"))
	assert.Equal(t, []string{"IT"}, req.Query["department"])
}

func TestQueryFor_ClientScreenSendsNoFilters(t *testing.T) {
	f := newFixture(t)
	screen := f.screen(t, "job-descriptions")
	require.False(t, screen.ServerFiltering())

	values := screen.Filters.Zero()
	for _, fld := range screen.Filters {
		if fld.Kind == filter.Text {
			values[fld.ID] = []string{"x"}
		}
	}
	q := QueryFor(screen, 0, 10, "dev", values)
	assert.Empty(t, q.Filters)
	assert.Equal(t, "dev", q.Search)
}

func TestLocalFilter_OnlyForClientScreens(t *testing.T) {
	f := newFixture(t)
	records := []domain.Record{
		domain.RecordFromMap(map[string]any{"id": "1", "department": "Finance", "fiscalYear": 2024}),
		domain.RecordFromMap(map[string]any{"id": "2", "department": "it", "fiscalYear": 2025}),
	}
	budgets := f.screen(t, "department-budgets")
	values := budgets.Filters.Zero()
	values["department"] = []string{"IT"}

	got := LocalFilter(budgets, values, records)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID())

	vacancies := f.screen(t, "vacancies")
	assert.Len(t, LocalFilter(vacancies, values, records), 2)
}

func TestResourceService_ListAll_WalksPages(t *testing.T) {
	f := newFixture(t)
	seedVacancies(f, 23)
	svc := NewResourceService(f.client, Guard{})

	all, err := svc.ListAll(context.Background(), f.screen(t, "vacancies"), api.ListQuery{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, all, 23)
	assert.Equal(t, 5, f.fake.Hits(http.MethodGet, "/vacancy"))
}

func TestResourceService_ListAll_WithoutTotals(t *testing.T) {
	cases := []struct {
		name     string
		seeded   int
		wantHits int
	}{
		{"several pages", 250, 3},
		{"exact multiple of the page size", 200, 3},
		{"single short page", 7, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			seedVacancies(f, tc.seeded)
			f.fake.OmitTotals("/vacancy")
			svc := NewResourceService(f.client, Guard{})

			all, err := svc.ListAll(context.Background(), f.screen(t, "vacancies"), api.ListQuery{})
			require.NoError(t, err)
			assert.Len(t, all, tc.seeded)
			assert.Equal(t, tc.wantHits, f.fake.Hits(http.MethodGet, "/vacancy"))
		})
	}
}

func TestResourceService_List_WithoutTotal(t *testing.T) {
	f := newFixture(t)
	seedVacancies(f, 12)
	f.fake.OmitTotals("/vacancy")
	svc := NewResourceService(f.client, Guard{})

	page, err := svc.List(context.Background(), f.screen(t, "vacancies"), api.ListQuery{Page: 1, Limit: 5})
	require.NoError(t, err)

	assert.False(t, page.TotalKnown)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "v-05", page.Items[0].ID())
	assert.Equal(t, 3, page.TotalPages(), "a full page keeps the next page reachable")
}

func TestResourceService_ServerErrorCarriesMessage(t *testing.T) {
	f := newFixture(t)
	f.fake.Fail("/vacancy", http.StatusInternalServerError, `{"message":"X"}`)
	svc := NewResourceService(f.client, Guard{})

	_, err := svc.List(context.Background(), f.screen(t, "vacancies"), api.ListQuery{Limit: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnknown)
	assert.Equal(t, "X", api.Message(err, "fallback"))
}

func TestResourceService_GetCreateReplaceDelete(t *testing.T) {
	f := newFixture(t)
	seedVacancies(f, 2)
	svc := NewResourceService(f.client, Guard{})
	screen := f.screen(t, "vacancies")
	ctx := context.Background()

	rec, err := svc.Get(ctx, screen, "v-01")
	require.NoError(t, err)
	assert.Equal(t, "Vacancy 01", rec.String("title"))

	created, err := svc.Create(ctx, screen, []byte(`{"title":"Analyst","department":"Finance"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID())
	assert.Len(t, f.fake.Items("/vacancy"), 3)

	replaced, err := svc.Replace(ctx, screen, "v-00", []byte(`{"title":"Renamed"}`))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", replaced.String("title"))
	assert.False(t, replaced.Has("department"))

	require.NoError(t, svc.Delete(ctx, screen, "v-01"))
	assert.Len(t, f.fake.Items("/vacancy"), 2)

	_, err = svc.Get(ctx, screen, "v-01")
	assert.ErrorIs(t, err, api.ErrServerValidation)
}

func TestResourceService_Create_RejectsNonObject(t *testing.T) {
	f := newFixture(t)
	svc := NewResourceService(f.client, Guard{})

	_, err := svc.Create(context.Background(), f.screen(t, "vacancies"), []byte(`[1,2]`))
	require.Error(t, err)
	assert.Empty(t, f.fake.Requests())
}

func TestResourceService_Patch_SendsMergePatch(t *testing.T) {
	f := newFixture(t)
	seedVacancies(f, 1)
	svc := NewResourceService(f.client, Guard{})
	screen := f.screen(t, "vacancies")
	ctx := context.Background()

	original, err := svc.Get(ctx, screen, "v-00")
	require.NoError(t, err)

	modified, err := BuildBody(original.Raw(), []string{"status=closed", "-department"})
	require.NoError(t, err)

	res, err := svc.Patch(ctx, screen, original, modified)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.JSONEq(t, `{"status":"closed","department":null}`, string(res.Patch))
	assert.Equal(t, "closed", res.Record.String("status"))
	assert.False(t, res.Record.Has("department"))

	req := f.fake.LastRequest()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/vacancy/v-00", req.Path)
}

func TestResourceService_Patch_NoChangeSkipsCall(t *testing.T) {
	f := newFixture(t)
	svc := NewResourceService(f.client, Guard{})
	original := domain.RecordFromMap(map[string]any{"id": "v-1", "title": "Same"})

	res, err := svc.Patch(context.Background(), f.screen(t, "vacancies"), original, original.Raw())
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, f.fake.Requests())
}

func TestResourceService_GuardDeniesBeforeCalling(t *testing.T) {
	f := newFixture(t)
	gate, err := authz.NewGate(nil)
	require.NoError(t, err)
	svc := NewResourceService(f.client, Guard{Gate: gate, Role: roleFunc("employee")})
	screen := f.screen(t, "vacancies")

	err = svc.Delete(context.Background(), screen, "v-1")
	var denied *authz.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "delete", denied.Action)
	assert.Empty(t, f.fake.Requests())

	_, err = svc.List(context.Background(), screen, api.ListQuery{Limit: 5})
	assert.NoError(t, err)
}
