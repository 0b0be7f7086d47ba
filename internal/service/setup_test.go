package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/testutil"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	fake    *testutil.FakeAPI
	client  *api.Client
	catalog *catalog.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	cat, err := catalog.Load()
	require.NoError(t, err)
	return &fixture{
		fake:    fake,
		client:  api.NewClient(api.Config{BaseURL: fake.URL()}, nil, nil),
		catalog: cat,
	}
}

func (f *fixture) screen(t *testing.T, name string) catalog.Screen {
	t.Helper()
	s, ok := f.catalog.Lookup(name)
	require.True(t, ok, "screen %s", name)
	return s
}

func roleFunc(role string) func(context.Context) string {
	return func(context.Context) string { return role }
}

func seedVacancies(f *fixture, n int) {
	departments := []string{"IT", "HR", "Finance"}
	statuses := []string{"open", "closed"}
	for i := 0; i < n; i++ {
		f.fake.Seed("/vacancy", map[string]any{
			"id":         fmt.Sprintf("v-%02d", i),
			"title":      fmt.Sprintf("Vacancy %02d", i),
			"department": departments[i%len(departments)],
			"status":     statuses[i%len(statuses)],
			"salary":     1000 * (i + 1),
		})
	}
}
