package service

import (
	"context"
	"io"
	"net/url"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/auth"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/filter"
)

// API is the subset of *api.Client the services call.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (*api.Response, error)
	Post(ctx context.Context, path string, body any) (*api.Response, error)
	Put(ctx context.Context, path string, body any) (*api.Response, error)
	Patch(ctx context.Context, path string, body any) (*api.Response, error)
	Delete(ctx context.Context, path string) (*api.Response, error)
}

type ResourceService interface {
	List(ctx context.Context, screen catalog.Screen, q api.ListQuery) (domain.Page, error)
	ListAll(ctx context.Context, screen catalog.Screen, q api.ListQuery) ([]domain.Record, error)
	Get(ctx context.Context, screen catalog.Screen, id string) (domain.Record, error)
	Create(ctx context.Context, screen catalog.Screen, body []byte) (domain.Record, error)
	Replace(ctx context.Context, screen catalog.Screen, id string, body []byte) (domain.Record, error)
	Patch(ctx context.Context, screen catalog.Screen, original domain.Record, modified []byte) (PatchResult, error)
	Delete(ctx context.Context, screen catalog.Screen, id string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (auth.State, error)
	LoginWithToken(ctx context.Context, t auth.Tokens) (auth.State, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (auth.State, error)
}

type ApprovalService interface {
	Decide(ctx context.Context, id string, decision Decision, comment string) (domain.Record, error)
}

type DashboardService interface {
	Summary(ctx context.Context, screens []catalog.Screen) (*Summary, error)
}

type ExportService interface {
	Export(ctx context.Context, screen catalog.Screen, req ExportRequest, w io.Writer) (int, error)
	ExportFile(ctx context.Context, screen catalog.Screen, req ExportRequest, path string) (int, error)
}

type PrefsService interface {
	LoadFilters(ctx context.Context, screen catalog.Screen) (filter.Values, error)
	SaveFilters(ctx context.Context, screen catalog.Screen, v filter.Values) error
	LoadDraft(ctx context.Context, screen catalog.Screen) (map[string]string, error)
	SaveDraft(ctx context.Context, screen catalog.Screen, values map[string]string) error
	ClearDraft(ctx context.Context, screen catalog.Screen) error
	LoadHistory(ctx context.Context) ([]string, error)
	AppendHistory(ctx context.Context, line string) error
}
