package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/filter"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tidwall/gjson"
)

// ListAllPageSize is the page size used when walking every page.
const ListAllPageSize = 100

// maxListAllPages bounds ListAll against a backend that misreports totals.
const maxListAllPages = 500

// PatchResult is the outcome of a merge-patch edit.
type PatchResult struct {
	Record  domain.Record
	Patch   []byte
	Changed bool
}

type resourceService struct {
	api      API
	guard    Guard
	observer UseCaseObserver
}

func NewResourceService(client API, guard Guard, observers ...UseCaseObserver) ResourceService {
	return &resourceService{
		api:      client,
		guard:    guard,
		observer: useCaseObserverOrNoop(observers),
	}
}

// QueryFor builds the listing query for screen. Filters are only sent to
// screens that filter on the server.
func QueryFor(screen catalog.Screen, page, limit int, search string, values filter.Values) api.ListQuery {
	q := api.ListQuery{Page: page, Limit: limit, Search: search}
	if screen.ServerFiltering() && len(screen.Filters) > 0 {
		q.Filters = filter.ToQuery(screen.Filters, values)
	}
	return q
}

// LocalFilter applies values in memory for client-filtered screens and
// returns records unchanged otherwise.
func LocalFilter(screen catalog.Screen, values filter.Values, records []domain.Record) []domain.Record {
	if screen.ServerFiltering() {
		return records
	}
	return filter.Apply(screen.Filters, values, records)
}

func (s *resourceService) List(ctx context.Context, screen catalog.Screen, q api.ListQuery) (page domain.Page, err error) {
	done := observe(ctx, s.observer, "list", map[string]any{"screen": screen.Name, "page": q.Page})
	defer func() { done(err) }()

	if err = s.guard.check(ctx, screen.AuthzResource(), authz.ActionRead); err != nil {
		return domain.Page{}, err
	}
	values, err := q.Values()
	if err != nil {
		return domain.Page{}, fmt.Errorf("encoding query: %w", err)
	}
	resp, err := s.api.Get(ctx, screen.Path, values)
	if err != nil {
		return domain.Page{}, fmt.Errorf("listing %s: %w", screen.Name, err)
	}
	page, err = api.DecodePage(resp.Body, q)
	if err != nil {
		return domain.Page{}, fmt.Errorf("listing %s: %w", screen.Name, err)
	}
	return page, nil
}

// ListAll walks pages until the reported total is reached or a page comes
// back short. Endpoints that send no total are walked until a short page.
func (s *resourceService) ListAll(ctx context.Context, screen catalog.Screen, q api.ListQuery) ([]domain.Record, error) {
	if q.Limit <= 0 {
		q.Limit = ListAllPageSize
	}
	var out []domain.Record
	for q.Page = 0; q.Page < maxListAllPages; q.Page++ {
		page, err := s.List(ctx, screen, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if len(page.Items) < q.Limit || (page.TotalKnown && len(out) >= page.Total) {
			break
		}
	}
	return out, nil
}

func (s *resourceService) Get(ctx context.Context, screen catalog.Screen, id string) (rec domain.Record, err error) {
	done := observe(ctx, s.observer, "get", map[string]any{"screen": screen.Name, "id": id})
	defer func() { done(err) }()

	if err = s.guard.check(ctx, screen.AuthzResource(), authz.ActionRead); err != nil {
		return domain.Record{}, err
	}
	resp, err := s.api.Get(ctx, screen.ItemPath(id), nil)
	if err != nil {
		return domain.Record{}, fmt.Errorf("fetching %s %s: %w", screen.Name, id, err)
	}
	return api.DecodeRecord(resp.Body)
}

func (s *resourceService) Create(ctx context.Context, screen catalog.Screen, body []byte) (rec domain.Record, err error) {
	done := observe(ctx, s.observer, "create", map[string]any{"screen": screen.Name})
	defer func() { done(err) }()

	if err = s.guard.check(ctx, screen.AuthzResource(), authz.ActionCreate); err != nil {
		return domain.Record{}, err
	}
	if err = requireObject(body); err != nil {
		return domain.Record{}, err
	}
	resp, err := s.api.Post(ctx, screen.Path, json.RawMessage(body))
	if err != nil {
		return domain.Record{}, fmt.Errorf("creating %s: %w", screen.Name, err)
	}
	return api.DecodeRecord(resp.Body)
}

func (s *resourceService) Replace(ctx context.Context, screen catalog.Screen, id string, body []byte) (rec domain.Record, err error) {
	done := observe(ctx, s.observer, "replace", map[string]any{"screen": screen.Name, "id": id})
	defer func() { done(err) }()

	if err = s.guard.check(ctx, screen.AuthzResource(), authz.ActionUpdate); err != nil {
		return domain.Record{}, err
	}
	if err = requireObject(body); err != nil {
		return domain.Record{}, err
	}
	resp, err := s.api.Put(ctx, screen.ItemPath(id), json.RawMessage(body))
	if err != nil {
		return domain.Record{}, fmt.Errorf("updating %s %s: %w", screen.Name, id, err)
	}
	return api.DecodeRecord(resp.Body)
}

// Patch sends the JSON merge patch that turns original into modified. No
// call is made when the two documents are equal.
func (s *resourceService) Patch(ctx context.Context, screen catalog.Screen, original domain.Record, modified []byte) (res PatchResult, err error) {
	id := original.ID()
	done := observe(ctx, s.observer, "patch", map[string]any{"screen": screen.Name, "id": id})
	defer func() { done(err) }()

	if id == "" {
		return PatchResult{}, fmt.Errorf("patching %s: record has no id", screen.Name)
	}
	if err = s.guard.check(ctx, screen.AuthzResource(), authz.ActionUpdate); err != nil {
		return PatchResult{}, err
	}
	if err = requireObject(modified); err != nil {
		return PatchResult{}, err
	}
	patch, err := jsonpatch.CreateMergePatch(original.Raw(), modified)
	if err != nil {
		return PatchResult{}, fmt.Errorf("computing patch: %w", err)
	}
	if len(gjson.ParseBytes(patch).Map()) == 0 {
		return PatchResult{Record: original, Patch: patch}, nil
	}

	resp, err := s.api.Patch(ctx, screen.ItemPath(id), json.RawMessage(patch))
	if err != nil {
		return PatchResult{}, fmt.Errorf("updating %s %s: %w", screen.Name, id, err)
	}
	rec, err := api.DecodeRecord(resp.Body)
	if err != nil {
		return PatchResult{}, err
	}
	return PatchResult{Record: rec, Patch: patch, Changed: true}, nil
}

func (s *resourceService) Delete(ctx context.Context, screen catalog.Screen, id string) (err error) {
	done := observe(ctx, s.observer, "delete", map[string]any{"screen": screen.Name, "id": id})
	defer func() { done(err) }()

	if err = s.guard.check(ctx, screen.AuthzResource(), authz.ActionDelete); err != nil {
		return err
	}
	if _, err = s.api.Delete(ctx, screen.ItemPath(id)); err != nil {
		return fmt.Errorf("deleting %s %s: %w", screen.Name, id, err)
	}
	return nil
}

func requireObject(body []byte) error {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return fmt.Errorf("request body must be a JSON object")
	}
	return nil
}
