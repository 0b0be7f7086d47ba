package cli

import (
	"context"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/alexanderramin/hrdesk/internal/table"
)

// listingRequest is one run of the fetch → filter → paginate pipeline.
type listingRequest struct {
	Page    int
	Limit   int
	Search  string
	Filters filter.Values
}

// fetchListing loads the records a listing needs. Server-filtered screens
// get exactly the requested page. Client-filtered screens get every record
// matching the search, with filters left to the caller.
func fetchListing(ctx context.Context, resources service.ResourceService, screen catalog.Screen, req listingRequest) (domain.Page, error) {
	if screen.ServerFiltering() {
		return resources.List(ctx, screen, service.QueryFor(screen, req.Page, req.Limit, req.Search, req.Filters))
	}
	records, err := resources.ListAll(ctx, screen, api.ListQuery{Search: req.Search})
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Items: records, Total: len(records), TotalKnown: true, Page: req.Page, Limit: req.Limit}, nil
}

// pageOf runs the whole pipeline for one-shot output: client-filtered
// screens are filtered and sliced locally.
func pageOf(ctx context.Context, resources service.ResourceService, screen catalog.Screen, req listingRequest) (domain.Page, error) {
	page, err := fetchListing(ctx, resources, screen, req)
	if err != nil || screen.ServerFiltering() {
		return page, err
	}
	matched := service.LocalFilter(screen, req.Filters, page.Items)

	pager := table.NewPager(req.Limit, table.ClientSlicing)
	pager.SetTotal(len(matched))
	pager.SetPage(req.Page)
	start, end := pager.Window(len(matched))
	return domain.Page{
		Items:      matched[start:end],
		Total:      len(matched),
		TotalKnown: true,
		Page:       pager.Page(),
		Limit:      req.Limit,
	}, nil
}
