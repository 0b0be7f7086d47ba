package service

import (
	"context"
	"errors"
	"sort"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/table"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardConcurrency bounds the number of screens fetched at once.
const DashboardConcurrency = 4

// Count is one bucket of a distribution.
type Count struct {
	Label string
	N     int
}

// ScreenSummary aggregates one screen. Err is set when its fetch failed;
// the other screens are still reported.
type ScreenSummary struct {
	Screen    string
	Title     string
	Total     int
	Statuses  []Count
	Amount    decimal.Decimal
	HasAmount bool
	Err       error
}

// Summary is the dashboard payload, in catalog order.
type Summary struct {
	Screens []ScreenSummary
	Failed  int
}

type dashboardService struct {
	resources ResourceService
	observer  UseCaseObserver
}

func NewDashboardService(resources ResourceService, observers ...UseCaseObserver) DashboardService {
	return &dashboardService{resources: resources, observer: useCaseObserverOrNoop(observers)}
}

// Summary fetches every screen concurrently. Screens the role may not read
// are left out.
func (s *dashboardService) Summary(ctx context.Context, screens []catalog.Screen) (sum *Summary, err error) {
	done := observe(ctx, s.observer, "dashboard", map[string]any{"screens": len(screens)})
	defer func() { done(err) }()

	results := make([]ScreenSummary, len(screens))
	denied := make([]bool, len(screens))

	var g errgroup.Group
	g.SetLimit(DashboardConcurrency)
	for i, screen := range screens {
		g.Go(func() error {
			res, err := s.summarize(ctx, screen)
			var deny *authz.DeniedError
			if errors.As(err, &deny) {
				denied[i] = true
				return nil
			}
			res.Err = err
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	sum = &Summary{}
	for i, res := range results {
		if denied[i] {
			continue
		}
		if res.Err != nil {
			sum.Failed++
		}
		sum.Screens = append(sum.Screens, res)
	}
	return sum, nil
}

func (s *dashboardService) summarize(ctx context.Context, screen catalog.Screen) (ScreenSummary, error) {
	res := ScreenSummary{Screen: screen.Name, Title: screen.Title}
	if res.Title == "" {
		res.Title = screen.Name
	}

	if screen.StatusPath == "" && screen.AmountPath == "" {
		page, err := s.resources.List(ctx, screen, api.ListQuery{Limit: 1})
		if err != nil {
			return res, err
		}
		if page.TotalKnown || !page.Full() {
			res.Total = page.Total
			return res, nil
		}
		// No count from the server; fall through and count every record.
	}

	records, err := s.resources.ListAll(ctx, screen, api.ListQuery{})
	if err != nil {
		return res, err
	}
	res.Total = len(records)

	if screen.StatusPath != "" {
		counts := map[string]int{}
		for _, r := range records {
			counts[r.Display(screen.StatusPath)]++
		}
		for label, n := range counts {
			res.Statuses = append(res.Statuses, Count{Label: label, N: n})
		}
		sort.Slice(res.Statuses, func(i, j int) bool {
			if res.Statuses[i].N != res.Statuses[j].N {
				return res.Statuses[i].N > res.Statuses[j].N
			}
			return res.Statuses[i].Label < res.Statuses[j].Label
		})
	}
	if screen.AmountPath != "" {
		res.Amount = table.Sum(records, screen.AmountPath)
		res.HasAmount = true
	}
	return res, nil
}
