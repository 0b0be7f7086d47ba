package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/service"
)

const dashboardBarWidth = 24

// FormatDashboard renders screen totals as bars, followed by status
// distributions and amount totals. Failed screens show their error inline.
func FormatDashboard(sum *service.Summary) string {
	if sum == nil || len(sum.Screens) == 0 {
		return Dim("Nothing to show.")
	}

	largest := 0
	labelWidth := 0
	for _, s := range sum.Screens {
		largest = max(largest, s.Total)
		labelWidth = max(labelWidth, len(s.Title))
	}

	var b strings.Builder
	b.WriteString(Header("Totals") + "\n")
	for _, s := range sum.Screens {
		b.WriteString(PadRight(s.Title, labelWidth) + "  ")
		if s.Err != nil {
			b.WriteString(ErrorLine(api.Message(s.Err, "unavailable")))
		} else {
			b.WriteString(RenderCount(s.Total, largest, dashboardBarWidth))
		}
		b.WriteString("\n")
	}

	for _, s := range sum.Screens {
		if s.Err != nil || len(s.Statuses) == 0 {
			continue
		}
		b.WriteString("\n" + Header(s.Title+" by status") + "\n")
		top := s.Statuses[0].N
		for _, c := range s.Statuses {
			b.WriteString(PadRight(c.Label, 14) + "  " + RenderCount(c.N, top, dashboardBarWidth) + "\n")
		}
	}

	for _, s := range sum.Screens {
		if s.Err != nil || !s.HasAmount {
			continue
		}
		b.WriteString("\n" + Header(s.Title+" total") + "\n")
		b.WriteString(Bold(Money(s.Amount)) + "\n")
	}

	if sum.Failed > 0 {
		b.WriteString("\n" + StyleYellow.Render(fmt.Sprintf("%s could not be loaded.", Plural(sum.Failed, "screen"))) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
