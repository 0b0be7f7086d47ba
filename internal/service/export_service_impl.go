package service

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/alexanderramin/hrdesk/internal/authz"
	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/xuri/excelize/v2"
)

// ExportRequest selects what is exported. AllPages walks the whole
// listing; otherwise only Page is written.
type ExportRequest struct {
	Search   string
	Filters  filter.Values
	Page     int
	Limit    int
	AllPages bool
}

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

type exportService struct {
	resources ResourceService
	guard     Guard
	observer  UseCaseObserver
}

func NewExportService(resources ResourceService, guard Guard, observers ...UseCaseObserver) ExportService {
	return &exportService{resources: resources, guard: guard, observer: useCaseObserverOrNoop(observers)}
}

// Export writes the listing as an XLSX workbook to w and returns the number
// of data rows.
func (s *exportService) Export(ctx context.Context, screen catalog.Screen, req ExportRequest, w io.Writer) (int, error) {
	f, n, err := s.build(ctx, screen, req)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("writing workbook: %w", err)
	}
	return n, nil
}

// ExportFile writes the workbook to path.
func (s *exportService) ExportFile(ctx context.Context, screen catalog.Screen, req ExportRequest, path string) (int, error) {
	f, n, err := s.build(ctx, screen, req)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("saving %s: %w", path, err)
	}
	return n, nil
}

func (s *exportService) build(ctx context.Context, screen catalog.Screen, req ExportRequest) (f *excelize.File, n int, err error) {
	done := observe(ctx, s.observer, "export", map[string]any{"screen": screen.Name, "all_pages": req.AllPages})
	defer func() { done(err) }()

	if err = s.guard.check(ctx, screen.AuthzResource(), authz.ActionExport); err != nil {
		return nil, 0, err
	}
	records, err := s.fetch(ctx, screen, req)
	if err != nil {
		return nil, 0, err
	}
	f, err = Workbook(screen, records)
	if err != nil {
		return nil, 0, err
	}
	return f, len(records), nil
}

func (s *exportService) fetch(ctx context.Context, screen catalog.Screen, req ExportRequest) ([]domain.Record, error) {
	q := QueryFor(screen, req.Page, req.Limit, req.Search, req.Filters)
	var records []domain.Record
	if req.AllPages {
		all, err := s.resources.ListAll(ctx, screen, q)
		if err != nil {
			return nil, err
		}
		records = all
	} else {
		page, err := s.resources.List(ctx, screen, q)
		if err != nil {
			return nil, err
		}
		records = page.Items
	}
	return LocalFilter(screen, req.Filters, records), nil
}

// Workbook lays records out under a bold header row, one column per screen
// column, with the header frozen.
func Workbook(screen catalog.Screen, records []domain.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := sheetName(screen)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	cols := screen.TableColumns()
	header := make([]any, len(cols))
	widths := make([]int, len(cols))
	for i, c := range cols {
		header[i] = c.Header
		widths[i] = utf8.RuneCountInString(c.Header)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for r, rec := range records {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = cellValue(c.RecordPath(), c.Cell(rec), rec)
			widths[i] = max(widths[i], utf8.RuneCountInString(c.Cell(rec)))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("styling header: %w", err)
	}
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, float64(min(w, 60)+2)); err != nil {
			f.Close()
			return nil, fmt.Errorf("sizing column %s: %w", name, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freezing header: %w", err)
	}
	return f, nil
}

// cellValue keeps numbers numeric so spreadsheets can sum them.
func cellValue(path, display string, rec domain.Record) any {
	if display == domain.Placeholder {
		return display
	}
	if d, ok := rec.Decimal(path); ok && d.String() == rec.String(path) {
		v, _ := d.Float64()
		return v
	}
	return display
}

func sheetName(screen catalog.Screen) string {
	name := screen.Title
	if name == "" {
		name = screen.Name
	}
	r := []rune(name)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}
