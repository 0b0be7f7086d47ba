package table

import (
	"github.com/charmbracelet/bubbles/paginator"
)

// Mode says who slices records into pages.
type Mode int

const (
	// ClientSlicing holds the complete record set and cuts pages locally.
	ClientSlicing Mode = iota
	// Manual holds exactly one page supplied by the server; the server total
	// drives the page count.
	Manual
)

// Pager tracks the page index and page size.
type Pager struct {
	p     paginator.Model
	mode  Mode
	total int
}

// NewPager creates a pager on page 0.
func NewPager(pageSize int, mode Mode) *Pager {
	if pageSize < 1 {
		pageSize = 1
	}
	p := paginator.New(paginator.WithPerPage(pageSize))
	p.Type = paginator.Arabic
	p.ArabicFormat = "page %d of %d"
	return &Pager{p: p, mode: mode}
}

func (g *Pager) Mode() Mode      { return g.mode }
func (g *Pager) Page() int       { return g.p.Page }
func (g *Pager) PageSize() int   { return g.p.PerPage }
func (g *Pager) Total() int      { return g.total }
func (g *Pager) TotalPages() int { return g.p.TotalPages }

// SetTotal records the number of items across all pages and clamps the
// current page into range.
func (g *Pager) SetTotal(items int) {
	if items < 0 {
		items = 0
	}
	g.total = items
	if items == 0 {
		g.p.TotalPages = 1
	} else {
		g.p.SetTotalPages(items)
	}
	if g.p.Page > g.p.TotalPages-1 {
		g.p.Page = g.p.TotalPages - 1
	}
}

// SetPage jumps to page i, clamped to the known range.
func (g *Pager) SetPage(i int) {
	if i < 0 {
		i = 0
	}
	if i > g.p.TotalPages-1 {
		i = g.p.TotalPages - 1
	}
	g.p.Page = i
}

// SetPageSize changes the page size and always returns to page 0.
func (g *Pager) SetPageSize(n int) {
	if n < 1 {
		n = 1
	}
	g.p.PerPage = n
	g.p.Page = 0
	g.SetTotal(g.total)
}

// Next moves forward one page and reports whether the page changed.
func (g *Pager) Next() bool {
	before := g.p.Page
	g.p.NextPage()
	return g.p.Page != before
}

// Prev moves back one page and reports whether the page changed.
func (g *Pager) Prev() bool {
	before := g.p.Page
	g.p.PrevPage()
	return g.p.Page != before
}

// Window returns the bounds of the current page within n held items. In
// Manual mode the held items are already the page.
func (g *Pager) Window(n int) (start, end int) {
	if g.mode == Manual {
		return 0, min(n, g.p.PerPage)
	}
	start, end = g.p.GetSliceBounds(n)
	if start > n {
		start = n
	}
	return start, end
}

// View renders "page X of Y".
func (g *Pager) View() string { return g.p.View() }
