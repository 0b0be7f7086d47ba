// Package table renders pages of records as an interactive bubbletea table.
package table

import (
	"strings"

	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultColumnWidth = 16

// Column describes one rendered column.
type Column struct {
	ID     string
	Header string
	// Path into the record. Defaults to ID.
	Path  string
	Width int
	// Render overrides the default text for a cell.
	Render func(r domain.Record) string
	// Less makes the column sortable.
	Less func(a, b domain.Record) bool
}

// RecordPath returns the record path the column reads.
func (c Column) RecordPath() string {
	if c.Path != "" {
		return c.Path
	}
	return c.ID
}

// Cell returns the display text of r for this column. Missing values render
// as the placeholder.
func (c Column) Cell(r domain.Record) string {
	if c.Render != nil {
		if s := strings.TrimSpace(c.Render(r)); s != "" {
			return s
		}
		return domain.Placeholder
	}
	return r.Display(c.RecordPath())
}

// Sortable reports whether the column has a comparator.
func (c Column) Sortable() bool { return c.Less != nil }

func (c Column) width() int {
	if c.Width > 0 {
		return c.Width
	}
	return defaultColumnWidth
}

// LessText compares the values at path case-insensitively. Missing values
// sort last.
func LessText(path string) func(a, b domain.Record) bool {
	return func(a, b domain.Record) bool {
		as, bs := a.String(path), b.String(path)
		if as == "" || bs == "" {
			return as != "" && bs == ""
		}
		return strings.ToLower(as) < strings.ToLower(bs)
	}
}

// LessNumber compares the numeric values at path. Missing values sort last.
func LessNumber(path string) func(a, b domain.Record) bool {
	return func(a, b domain.Record) bool {
		an, aok := a.Decimal(path)
		bn, bok := b.Decimal(path)
		if !aok || !bok {
			return aok && !bok
		}
		return an.LessThan(bn)
	}
}

// Money renders the decimal at path with two fraction digits.
func Money(path string) func(r domain.Record) string {
	return func(r domain.Record) string {
		d, ok := r.Decimal(path)
		if !ok {
			return ""
		}
		return d.Round(2).StringFixed(2)
	}
}

// Sum adds the decimals at path across records, skipping missing values.
func Sum(records []domain.Record, path string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if d, ok := r.Decimal(path); ok {
			total = total.Add(d)
		}
	}
	return total
}
