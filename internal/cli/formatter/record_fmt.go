package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/tidwall/gjson"
)

// FormatListing renders one page of a screen as a table with a paging
// footer.
func FormatListing(screen catalog.Screen, page domain.Page) string {
	cols := screen.TableColumns()
	headers := make([]string, 0, len(cols)+1)
	headers = append(headers, "ID")
	for _, c := range cols {
		headers = append(headers, c.Header)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, rec := range page.Items {
		row := make([]string, 0, len(cols)+1)
		row = append(row, StyleDim.Render(displayOr(rec.ID())))
		for _, c := range cols {
			cell := c.Cell(rec)
			if screen.StatusPath != "" && c.RecordPath() == screen.StatusPath {
				cell = StatusStyle(cell).Render(cell)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString(Dim("No records found.") + "\n")
	} else {
		b.WriteString(RenderTable(headers, rows))
	}
	count := Plural(page.Total, "record")
	if !page.TotalKnown && page.Full() {
		count = fmt.Sprintf("%d+ records", page.EstimatedTotal()-1)
	}
	b.WriteString(Dim(fmt.Sprintf("page %d of %d · %s", page.Page+1, page.TotalPages(), count)))
	b.WriteString("\n")
	return b.String()
}

// FormatRecord renders every top-level field of rec. Nested objects and
// arrays are shown as compact JSON.
func FormatRecord(title string, rec domain.Record) string {
	keys := rec.Fields()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(StyleBlue.Render(PadRight(k, width)))
		b.WriteString("  ")
		b.WriteString(fieldValue(rec, k))
		b.WriteString("\n")
	}
	if len(keys) == 0 {
		b.WriteString(Dim("(empty record)"))
	}
	return RenderBox(title, strings.TrimRight(b.String(), "\n"))
}

func fieldValue(rec domain.Record, key string) string {
	res, ok := rec.Lookup(escapePath(key))
	if !ok {
		return Dim(domain.Placeholder)
	}
	switch {
	case res.IsObject(), res.IsArray():
		return Truncate(compact(res), 80)
	case res.Type == gjson.String && strings.TrimSpace(res.Str) == "":
		return Dim(domain.Placeholder)
	}
	return res.String()
}

func compact(res gjson.Result) string {
	return strings.Join(strings.Fields(res.Raw), " ")
}

// escapePath quotes gjson path syntax in a top-level key.
func escapePath(key string) string {
	return strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`).Replace(key)
}

func displayOr(s string) string {
	if s == "" {
		return domain.Placeholder
	}
	return s
}
