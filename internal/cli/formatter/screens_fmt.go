package formatter

import (
	"strings"

	"github.com/alexanderramin/hrdesk/internal/catalog"
)

// FormatScreens lists screens with their endpoint and filter mode. Screens
// the role may not read are dimmed.
func FormatScreens(screens []catalog.Screen, readable func(catalog.Screen) bool) string {
	headers := []string{"Screen", "Title", "Endpoint", "Filters", "Aliases"}
	rows := make([][]string, 0, len(screens))
	for _, s := range screens {
		mode := s.FilterMode
		if mode == "" {
			mode = catalog.FilterServer
		}
		row := []string{s.Name, s.Title, s.Path, mode, strings.Join(s.Aliases, ", ")}
		if readable != nil && !readable(s) {
			for i := range row {
				row[i] = Dim(row[i])
			}
		} else {
			row[0] = StyleGreen.Render(row[0])
		}
		rows = append(rows, row)
	}
	return RenderTable(headers, rows)
}
