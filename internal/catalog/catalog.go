// Package catalog declares the listing screens: endpoint, columns, filter
// schema and the local storage keys each screen uses.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/alexanderramin/hrdesk/internal/table"
	"github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed screens.yaml
var embedded []byte

// ErrUnknownScreen is returned when a name matches no screen.
var ErrUnknownScreen = errors.New("unknown screen")

// Filter application modes.
const (
	FilterServer = "server"
	FilterClient = "client"
)

// ColumnSpec is the YAML form of a table column.
type ColumnSpec struct {
	ID     string `yaml:"id" validate:"required"`
	Header string `yaml:"header"`
	Path   string `yaml:"path"`
	Width  int    `yaml:"width" validate:"gte=0"`
	Sort   string `yaml:"sort" validate:"omitempty,oneof=text number"`
	Format string `yaml:"format" validate:"omitempty,oneof=money"`
}

// Screen is one listing screen.
type Screen struct {
	Name       string        `yaml:"name" validate:"required"`
	Title      string        `yaml:"title"`
	Path       string        `yaml:"path" validate:"required,startswith=/"`
	Aliases    []string      `yaml:"aliases"`
	Resource   string        `yaml:"resource"`
	FilterMode string        `yaml:"filter_mode" validate:"omitempty,oneof=server client"`
	StorageKey string        `yaml:"storage_key"`
	FormKey    string        `yaml:"form_key"`
	Approvals  bool          `yaml:"approvals"`
	StatusPath string        `yaml:"status_path"`
	AmountPath string        `yaml:"amount_path"`
	Columns    []ColumnSpec  `yaml:"columns" validate:"required,min=1,dive"`
	Filters    filter.Schema `yaml:"filters"`
}

// ServerFiltering reports whether applied filters are sent to the backend.
func (s Screen) ServerFiltering() bool { return s.FilterMode != FilterClient }

// AuthzResource is the object name used for permission checks.
func (s Screen) AuthzResource() string {
	if s.Resource != "" {
		return s.Resource
	}
	return s.Name
}

// ItemPath returns the endpoint path of one record.
func (s Screen) ItemPath(id string) string {
	return strings.TrimRight(s.Path, "/") + "/" + id
}

// TableColumns converts the column specs to table columns.
func (s Screen) TableColumns() []table.Column {
	out := make([]table.Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		col := table.Column{ID: c.ID, Header: c.Header, Path: c.Path, Width: c.Width}
		if col.Header == "" {
			col.Header = c.ID
		}
		path := col.RecordPath()
		switch c.Sort {
		case "text":
			col.Less = table.LessText(path)
		case "number":
			col.Less = table.LessNumber(path)
		}
		if c.Format == "money" {
			col.Render = table.Money(path)
		}
		out = append(out, col)
	}
	return out
}

type document struct {
	Screens []Screen `yaml:"screens" validate:"dive"`
}

// Catalog is the ordered set of screens.
type Catalog struct {
	screens []Screen
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return parse(embedded)
}

// LoadFile parses the embedded catalog and overlays the screens declared in
// path. A screen with an existing name replaces it; new names are appended.
// An empty path yields the embedded catalog.
func LoadFile(path string) (*Catalog, error) {
	base, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading screens file: %w", err)
	}
	override, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("screens file %s: %w", path, err)
	}
	for _, s := range override.screens {
		replaced := false
		for i := range base.screens {
			if base.screens[i].Name == s.Name {
				base.screens[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			base.screens = append(base.screens, s)
		}
	}
	return base, nil
}

var validate = validator.New()

func parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	seen := map[string]bool{}
	for i, s := range doc.Screens {
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate screen %q", s.Name)
		}
		seen[s.Name] = true
		if s.FilterMode == "" {
			doc.Screens[i].FilterMode = FilterServer
		}
		if err := checkFilters(s); err != nil {
			return nil, err
		}
	}
	return &Catalog{screens: doc.Screens}, nil
}

func checkFilters(s Screen) error {
	for _, f := range s.Filters {
		switch f.Kind {
		case filter.MultiSelect, filter.Select:
			if len(f.Options) == 0 {
				return fmt.Errorf("screen %s: filter %s has no options", s.Name, f.ID)
			}
		case filter.Range, filter.Text:
		default:
			return fmt.Errorf("screen %s: filter %s: unknown kind %q", s.Name, f.ID, f.Kind)
		}
		if f.ID == "" {
			return fmt.Errorf("screen %s: filter without id", s.Name)
		}
	}
	return nil
}

// Screens returns all screens in declaration order.
func (c *Catalog) Screens() []Screen {
	return append([]Screen(nil), c.screens...)
}

// Lookup finds a screen by name or alias, ignoring case.
func (c *Catalog) Lookup(name string) (Screen, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range c.screens {
		if strings.ToLower(s.Name) == name {
			return s, true
		}
		for _, a := range s.Aliases {
			if strings.ToLower(a) == name {
				return s, true
			}
		}
	}
	return Screen{}, false
}

// Find ranks screens whose name, alias or title fuzzily contains query.
// An empty query returns every screen.
func (c *Catalog) Find(query string) []Screen {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Screens()
	}

	best := map[int]int{}
	for i, s := range c.screens {
		terms := append([]string{s.Name, s.Title}, s.Aliases...)
		for _, r := range fuzzy.RankFindFold(query, terms) {
			if d, ok := best[i]; !ok || r.Distance < d {
				best[i] = r.Distance
			}
		}
	}

	idx := make([]int, 0, len(best))
	for i := range best {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		if best[idx[a]] != best[idx[b]] {
			return best[idx[a]] < best[idx[b]]
		}
		return idx[a] < idx[b]
	})

	out := make([]Screen, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.screens[i])
	}
	return out
}

// Resolve returns the screen named name, falling back to a unique fuzzy
// match.
func (c *Catalog) Resolve(name string) (Screen, error) {
	if s, ok := c.Lookup(name); ok {
		return s, nil
	}
	matches := c.Find(name)
	switch len(matches) {
	case 0:
		return Screen{}, fmt.Errorf("%q: %w", name, ErrUnknownScreen)
	case 1:
		return matches[0], nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Name)
	}
	return Screen{}, fmt.Errorf("%q is ambiguous (%s): %w", name, strings.Join(names, ", "), ErrUnknownScreen)
}
