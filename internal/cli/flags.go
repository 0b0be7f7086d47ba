package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/spf13/pflag"
)

// assignments is a repeatable key=value flag.
type assignments []string

var _ pflag.Value = (*assignments)(nil)

func (a *assignments) String() string { return strings.Join(*a, ",") }
func (a *assignments) Type() string   { return "key=value" }

func (a *assignments) Set(s string) error {
	if !strings.Contains(s, "=") && !strings.HasPrefix(s, "-") {
		return fmt.Errorf("%q: want key=value", s)
	}
	*a = append(*a, s)
	return nil
}

// pairs splits the assignments into a map; later keys win.
func (a assignments) pairs() map[string][]string {
	out := map[string][]string{}
	for _, s := range a {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		out[k] = append(out[k], strings.TrimSpace(v))
	}
	return out
}

// filterValues converts --filter assignments to values for screen's schema.
// Range fields accept "min..max"; multi-select fields accept repeats or
// comma-separated lists.
func filterValues(screen catalog.Screen, a assignments) (filter.Values, error) {
	values := screen.Filters.Defaults()
	for id, raw := range a.pairs() {
		f, ok := screen.Filters.Field(id)
		if !ok {
			return nil, fmt.Errorf("screen %s has no filter %q", screen.Name, id)
		}
		switch f.Kind {
		case filter.Range:
			lo, hi, ok := strings.Cut(raw[len(raw)-1], "..")
			if !ok {
				return nil, fmt.Errorf("filter %s: want min..max", id)
			}
			values[id] = []string{strings.TrimSpace(lo), strings.TrimSpace(hi)}
		case filter.MultiSelect:
			var list []string
			for _, r := range raw {
				for _, part := range strings.Split(r, ",") {
					if part = strings.TrimSpace(part); part != "" {
						list = append(list, part)
					}
				}
			}
			values[id] = list
		default:
			values[id] = []string{raw[len(raw)-1]}
		}
	}
	return filter.Normalize(screen.Filters, values), nil
}
