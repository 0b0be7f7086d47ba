// Package filter collects per-screen filter selections, serialises them to
// query parameters and applies them to already-fetched records.
package filter

import (
	"strconv"
)

// Kind is the input control a field uses.
type Kind string

const (
	MultiSelect Kind = "multiselect"
	Select      Kind = "select"
	Range       Kind = "range"
	Text        Kind = "text"
)

// Option is one enumerated choice of a select field.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Field declares one filterable attribute of a screen.
type Field struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Kind    Kind     `yaml:"kind"`
	Options []Option `yaml:"options"`
	// Path into the record for in-memory matching. Defaults to ID.
	Path    string   `yaml:"path"`
	Min     float64  `yaml:"min"`
	Max     float64  `yaml:"max"`
	Default []string `yaml:"default"`
}

// RecordPath returns the record path the field matches against.
func (f Field) RecordPath() string {
	if f.Path != "" {
		return f.Path
	}
	return f.ID
}

// OptionLabel returns the label for value, or value itself.
func (f Field) OptionLabel(value string) string {
	for _, o := range f.Options {
		if o.Value == value && o.Label != "" {
			return o.Label
		}
	}
	return value
}

// Schema is the ordered list of a screen's filterable fields.
type Schema []Field

// Field looks up a field by id.
func (s Schema) Field(id string) (Field, bool) {
	for _, f := range s {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Zero returns values with every field unconstrained: empty lists, empty
// strings and 0..0 ranges.
func (s Schema) Zero() Values {
	v := make(Values, len(s))
	for _, f := range s {
		v[f.ID] = zeroFor(f)
	}
	return v
}

// Defaults returns the declared default values. Fields without a declared
// default are unconstrained.
func (s Schema) Defaults() Values {
	v := s.Zero()
	for _, f := range s {
		if len(f.Default) > 0 {
			v[f.ID] = normalizeField(f, f.Default)
		}
	}
	return v
}

func zeroFor(f Field) []string {
	if f.Kind == Range {
		return []string{"0", "0"}
	}
	return []string{}
}

// normalizeField brings raw strings into the canonical shape for f: ranges
// are always two formatted numbers, single-value kinds hold at most one
// non-empty string, multi-selects drop blanks and duplicates.
func normalizeField(f Field, raw []string) []string {
	switch f.Kind {
	case Range:
		out := []string{"0", "0"}
		for i := 0; i < 2 && i < len(raw); i++ {
			out[i] = formatNumber(parseNumber(raw[i]))
		}
		return out
	case Select, Text:
		for _, r := range raw {
			if r != "" {
				return []string{r}
			}
		}
		return []string{}
	default:
		out := []string{}
		seen := map[string]bool{}
		for _, r := range raw {
			if r == "" || seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
		return out
	}
}

func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
