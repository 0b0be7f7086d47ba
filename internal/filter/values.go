package filter

import (
	"strings"
)

// Values maps field id to its selected values. Multi-selects hold any
// number of entries, selects and text hold at most one, ranges hold exactly
// two (min, max) where 0 means unbounded.
type Values map[string][]string

// Get returns the first value for id, or "".
func (v Values) Get(id string) string {
	if vs := v[id]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Range returns the bounds stored for id.
func (v Values) Range(id string) (min, max float64) {
	vs := v[id]
	if len(vs) > 0 {
		min = parseNumber(vs[0])
	}
	if len(vs) > 1 {
		max = parseNumber(vs[1])
	}
	return min, max
}

// Has reports whether value is selected for id.
func (v Values) Has(id, value string) bool {
	for _, s := range v[id] {
		if s == value {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, vs := range v {
		out[k] = append([]string{}, vs...)
	}
	return out
}

// Active reports whether any field of schema is constrained.
func (v Values) Active(schema Schema) bool {
	for _, f := range schema {
		if constrained(f, v[f.ID]) {
			return true
		}
	}
	return false
}

// Summary renders the constrained fields as "id=a|b" pairs in schema order.
func (v Values) Summary(schema Schema) string {
	var parts []string
	for _, f := range schema {
		vs := v[f.ID]
		if !constrained(f, vs) {
			continue
		}
		if f.Kind == Range {
			parts = append(parts, f.ID+"="+vs[0]+".."+vs[1])
			continue
		}
		parts = append(parts, f.ID+"="+strings.Join(vs, "|"))
	}
	return strings.Join(parts, " ")
}

// constrained treats empty lists, blank strings and 0..0 ranges as falsy.
func constrained(f Field, vs []string) bool {
	if f.Kind == Range {
		for _, s := range vs {
			if parseNumber(s) != 0 {
				return true
			}
		}
		return false
	}
	for _, s := range vs {
		if s != "" {
			return true
		}
	}
	return false
}

// Normalize returns v reshaped to schema: unknown keys are dropped and
// missing fields are unconstrained.
func Normalize(schema Schema, v Values) Values {
	out := schema.Zero()
	for _, f := range schema {
		if raw, ok := v[f.ID]; ok {
			out[f.ID] = normalizeField(f, raw)
		}
	}
	return out
}
