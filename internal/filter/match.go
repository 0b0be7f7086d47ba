package filter

import (
	"strings"

	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/tidwall/gjson"
)

// Apply returns the records that satisfy every constrained field of values.
// String comparison is case-insensitive exact equality. Unconstrained
// fields let every record through.
func Apply(schema Schema, values Values, records []domain.Record) []domain.Record {
	values = Normalize(schema, values)
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if Matches(schema, values, r) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r satisfies values.
func Matches(schema Schema, values Values, r domain.Record) bool {
	for _, f := range schema {
		vs := values[f.ID]
		if !constrained(f, vs) {
			continue
		}
		if !matchField(f, vs, r) {
			return false
		}
	}
	return true
}

func matchField(f Field, want []string, r domain.Record) bool {
	if f.Kind == Range {
		n, ok := r.Float(f.RecordPath())
		if !ok {
			return false
		}
		lo, hi := Values{f.ID: want}.Range(f.ID)
		if lo != 0 && n < lo {
			return false
		}
		if hi != 0 && n > hi {
			return false
		}
		return true
	}

	have := recordStrings(r, f.RecordPath())
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

// recordStrings returns the candidate values at path. Arrays contribute each
// element, using the element's name for objects.
func recordStrings(r domain.Record, path string) []string {
	res, ok := r.Lookup(path)
	if !ok {
		return nil
	}
	if !res.IsArray() {
		return []string{res.String()}
	}
	var out []string
	res.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			out = append(out, item.Get("name").String())
		} else {
			out = append(out, item.String())
		}
		return true
	})
	return out
}
