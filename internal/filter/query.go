package filter

import (
	"net/url"
)

// Range bounds are sent as <id>_min and <id>_max.
const (
	minSuffix = "_min"
	maxSuffix = "_max"
)

// ToQuery serialises values as query parameters. Multi-selects become
// repeated keys. Unconstrained fields are omitted.
func ToQuery(schema Schema, values Values) url.Values {
	q := url.Values{}
	for _, f := range schema {
		vs := normalizeField(f, values[f.ID])
		switch f.Kind {
		case Range:
			if vs[0] != "0" {
				q.Set(f.ID+minSuffix, vs[0])
			}
			if vs[1] != "0" {
				q.Set(f.ID+maxSuffix, vs[1])
			}
		default:
			for _, s := range vs {
				q.Add(f.ID, s)
			}
		}
	}
	return q
}

// FromQuery rebuilds values from query parameters produced by ToQuery.
// Keys that do not belong to schema are ignored.
func FromQuery(schema Schema, q url.Values) Values {
	v := schema.Zero()
	for _, f := range schema {
		if f.Kind == Range {
			v[f.ID] = normalizeField(f, []string{q.Get(f.ID + minSuffix), q.Get(f.ID + maxSuffix)})
			continue
		}
		v[f.ID] = normalizeField(f, q[f.ID])
	}
	return v
}
