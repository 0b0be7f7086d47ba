package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Placeholder is rendered for fields the server omitted or sent as null.
const Placeholder = "N/A"

// Record is a server-owned entity as returned by the API. It keeps the raw
// JSON object and reads fields by gjson path, so nested sub-records such as
// a branch's bucket and its position categories are reachable without a
// Go struct per entity.
type Record struct {
	raw []byte
}

// NewRecord wraps a raw JSON object. Non-object input yields an empty record.
func NewRecord(raw []byte) Record {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return Record{raw: []byte("{}")}
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Record{raw: cp}
}

// RecordFromMap builds a record from a Go map. Used by tests and fixtures.
func RecordFromMap(m map[string]any) Record {
	data, err := json.Marshal(m)
	if err != nil {
		return Record{raw: []byte("{}")}
	}
	return Record{raw: data}
}

// Raw returns the record's JSON bytes.
func (r Record) Raw() []byte {
	if len(r.raw) == 0 {
		return []byte("{}")
	}
	return r.raw
}

// MarshalJSON emits the raw object unchanged.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.Raw(), nil
}

// UnmarshalJSON keeps the object verbatim.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("record: invalid json")
	}
	*r = NewRecord(data)
	return nil
}

// Lookup returns the value at path and whether it is present and non-null.
func (r Record) Lookup(path string) (gjson.Result, bool) {
	res := gjson.GetBytes(r.Raw(), path)
	if !res.Exists() || res.Type == gjson.Null {
		return res, false
	}
	return res, true
}

// Has reports whether path resolves to a non-null value.
func (r Record) Has(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// String returns the value at path as text, or "" when absent.
func (r Record) String(path string) string {
	res, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	if res.IsArray() {
		parts := make([]string, 0, len(res.Array()))
		for _, item := range res.Array() {
			if item.IsObject() {
				if name := item.Get("name"); name.Exists() {
					parts = append(parts, name.String())
					continue
				}
			}
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ", ")
	}
	return res.String()
}

// Display returns the value at path for rendering, substituting
// Placeholder for missing, null or blank values.
func (r Record) Display(path string) string {
	s := strings.TrimSpace(r.String(path))
	if s == "" {
		return Placeholder
	}
	return s
}

// Float returns the numeric value at path. Numeric strings are accepted.
func (r Record) Float(path string) (float64, bool) {
	res, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	switch res.Type {
	case gjson.Number:
		return res.Float(), true
	case gjson.String:
		d, err := decimal.NewFromString(strings.TrimSpace(res.Str))
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	}
	return 0, false
}

// Decimal returns the value at path as an exact decimal. Budget amounts are
// sent either as JSON numbers or as strings depending on the endpoint.
func (r Record) Decimal(path string) (decimal.Decimal, bool) {
	res, ok := r.Lookup(path)
	if !ok {
		return decimal.Zero, false
	}
	var text string
	switch res.Type {
	case gjson.Number:
		text = res.Raw
	case gjson.String:
		text = strings.TrimSpace(res.Str)
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ID returns the record identifier, accepting the id spellings the backend
// uses across services.
func (r Record) ID() string {
	for _, path := range []string{"id", "_id", "uuid"} {
		if s := r.String(path); s != "" {
			return s
		}
	}
	return ""
}

// Fields returns the top-level keys in document order.
func (r Record) Fields() []string {
	var keys []string
	gjson.ParseBytes(r.Raw()).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// Scalars returns the top-level scalar fields (strings, numbers, bools) in
// document order. Objects and arrays are skipped.
func (r Record) Scalars() []Field {
	var out []Field
	gjson.ParseBytes(r.Raw()).ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String, gjson.Number, gjson.True, gjson.False:
			out = append(out, Field{Key: key.String(), Value: value.String(), Kind: value.Type})
		}
		return true
	})
	return out
}

// Field is one scalar top-level attribute of a record.
type Field struct {
	Key   string
	Value string
	Kind  gjson.Type
}

// Page is one page of records returned by a listing endpoint.
type Page struct {
	Items []Record
	Total int
	Page  int
	Limit int

	// TotalKnown is false when the server sent no count. Total is then the
	// number of items on this page.
	TotalKnown bool
}

// Full reports whether the page holds Limit items.
func (p Page) Full() bool {
	return p.Limit > 0 && len(p.Items) >= p.Limit
}

// EstimatedTotal returns Total when the server reported it. Otherwise it
// counts the items up to and including this page, plus one when the page
// is full so that a following page stays reachable.
func (p Page) EstimatedTotal() int {
	if p.TotalKnown {
		return p.Total
	}
	n := len(p.Items)
	if p.Limit > 0 {
		n += p.Page * p.Limit
	}
	if p.Full() {
		n++
	}
	return n
}

// TotalPages returns the number of pages implied by EstimatedTotal and Limit.
func (p Page) TotalPages() int {
	total := p.EstimatedTotal()
	if p.Limit <= 0 || total <= 0 {
		return 1
	}
	n := total / p.Limit
	if total%p.Limit > 0 {
		n++
	}
	return n
}
