package api

import (
	"net/url"
	"strconv"

	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/go-playground/form"
	"github.com/tidwall/gjson"
)

// ListQuery carries the conventional listing parameters. Page is zero-based
// on the client and sent one-based, which is what the backend expects.
type ListQuery struct {
	Page   int    `form:"-"`
	Limit  int    `form:"limit,omitempty"`
	Search string `form:"search,omitempty"`

	// Filters holds screen-specific query keys, already serialised.
	Filters url.Values `form:"-"`
}

var (
	queryEncoder = form.NewEncoder()
	queryDecoder = form.NewDecoder()
)

// Values encodes q as query parameters.
func (q ListQuery) Values() (url.Values, error) {
	values, err := queryEncoder.Encode(&q)
	if err != nil {
		return nil, err
	}
	values.Set("page", strconv.Itoa(q.Page+1))
	for key, vs := range q.Filters {
		if key == "page" || key == "limit" || key == "search" {
			continue
		}
		for _, v := range vs {
			values.Add(key, v)
		}
	}
	return values, nil
}

// ParseListQuery is the inverse of Values. Keys other than page, limit and
// search end up in Filters.
func ParseListQuery(values url.Values) (ListQuery, error) {
	var q ListQuery
	if err := queryDecoder.Decode(&q, values); err != nil {
		return q, err
	}
	if p := values.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			q.Page = n - 1
		}
	}
	for key, vs := range values {
		if key == "page" || key == "limit" || key == "search" {
			continue
		}
		if q.Filters == nil {
			q.Filters = url.Values{}
		}
		q.Filters[key] = append([]string(nil), vs...)
	}
	return q, nil
}

// Envelope paths tried, in order, for the item list and the total count.
var (
	itemPaths  = []string{"data.items", "data.rows", "data.data", "data", "items", "results", "rows"}
	totalPaths = []string{"total", "count", "totalCount", "meta.total", "data.total", "data.count", "pagination.total", "meta.totalItems"}
)

// DecodePage reads a listing response. The backend is not consistent about
// envelopes, so the first matching path wins. When no total is reported the
// number of items is used and TotalKnown stays false.
func DecodePage(body []byte, q ListQuery) (domain.Page, error) {
	if !gjson.ValidBytes(body) {
		return domain.Page{}, &Error{Kind: KindUnknown, Message: "invalid json in listing response"}
	}
	doc := gjson.ParseBytes(body)

	var list gjson.Result
	if doc.IsArray() {
		list = doc
	} else {
		for _, path := range itemPaths {
			if r := doc.Get(path); r.IsArray() {
				list = r
				break
			}
		}
	}

	page := domain.Page{Page: q.Page, Limit: q.Limit}
	for _, item := range list.Array() {
		if item.IsObject() {
			page.Items = append(page.Items, domain.NewRecord([]byte(item.Raw)))
		}
	}

	page.Total = len(page.Items)
	if !doc.IsArray() {
		for _, path := range totalPaths {
			if r := doc.Get(path); r.Type == gjson.Number {
				page.Total = int(r.Int())
				page.TotalKnown = true
				break
			}
		}
	}
	return page, nil
}

// DecodeRecord reads a single-entity response, unwrapping a "data" envelope
// when present.
func DecodeRecord(body []byte) (domain.Record, error) {
	if !gjson.ValidBytes(body) {
		return domain.Record{}, &Error{Kind: KindUnknown, Message: "invalid json in record response"}
	}
	doc := gjson.ParseBytes(body)
	if d := doc.Get("data"); d.IsObject() {
		return domain.NewRecord([]byte(d.Raw)), nil
	}
	return domain.NewRecord(body), nil
}
