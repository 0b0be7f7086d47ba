package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListQuery_Values(t *testing.T) {
	q := ListQuery{
		Page:   2,
		Limit:  10,
		Search: "ana",
		Filters: url.Values{
			"department": {"IT", "HR"},
			"page":       {"99"},
		},
	}
	v, err := q.Values()
	require.NoError(t, err)

	assert.Equal(t, "3", v.Get("page"), "page is sent one-based")
	assert.Equal(t, "10", v.Get("limit"))
	assert.Equal(t, "ana", v.Get("search"))
	assert.Equal(t, []string{"IT", "HR"}, v["department"])
}

func TestListQuery_Values_OmitsEmptySearch(t *testing.T) {
	v, err := ListQuery{Limit: 5}.Values()
	require.NoError(t, err)

	_, ok := v["search"]
	assert.False(t, ok)
	assert.Equal(t, "1", v.Get("page"))
}

func TestParseListQuery_RoundTrip(t *testing.T) {
	in := ListQuery{
		Page:    4,
		Limit:   25,
		Search:  "recruiter",
		Filters: url.Values{"status": {"open"}, "salary_min": {"1000"}},
	}
	v, err := in.Values()
	require.NoError(t, err)

	out, err := ParseListQuery(v)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodePage_Envelopes(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantIDs   []string
		wantTotal int
		wantKnown bool
	}{
		{"bare array", `[{"id":"1"},{"id":"2"}]`, []string{"1", "2"}, 2, false},
		{"data array with total", `{"data":[{"id":"a"}],"total":40}`, []string{"a"}, 40, true},
		{"nested items", `{"data":{"items":[{"id":"x"},{"id":"y"}],"total":7}}`, []string{"x", "y"}, 7, true},
		{"meta total", `{"results":[{"_id":"m"}],"meta":{"totalItems":12}}`, []string{"m"}, 12, true},
		{"no list", `{"message":"ok"}`, nil, 0, false},
		{"non-object items skipped", `{"data":[1,{"id":"k"},"s"]}`, []string{"k"}, 1, false},
		{"data array without total", `{"data":[{"id":"a"},{"id":"b"}]}`, []string{"a", "b"}, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := DecodePage([]byte(tc.body), ListQuery{Page: 1, Limit: 5})
			require.NoError(t, err)

			var ids []string
			for _, r := range page.Items {
				ids = append(ids, r.ID())
			}
			assert.Equal(t, tc.wantIDs, ids)
			assert.Equal(t, tc.wantTotal, page.Total)
			assert.Equal(t, tc.wantKnown, page.TotalKnown)
			assert.Equal(t, 1, page.Page)
			assert.Equal(t, 5, page.Limit)
		})
	}
}

func TestDecodePage_InvalidJSON(t *testing.T) {
	_, err := DecodePage([]byte(`{not json`), ListQuery{})
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestDecodeRecord_UnwrapsData(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"data":{"id":"v-7","title":"Engineer"}}`))
	require.NoError(t, err)
	assert.Equal(t, "v-7", rec.ID())
	assert.Equal(t, "Engineer", rec.String("title"))

	rec, err = DecodeRecord([]byte(`{"id":"plain"}`))
	require.NoError(t, err)
	assert.Equal(t, "plain", rec.ID())
}
