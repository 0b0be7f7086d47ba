package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// RecordedRequest is one call received by FakeAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeAPI is an in-memory HR backend. Seeded collections support list with
// page/limit/search/filter keys, get, create, put, merge-patch and delete.
type FakeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	collections map[string][]map[string]any
	requests    []RecordedRequest
	failures    map[string]failure
	delays      map[string]time.Duration
	nextID      int
	decisions   []Decision
	bare        map[string]bool

	// Password accepted by POST /auth/login.
	Password string
	// AccessToken returned by a successful login.
	AccessToken string
}

// Decision is a recorded approval action.
type Decision struct {
	ID      string
	Action  string
	Comment string
}

type failure struct {
	status int
	body   string
}

// NewFakeAPI starts a fake backend closed with the test.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		collections: map[string][]map[string]any{},
		failures:    map[string]failure{},
		delays:      map[string]time.Duration{},
		bare:        map[string]bool{},
		Password:    "secret",
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server base URL.
func (f *FakeAPI) URL() string { return f.Server.URL }

// Seed appends items to the collection at path.
func (f *FakeAPI) Seed(path string, items ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[path] = append(f.collections[path], items...)
}

// Items returns a copy of the collection at path.
func (f *FakeAPI) Items(path string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.collections[path]...)
}

// Fail makes every request to path answer status with body.
func (f *FakeAPI) Fail(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = failure{status: status, body: body}
}

// Delay holds requests to path for d, or until the client goes away.
func (f *FakeAPI) Delay(path string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[path] = d
}

// OmitTotals makes listings of path answer a bare JSON array, still paged,
// with no count.
func (f *FakeAPI) OmitTotals(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bare[path] = true
}

// Requests returns the recorded requests.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// Hits counts requests with method to path.
func (f *FakeAPI) Hits(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request.
func (f *FakeAPI) LastRequest() RecordedRequest {
	reqs := f.Requests()
	if len(reqs) == 0 {
		return RecordedRequest{}
	}
	return reqs[len(reqs)-1]
}

// Decisions returns the recorded approval decisions.
func (f *FakeAPI) Decisions() []Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Decision(nil), f.decisions...)
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone(), Body: body,
	})
	fail, failing := f.failures[r.URL.Path]
	delay := f.delays[r.URL.Path]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if failing {
		w.WriteHeader(fail.status)
		_, _ = io.WriteString(w, fail.body)
		return
	}

	switch {
	case r.URL.Path == "/auth/login" && r.Method == http.MethodPost:
		f.login(w, body)
	case strings.HasPrefix(r.URL.Path, "/approval-service/approvals/") && r.Method == http.MethodPost:
		f.decide(w, r.URL.Path, body)
	default:
		f.resource(w, r, body)
	}
}

func (f *FakeAPI) login(w http.ResponseWriter, body []byte) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(body, &req)
	if req.Password != f.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"accessToken":  f.AccessToken,
		"refreshToken": "refresh-" + req.Email,
		"user":         map[string]any{"id": "u-" + req.Email},
	}})
}

func (f *FakeAPI) decide(w http.ResponseWriter, path string, body []byte) {
	parts := strings.Split(strings.TrimPrefix(path, "/approval-service/approvals/"), "/")
	if len(parts) != 2 || (parts[1] != "approve" && parts[1] != "reject") {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no such route"})
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	_ = json.Unmarshal(body, &req)
	f.mu.Lock()
	f.decisions = append(f.decisions, Decision{ID: parts[0], Action: parts[1], Comment: req.Comment})
	f.mu.Unlock()

	status := "approved"
	if parts[1] == "reject" {
		status = "rejected"
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": parts[0], "status": status}})
}

func (f *FakeAPI) resource(w http.ResponseWriter, r *http.Request, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimRight(r.URL.Path, "/")
	if _, ok := f.collections[path]; ok {
		switch r.Method {
		case http.MethodGet:
			f.list(w, path, r.URL.Query())
		case http.MethodPost:
			var item map[string]any
			if err := json.Unmarshal(body, &item); err != nil || item == nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"message": "body must be a JSON object"})
				return
			}
			f.nextID++
			if _, ok := item["id"]; !ok {
				item["id"] = fmt.Sprintf("new-%d", f.nextID)
			}
			f.collections[path] = append(f.collections[path], item)
			writeJSON(w, http.StatusCreated, map[string]any{"data": item})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "method not allowed"})
		}
		return
	}

	i := strings.LastIndex(path, "/")
	coll, id := path[:i], path[i+1:]
	items, ok := f.collections[coll]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no such resource"})
		return
	}
	idx := -1
	for j, item := range items {
		if fmt.Sprint(item["id"]) == id {
			idx = j
			break
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "record " + id + " not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"data": items[idx]})
	case http.MethodPut:
		var item map[string]any
		if err := json.Unmarshal(body, &item); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
			return
		}
		item["id"] = items[idx]["id"]
		items[idx] = item
		writeJSON(w, http.StatusOK, map[string]any{"data": item})
	case http.MethodPatch:
		current, _ := json.Marshal(items[idx])
		merged, err := jsonpatch.MergePatch(current, body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid merge patch"})
			return
		}
		var item map[string]any
		_ = json.Unmarshal(merged, &item)
		items[idx] = item
		writeJSON(w, http.StatusOK, map[string]any{"data": item})
	case http.MethodDelete:
		f.collections[coll] = append(items[:idx:idx], items[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "method not allowed"})
	}
}

// list answers {"data": [...], "total": n} after search, filters and paging.
func (f *FakeAPI) list(w http.ResponseWriter, path string, q url.Values) {
	var matched []map[string]any
	for _, item := range f.collections[path] {
		if matchesSearch(item, q.Get("search")) && matchesFilters(item, q) {
			matched = append(matched, item)
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))

	if f.bare[path] {
		writeJSON(w, http.StatusOK, append([]map[string]any{}, matched[start:end]...))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  append([]map[string]any{}, matched[start:end]...),
		"total": len(matched),
		"page":  page,
		"limit": limit,
	})
}

func matchesSearch(item map[string]any, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := item[k].(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func matchesFilters(item map[string]any, q url.Values) bool {
	for key, want := range q {
		switch key {
		case "page", "limit", "search":
			continue
		}
		if field, ok := strings.CutSuffix(key, "_min"); ok {
			if n, ok := number(item[field]); !ok || n < atof(want[0]) {
				return false
			}
			continue
		}
		if field, ok := strings.CutSuffix(key, "_max"); ok {
			if n, ok := number(item[field]); !ok || n > atof(want[0]) {
				return false
			}
			continue
		}
		have := fmt.Sprint(item[key])
		hit := false
		for _, v := range want {
			if strings.EqualFold(have, v) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
