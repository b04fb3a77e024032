// Package testutil provides a configurable mock of the character API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/character-browser/pkg/model"
)

// MockResponse defines a canned answer for one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI serves /api/character/?page=n and /api/character/{ids} from an
// in-memory roster. Custom handlers override individual paths.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	roster   []model.Character
	perPage  int
	pageHook func(page int)

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
	PageRequests      map[int]int
}

// NewMockAPI creates a mock API serving total characters, perPage per page.
func NewMockAPI(total, perPage int) *MockAPI {
	if perPage <= 0 {
		perPage = 20
	}
	mock := &MockAPI{
		handlers:     make(map[string]http.HandlerFunc),
		roster:       Characters(total),
		perPage:      perPage,
		PageRequests: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.ConditionalCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the server root.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// BaseURL returns the API base the client should be configured with.
func (m *MockAPI) BaseURL() string {
	return m.server.URL + "/api"
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
	m.PageRequests = make(map[int]int)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// OnPage registers a hook invoked before a page is served. Tests use it to
// delay or block individual pages.
func (m *MockAPI) OnPage(hook func(page int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageHook = hook
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockAPI) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// GetPageRequests returns how often a page was requested.
func (m *MockAPI) GetPageRequests(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PageRequests[page]
}

// Pages returns the number of pages of the roster.
func (m *MockAPI) Pages() int {
	return (len(m.roster) + m.perPage - 1) / m.perPage
}

func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	rest, ok := strings.CutPrefix(r.URL.Path, "/api/character/")
	if !ok {
		writeError(w, http.StatusNotFound, "There is nothing here")
		return
	}
	if rest == "" {
		m.servePage(w, r)
		return
	}
	m.serveIDs(w, rest)
}

func (m *MockAPI) servePage(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeError(w, http.StatusNotFound, "There is nothing here")
			return
		}
		page = n
	}

	m.mu.Lock()
	m.PageRequests[page]++
	hook := m.pageHook
	m.mu.Unlock()
	if hook != nil {
		hook(page)
	}

	pages := m.Pages()
	if page > pages {
		writeError(w, http.StatusNotFound, "There is nothing here")
		return
	}

	etag := fmt.Sprintf(`W/"page-%d"`, page)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	start := (page - 1) * m.perPage
	end := min(start+m.perPage, len(m.roster))
	info := model.PageInfo{Count: len(m.roster), Pages: pages}
	if page < pages {
		info.Next = fmt.Sprintf("%s/api/character/?page=%d", m.server.URL, page+1)
	}
	if page > 1 {
		info.Prev = fmt.Sprintf("%s/api/character/?page=%d", m.server.URL, page-1)
	}

	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, model.PageResponse{Info: info, Results: m.roster[start:end]})
}

func (m *MockAPI) serveIDs(w http.ResponseWriter, list string) {
	byID := make(map[int]model.Character, len(m.roster))
	for _, c := range m.roster {
		byID[c.ID] = c
	}

	parts := strings.Split(list, ",")
	var out []model.Character
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Hey! you must provide an id")
			return
		}
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}

	if len(parts) == 1 {
		if len(out) == 0 {
			writeError(w, http.StatusNotFound, "Character not found")
			return
		}
		writeJSON(w, http.StatusOK, out[0])
		return
	}
	if out == nil {
		out = []model.Character{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Characters builds a deterministic roster with ids 1..n.
func Characters(n int) []model.Character {
	statuses := []string{"Alive", "Dead", "unknown"}
	out := make([]model.Character, n)
	for i := range out {
		id := i + 1
		out[i] = model.Character{
			ID:      id,
			Name:    fmt.Sprintf("Character %d", id),
			Status:  statuses[i%len(statuses)],
			Species: "Human",
			Gender:  "Female",
			Origin:  model.Place{Name: "Earth (C-137)"},
			Image:   fmt.Sprintf("https://example.test/avatar/%d.jpeg", id),
			Episode: make([]string, id%4+1),
		}
	}
	return out
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"Too many requests"}`,
		Headers: map[string]string{
			"Retry-After":  strconv.Itoa(retryAfter),
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
