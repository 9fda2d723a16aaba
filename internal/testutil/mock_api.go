// Package testutil provides testing utilities for linkpager.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockPage defines how the mock API answers one page.
type MockPage struct {
	StatusCode int
	Body       string
	Headers    map[string]string

	// Links maps relation name to a target path (e.g. "/items?page=2").
	// Targets are emitted as absolute URLs unless RelativeLinks is set.
	Links map[string]string

	// RelativeLinks emits link targets exactly as given.
	RelativeLinks bool

	// Delay is applied before the response is written.
	Delay time.Duration

	// Drop closes the connection without a response.
	Drop bool
}

// MockAPI is a configurable Link-paginated API for testing.
type MockAPI struct {
	server *httptest.Server
	mu     sync.RWMutex
	pages  map[string]MockPage
	counts map[string]int

	lastRequestHeader http.Header
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		pages:  make(map[string]MockPage),
		counts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// PageURL returns the absolute URL of path on the mock server.
func (m *MockAPI) PageURL(path string) string {
	return m.server.URL + path
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
	m.lastRequestHeader = nil
}

// SetPage configures the response for a path including its query (e.g. "/items?page=2").
func (m *MockAPI) SetPage(path string, page MockPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[path] = page
}

// SetChain configures pages 1..n of path as a chain linked with next/prev
// (and first/last). Page i answers with body `[{"page":i}]`.
func (m *MockAPI) SetChain(path string, n int) {
	for i := 1; i <= n; i++ {
		links := map[string]string{
			"first": ChainPath(path, 1),
			"last":  ChainPath(path, n),
		}
		if i < n {
			links["next"] = ChainPath(path, i+1)
		}
		if i > 1 {
			links["prev"] = ChainPath(path, i-1)
		}
		m.SetPage(ChainPath(path, i), NewPage(fmt.Sprintf(`[{"page":%d}]`, i), links))
	}
}

// UpdatePage mutates an existing page configuration.
func (m *MockAPI) UpdatePage(path string, fn func(*MockPage)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.pages[path]
	fn(&page)
	m.pages[path] = page
}

// ChainPath returns the path of page i of a chain.
func ChainPath(path string, i int) string {
	return fmt.Sprintf("%s?page=%d", path, i)
}

// RequestCount returns the number of requests made for path.
func (m *MockAPI) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// TotalRequests returns the number of requests made to the server.
func (m *MockAPI) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.counts {
		total += n
	}
	return total
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()

	m.mu.Lock()
	m.counts[key]++
	m.lastRequestHeader = r.Header.Clone()
	page, exists := m.pages[key]
	m.mu.Unlock()

	if !exists {
		http.NotFound(w, r)
		return
	}

	if page.Delay > 0 {
		time.Sleep(page.Delay)
	}

	if page.Drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
				return
			}
		}
		panic(http.ErrAbortHandler)
	}

	for key, value := range page.Headers {
		w.Header().Set(key, value)
	}
	if link := m.linkHeader(page); link != "" {
		w.Header().Set("Link", link)
	}

	status := page.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if page.Body != "" {
		w.Write([]byte(page.Body))
	}
}

// linkHeader renders page.Links in a stable order.
func (m *MockAPI) linkHeader(page MockPage) string {
	rels := make([]string, 0, len(page.Links))
	for rel := range page.Links {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	parts := make([]string, 0, len(rels))
	for _, rel := range rels {
		target := page.Links[rel]
		if !page.RelativeLinks {
			target = m.server.URL + target
		}
		parts = append(parts, fmt.Sprintf(`<%s>; rel="%s"`, target, rel))
	}
	return strings.Join(parts, ", ")
}

// NewPage creates a standard 200 OK JSON page.
func NewPage(body string, links map[string]string) MockPage {
	return MockPage{
		StatusCode: http.StatusOK,
		Body:       body,
		Links:      links,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitedPage creates a 200 OK page that reports a rate limit budget.
func NewRateLimitedPage(body string, links map[string]string, remaining int, reset time.Time) MockPage {
	page := NewPage(body, links)
	page.Headers["X-RateLimit-Remaining"] = fmt.Sprintf("%d", remaining)
	page.Headers["X-RateLimit-Reset"] = fmt.Sprintf("%d", reset.Unix())
	return page
}

// NewServerErrorPage creates a 500 Internal Server Error page.
func NewServerErrorPage() MockPage {
	return MockPage{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
