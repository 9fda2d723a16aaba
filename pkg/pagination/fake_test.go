package pagination

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/linkpager/pkg/transport"
)

// fakePage describes how fakeAPI answers one locator.
type fakePage struct {
	link  string
	body  string
	err   error
	delay time.Duration
}

// fakeAPI is an in-memory Fetcher that records every call.
type fakeAPI struct {
	mu    sync.Mutex
	pages map[string]fakePage
	calls map[string]int
	opts  map[string]transport.RequestOptions
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		pages: make(map[string]fakePage),
		calls: make(map[string]int),
		opts:  make(map[string]transport.RequestOptions),
	}
}

func pageURL(i int) string {
	return fmt.Sprintf("http://domain.com?page=%d", i)
}

// chainAPI builds n pages where page i links next to i+1 and prev to i-1.
func chainAPI(n int) *fakeAPI {
	api := newFakeAPI()
	for i := 1; i <= n; i++ {
		var links []string
		if i < n {
			links = append(links, fmt.Sprintf(`<%s>; rel="next"`, pageURL(i+1)))
		}
		if i > 1 {
			links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, pageURL(i-1)))
		}
		api.pages[pageURL(i)] = fakePage{
			link: strings.Join(links, ", "),
			body: fmt.Sprintf(`[{"id":%d}]`, i),
		}
	}
	return api
}

func (f *fakeAPI) set(locator string, page fakePage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[locator] = page
}

// update mutates the stored page for locator.
func (f *fakeAPI) update(locator string, fn func(*fakePage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := f.pages[locator]
	fn(&page)
	f.pages[locator] = page
}

func (f *fakeAPI) callCount(locator string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[locator]
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeAPI) optsFor(locator string) transport.RequestOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts[locator]
}

// Fetch implements transport.Fetcher.
func (f *fakeAPI) Fetch(ctx context.Context, locator string, opts transport.RequestOptions) (*http.Response, error) {
	f.mu.Lock()
	f.calls[locator]++
	f.opts[locator] = opts
	page, ok := f.pages[locator]
	f.mu.Unlock()

	if page.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(page.delay):
		}
	}

	if !ok {
		return nil, fmt.Errorf("no route for %s", locator)
	}
	if page.err != nil {
		return nil, page.err
	}

	reqURL, err := url.Parse(locator)
	if err != nil {
		return nil, err
	}

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(page.body)),
		Request:    &http.Request{Method: http.MethodGet, URL: reqURL},
	}
	if page.link != "" {
		resp.Header.Set("Link", page.link)
	}
	return resp, nil
}

func readBody(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	data, _ := io.ReadAll(resp.Body)
	return string(data)
}
