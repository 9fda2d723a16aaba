package pagination

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/Sternrassler/linkpager/pkg/transport"
	"github.com/rs/zerolog"
)

func newTestPager(api *fakeAPI) *Pager {
	return NewPager(api, zerolog.Nop())
}

func locatorRange(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, pageURL(i))
	}
	return out
}

func TestTraverse_NoLinkHeader(t *testing.T) {
	tests := []struct {
		name string
		link string
	}{
		{name: "header absent", link: ""},
		{name: "header empty", link: " "},
		{name: "unrelated relations only", link: `<http://domain.com/docs>; rel="help"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.set("http://domain.com", fakePage{link: tt.link, body: `[{"id":1},{"id":2}]`})

			results, err := newTestPager(api).Traverse(context.Background(), "http://domain.com")
			if err != nil {
				t.Fatalf("Traverse() error = %v", err)
			}
			defer results.Close()

			if len(results) != 1 {
				t.Fatalf("len(results) = %d, want 1", len(results))
			}
			if got := readBody(results[0].Response); got != `[{"id":1},{"id":2}]` {
				t.Errorf("body = %q", got)
			}
			if results[0].Front != FrontAnchor {
				t.Errorf("Front = %v, want anchor", results[0].Front)
			}
		})
	}
}

func TestTraverse_ForwardChain(t *testing.T) {
	for _, opts := range [][]Option{nil, {Forward}, {Config{Direction: Forward}}} {
		api := chainAPI(3)

		results, err := newTestPager(api).Traverse(context.Background(), pageURL(1), opts...)
		if err != nil {
			t.Fatalf("Traverse(%v) error = %v", opts, err)
		}

		if got, want := results.Locators(), locatorRange(1, 3); !reflect.DeepEqual(got, want) {
			t.Errorf("Traverse(%v) locators = %v, want %v", opts, got, want)
		}
		for i, resp := range results.Responses() {
			want := `[{"id":` + string(rune('1'+i)) + `}]`
			if got := readBody(resp); got != want {
				t.Errorf("page %d body = %q, want %q", i+1, got, want)
			}
		}
		for _, locator := range locatorRange(1, 3) {
			if n := api.callCount(locator); n != 1 {
				t.Errorf("%s fetched %d times, want 1", locator, n)
			}
		}
		results.Close()
	}
}

func TestTraverse_FromMiddle(t *testing.T) {
	api := chainAPI(7)

	results, err := newTestPager(api).Traverse(context.Background(), pageURL(4))
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if got, want := results.Locators(), locatorRange(1, 7); !reflect.DeepEqual(got, want) {
		t.Fatalf("locators = %v, want %v", got, want)
	}
	if results[3].Front != FrontAnchor {
		t.Errorf("results[3].Front = %v, want anchor at its backward distance", results[3].Front)
	}
	for i, page := range results {
		want := FrontBackward
		if i == 3 {
			want = FrontAnchor
		} else if i > 3 {
			want = FrontForward
		}
		if page.Front != want {
			t.Errorf("results[%d].Front = %v, want %v", i, page.Front, want)
		}
	}
	if api.totalCalls() != 7 {
		t.Errorf("total fetches = %d, want 7", api.totalCalls())
	}
}

func TestTraverse_Direction(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		expected []string
	}{
		{name: "backward shorthand", opts: []Option{Backward}, expected: locatorRange(1, 4)},
		{name: "backward in config", opts: []Option{Config{Direction: Backward}}, expected: locatorRange(1, 4)},
		{name: "forward shorthand", opts: []Option{Forward}, expected: locatorRange(4, 7)},
		{name: "both", opts: []Option{Both}, expected: locatorRange(1, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := chainAPI(7)

			results, err := newTestPager(api).Traverse(context.Background(), pageURL(4), tt.opts...)
			if err != nil {
				t.Fatalf("Traverse() error = %v", err)
			}
			defer results.Close()

			if got := results.Locators(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("locators = %v, want %v", got, tt.expected)
			}
			if api.totalCalls() != len(tt.expected) {
				t.Errorf("total fetches = %d, want %d", api.totalCalls(), len(tt.expected))
			}
		})
	}
}

func TestTraverse_DirectionFromString(t *testing.T) {
	dir, err := ParseDirection("prev")
	if err != nil {
		t.Fatalf("ParseDirection() error = %v", err)
	}

	api := chainAPI(5)
	results, err := newTestPager(api).Traverse(context.Background(), pageURL(3), dir)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if got, want := results.Locators(), locatorRange(1, 3); !reflect.DeepEqual(got, want) {
		t.Errorf("locators = %v, want %v", got, want)
	}
}

func TestTraverse_Limit(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		start    int
		opts     []Option
		expected []string
	}{
		{name: "forward chain", size: 10, start: 1, opts: []Option{Limit(3)}, expected: locatorRange(1, 3)},
		{name: "limit in config", size: 10, start: 1, opts: []Option{Config{Limit: 5}}, expected: locatorRange(1, 5)},
		{name: "limit one", size: 10, start: 5, opts: []Option{Limit(1)}, expected: locatorRange(5, 5)},
		{name: "forward is issued before backward", size: 7, start: 4, opts: []Option{Limit(2)}, expected: locatorRange(4, 5)},
		{name: "backward only", size: 7, start: 4, opts: []Option{Config{Limit: 2, Direction: Backward}}, expected: locatorRange(3, 4)},
		{name: "limit above chain length", size: 3, start: 1, opts: []Option{Limit(50)}, expected: locatorRange(1, 3)},
		{name: "zero means unlimited", size: 4, start: 1, opts: []Option{Limit(0)}, expected: locatorRange(1, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := chainAPI(tt.size)

			results, err := newTestPager(api).Traverse(context.Background(), pageURL(tt.start), tt.opts...)
			if err != nil {
				t.Fatalf("Traverse() error = %v", err)
			}
			defer results.Close()

			if got := results.Locators(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("locators = %v, want %v", got, tt.expected)
			}
			if api.totalCalls() != len(tt.expected) {
				t.Errorf("total fetches = %d, want %d", api.totalCalls(), len(tt.expected))
			}
		})
	}
}

func TestTraverse_LimitBothFronts(t *testing.T) {
	api := chainAPI(9)

	results, err := newTestPager(api).Traverse(context.Background(), pageURL(5), Limit(4))
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
	if api.totalCalls() != 4 {
		t.Errorf("total fetches = %d, want 4", api.totalCalls())
	}

	anchorSeen := false
	for i := 1; i < len(results); i++ {
		if results[i-1].Locator >= results[i].Locator {
			t.Errorf("results out of order: %v", results.Locators())
		}
	}
	for _, page := range results {
		if page.Locator == pageURL(5) {
			anchorSeen = true
		}
	}
	if !anchorSeen {
		t.Error("anchor page missing from limited results")
	}
}

func TestTraverse_NegativeLimit(t *testing.T) {
	api := chainAPI(3)

	_, err := newTestPager(api).Traverse(context.Background(), pageURL(1), Limit(-1))
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("Traverse() error = %v, want ErrInvalidLimit", err)
	}
	if api.totalCalls() != 0 {
		t.Errorf("total fetches = %d, want 0", api.totalCalls())
	}
}

func TestTraverse_OrderIndependentOfCompletion(t *testing.T) {
	api := chainAPI(7)
	// Inner pages are slow so outer pages on the other front finish first.
	api.update(pageURL(3), func(p *fakePage) { p.delay = 120 * time.Millisecond })
	api.update(pageURL(5), func(p *fakePage) { p.delay = 60 * time.Millisecond })
	api.update(pageURL(2), func(p *fakePage) { p.delay = 10 * time.Millisecond })
	api.update(pageURL(7), func(p *fakePage) { p.delay = 80 * time.Millisecond })

	results, err := newTestPager(api).Traverse(context.Background(), pageURL(4))
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if got, want := results.Locators(), locatorRange(1, 7); !reflect.DeepEqual(got, want) {
		t.Errorf("locators = %v, want %v", got, want)
	}
}

func TestTraverse_StrictFailure(t *testing.T) {
	sentinel := errors.New("An error")

	api := newFakeAPI()
	api.set("http://domain.com", fakePage{link: `<http://domain.com?page=2>; rel="next"`, body: `[{"id":1}]`})
	api.set("http://domain.com?page=2", fakePage{err: sentinel})

	results, err := newTestPager(api).Traverse(context.Background(), "http://domain.com")
	if err != sentinel {
		t.Fatalf("Traverse() error = %v, want the fetch error itself", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil on failure", results)
	}
}

func TestTraverse_StrictFailureDoesNotWaitForSiblings(t *testing.T) {
	sentinel := errors.New("backend unavailable")

	api := chainAPI(7)
	api.update(pageURL(3), func(p *fakePage) { p.err = sentinel })
	api.update(pageURL(5), func(p *fakePage) { p.delay = 500 * time.Millisecond })

	start := time.Now()
	_, err := newTestPager(api).Traverse(context.Background(), pageURL(4))
	elapsed := time.Since(start)

	if !errors.Is(err, sentinel) {
		t.Fatalf("Traverse() error = %v, want %v", err, sentinel)
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("Traverse() took %v, should not wait for the in-flight sibling", elapsed)
	}
}

func TestTraverse_StrictAnchorFailure(t *testing.T) {
	sentinel := errors.New("dns failure")
	api := newFakeAPI()
	api.set(pageURL(1), fakePage{err: sentinel})

	_, err := newTestPager(api).Traverse(context.Background(), pageURL(1))
	if !errors.Is(err, sentinel) {
		t.Fatalf("Traverse() error = %v, want %v", err, sentinel)
	}
}

func TestTraverse_PartialFailure(t *testing.T) {
	sentinel := errors.New("An error")

	api := newFakeAPI()
	api.set("http://domain.com", fakePage{link: `<http://domain.com?page=2>; rel="next"`, body: `[{"id":1}]`})
	api.set("http://domain.com?page=2", fakePage{err: sentinel})

	results, err := newTestPager(api).Traverse(context.Background(), "http://domain.com", WithPartialFailure())
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if !results[0].OK() {
		t.Errorf("results[0] should hold the first page")
	}
	if results[1].Response != nil || results[1].Err == nil || results[1].Err.Error() != "An error" {
		t.Errorf("results[1] = %+v, want captured error", results[1])
	}
	if got := results.Errors(); len(got) != 1 || got[0] != sentinel {
		t.Errorf("Errors() = %v", got)
	}
}

func TestTraverse_PartialFailureKeepsOtherFront(t *testing.T) {
	sentinel := errors.New("page 6 exploded")

	api := chainAPI(7)
	api.update(pageURL(6), func(p *fakePage) { p.err = sentinel })

	results, err := newTestPager(api).Traverse(context.Background(), pageURL(4), Config{OnPartialFailure: true})
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if got, want := results.Locators(), locatorRange(1, 6); !reflect.DeepEqual(got, want) {
		t.Fatalf("locators = %v, want %v", got, want)
	}
	if results[5].Err != sentinel {
		t.Errorf("results[5].Err = %v, want %v", results[5].Err, sentinel)
	}
	if len(results.Responses()) != 5 {
		t.Errorf("len(Responses()) = %d, want 5", len(results.Responses()))
	}
	if api.callCount(pageURL(7)) != 0 {
		t.Error("forward front should stop after its failed page")
	}
}

func TestTraverse_PartialFailureOnBackwardFront(t *testing.T) {
	sentinel := errors.New("page 2 exploded")

	api := chainAPI(6)
	api.update(pageURL(2), func(p *fakePage) { p.err = sentinel })

	results, err := newTestPager(api).Traverse(context.Background(), pageURL(4), WithPartialFailure())
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if got, want := results.Locators(), locatorRange(2, 6); !reflect.DeepEqual(got, want) {
		t.Fatalf("locators = %v, want %v", got, want)
	}
	if results[0].Err != sentinel || results[0].Front != FrontBackward {
		t.Errorf("results[0] = %+v, want captured backward error", results[0])
	}
}

func TestTraverse_PartialFailureAnchor(t *testing.T) {
	sentinel := errors.New("dns failure")
	api := newFakeAPI()
	api.set(pageURL(1), fakePage{err: sentinel})

	results, err := newTestPager(api).Traverse(context.Background(), pageURL(1), WithPartialFailure())
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	if len(results) != 1 || results[0].Err != sentinel {
		t.Errorf("results = %+v, want single captured error", results)
	}
}

func TestTraverse_ResponseWithoutPrevEndsBackwardFront(t *testing.T) {
	api := chainAPI(7)
	api.update(pageURL(5), func(p *fakePage) { p.link = `<` + pageURL(6) + `>; rel="next"` })
	api.update(pageURL(3), func(p *fakePage) { p.delay = 100 * time.Millisecond })

	results, err := newTestPager(api).Traverse(context.Background(), pageURL(4))
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if got, want := results.Locators(), locatorRange(3, 7); !reflect.DeepEqual(got, want) {
		t.Errorf("locators = %v, want %v", got, want)
	}
	if api.callCount(pageURL(2)) != 0 {
		t.Error("backward front should have been terminated by page 5")
	}
}

func TestTraverse_RequestOptions(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		api := chainAPI(3)
		header := http.Header{"Authorization": []string{"token abc"}}

		results, err := newTestPager(api).Traverse(context.Background(), pageURL(1),
			WithStaticOptions(transport.RequestOptions{Header: header}))
		if err != nil {
			t.Fatalf("Traverse() error = %v", err)
		}
		defer results.Close()

		for _, locator := range locatorRange(1, 3) {
			if got := api.optsFor(locator).Header.Get("Authorization"); got != "token abc" {
				t.Errorf("%s Authorization = %q", locator, got)
			}
		}
	})

	t.Run("per locator", func(t *testing.T) {
		api := chainAPI(5)
		provider := func(ctx context.Context, locator string) (transport.RequestOptions, error) {
			return transport.RequestOptions{Header: http.Header{"X-Page": []string{locator}}}, nil
		}

		results, err := newTestPager(api).Traverse(context.Background(), pageURL(3), WithOptions(provider))
		if err != nil {
			t.Fatalf("Traverse() error = %v", err)
		}
		defer results.Close()

		for _, locator := range locatorRange(1, 5) {
			if got := api.optsFor(locator).Header.Get("X-Page"); got != locator {
				t.Errorf("%s X-Page = %q", locator, got)
			}
		}
	})

	t.Run("provider failure is a page failure", func(t *testing.T) {
		api := chainAPI(3)
		sentinel := errors.New("token refresh failed")
		provider := func(ctx context.Context, locator string) (transport.RequestOptions, error) {
			if locator == pageURL(2) {
				return transport.RequestOptions{}, sentinel
			}
			return transport.RequestOptions{}, nil
		}

		_, err := newTestPager(api).Traverse(context.Background(), pageURL(1), WithOptions(provider))
		if !errors.Is(err, sentinel) {
			t.Fatalf("Traverse() error = %v, want %v", err, sentinel)
		}
		if api.callCount(pageURL(2)) != 0 {
			t.Error("page 2 should not be fetched when its options fail")
		}
	})
}

func TestTraverse_ContextCancelled(t *testing.T) {
	api := chainAPI(3)
	api.update(pageURL(1), func(p *fakePage) { p.delay = time.Second })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPager(api).Traverse(ctx, pageURL(1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Traverse() error = %v, want context.Canceled", err)
	}
}

func TestTraverse_DefaultFetcher(t *testing.T) {
	api := chainAPI(3)
	transport.SetDefault(api)
	t.Cleanup(func() { transport.SetDefault(nil) })

	results, err := Traverse(context.Background(), pageURL(2))
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}
	defer results.Close()

	if got, want := results.Locators(), locatorRange(1, 3); !reflect.DeepEqual(got, want) {
		t.Errorf("locators = %v, want %v", got, want)
	}
}
