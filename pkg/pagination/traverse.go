package pagination

import (
	"context"
	"net/http"
	"time"

	"github.com/Sternrassler/linkpager/pkg/linkheader"
	"github.com/Sternrassler/linkpager/pkg/transport"
	"github.com/rs/zerolog"
)

// Pager traverses and follows Link-paginated resources with one fetcher.
type Pager struct {
	fetcher transport.Fetcher
	logger  zerolog.Logger
}

// NewPager creates a pager. A nil fetcher uses transport.Default() at call time.
func NewPager(fetcher transport.Fetcher, logger zerolog.Logger) *Pager {
	return &Pager{
		fetcher: fetcher,
		logger:  logger,
	}
}

var std = NewPager(nil, zerolog.Nop())

func (p *Pager) fetcherOrDefault() transport.Fetcher {
	if p.fetcher != nil {
		return p.fetcher
	}
	return transport.Default()
}

// Traverse fetches start and every page reachable through next/prev links
// using the default fetcher.
func Traverse(ctx context.Context, start string, opts ...Option) (Results, error) {
	return std.Traverse(ctx, start, opts...)
}

// Traverse fetches start and every page reachable through next/prev links.
//
// Pages are returned in sequence order. Once both fronts are exhausted or the
// limit is reached no new request is issued, and Traverse returns when every
// issued request has completed. Under the strict policy the first transport
// failure is returned as soon as it happens; requests still in flight finish
// in the background and their bodies are closed.
func (p *Pager) Traverse(ctx context.Context, start string, opts ...Option) (Results, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	t := &traversal{
		ctx:          ctx,
		cfg:          cfg,
		fetcher:      p.fetcherOrDefault(),
		logger:       p.logger.With().Str("start", start).Logger(),
		seq:          &sequence{},
		forwardLive:  cfg.Direction != Backward,
		backwardLive: cfg.Direction != Forward,
		done:         make(chan completion),
		startedAt:    time.Now(),
	}

	return t.run(start)
}

// completion carries the outcome of one request back to the coordinator.
type completion struct {
	page *Page
	resp *http.Response
	err  error
}

// traversal is the state of one Traverse call. Only the coordinator
// goroutine running run mutates it; fetch goroutines communicate through done.
type traversal struct {
	ctx     context.Context
	cfg     Config
	fetcher transport.Fetcher
	logger  zerolog.Logger

	seq          *sequence
	forwardLive  bool
	backwardLive bool
	issued       int
	inflight     int
	limitHit     bool

	done      chan completion
	startedAt time.Time
}

func (t *traversal) run(start string) (Results, error) {
	t.issue(start, FrontAnchor)

	for t.inflight > 0 {
		c := <-t.done
		t.inflight--

		if err := t.complete(c); err != nil {
			go drain(t.done, t.inflight)
			t.seq.results().Close()

			TraversalsTotal.WithLabelValues("failed").Inc()
			t.logger.Debug().
				Err(err).
				Str("locator", c.page.Locator).
				Int("issued", t.issued).
				Msg("Traversal failed")
			return nil, err
		}
	}

	results := t.seq.results()

	outcome := "complete"
	if t.limitHit {
		outcome = "limit"
	}
	TraversalsTotal.WithLabelValues(outcome).Inc()
	TraversalPages.Observe(float64(len(results)))

	t.logger.Debug().
		Int("pages", len(results)).
		Int("issued", t.issued).
		Str("outcome", outcome).
		Dur("duration", time.Since(t.startedAt)).
		Msg("Traversal complete")

	return results, nil
}

// issue places a slot for locator and starts its request.
func (t *traversal) issue(locator string, front Front) {
	page := &Page{Locator: locator, Front: front}
	if front == FrontBackward {
		t.seq.pushFront(page)
	} else {
		t.seq.pushBack(page)
	}

	t.issued++
	t.inflight++

	t.logger.Debug().
		Str("locator", locator).
		Stringer("front", front).
		Int("issued", t.issued).
		Msg("Issuing page request")

	go t.fetch(page)

	if t.cfg.Limit > 0 && t.issued >= t.cfg.Limit {
		t.limitHit = true
	}
}

// fetch runs in its own goroutine and must not touch traversal state.
func (t *traversal) fetch(page *Page) {
	opts, err := transport.Resolve(t.ctx, t.cfg.Options, page.Locator)
	if err != nil {
		t.done <- completion{page: page, err: err}
		return
	}

	resp, err := t.fetcher.Fetch(t.ctx, page.Locator, opts)
	t.done <- completion{page: page, resp: resp, err: err}
}

// complete records c and expands the fronts. A non-nil return is fatal.
func (t *traversal) complete(c completion) error {
	page := c.page

	if c.err != nil {
		PagesTotal.WithLabelValues(page.Front.String(), "error").Inc()

		if !t.cfg.OnPartialFailure {
			return c.err
		}

		page.Err = c.err
		if t.seq.first() == page {
			t.backwardLive = false
		}
		if t.seq.last() == page {
			t.forwardLive = false
		}

		t.logger.Debug().
			Err(c.err).
			Str("locator", page.Locator).
			Bool("forward_live", t.forwardLive).
			Bool("backward_live", t.backwardLive).
			Msg("Page failed, kept as partial result")
		return nil
	}

	PagesTotal.WithLabelValues(page.Front.String(), "ok").Inc()
	page.Response = c.resp

	links := linkheader.FromResponse(c.resp).LinkSet()
	next, hasNext := links.Get(linkheader.RelNext)
	prev, hasPrev := links.Get(linkheader.RelPrev)

	if !hasNext {
		t.forwardLive = false
	}
	if !hasPrev {
		t.backwardLive = false
	}

	if t.limitHit || (!t.forwardLive && !t.backwardLive) {
		return nil
	}

	if t.forwardLive && (page.Front == FrontForward || page.Front == FrontAnchor) {
		t.issue(next, FrontForward)
	}
	if !t.limitHit && t.backwardLive && (page.Front == FrontBackward || page.Front == FrontAnchor) {
		t.issue(prev, FrontBackward)
	}

	return nil
}

// drain receives the completions still owed after a failed traversal and
// closes their bodies.
func drain(done <-chan completion, pending int) {
	for ; pending > 0; pending-- {
		c := <-done
		if c.resp != nil && c.resp.Body != nil {
			c.resp.Body.Close()
		}
	}
}
