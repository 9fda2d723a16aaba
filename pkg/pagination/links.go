package pagination

import (
	"context"
	"net/http"

	"github.com/Sternrassler/linkpager/pkg/linkheader"
	"github.com/Sternrassler/linkpager/pkg/transport"
)

// Follow fetches the target of rel advertised by src, exactly once.
// It returns a *RelationError without fetching when rel is absent.
func (p *Pager) Follow(ctx context.Context, src linkheader.Source, rel string, opts transport.OptionsProvider) (*http.Response, error) {
	var links linkheader.LinkSet
	if src != nil {
		links = src.LinkSet()
	}

	target, ok := links.Get(rel)
	if !ok {
		return nil, &RelationError{Rel: rel}
	}

	reqOpts, err := transport.Resolve(ctx, opts, target)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("rel", rel).
		Str("locator", target).
		Msg("Following link")

	return p.fetcherOrDefault().Fetch(ctx, target, reqOpts)
}

// Next fetches the rel="next" target of src.
func (p *Pager) Next(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return p.Follow(ctx, src, linkheader.RelNext, opts)
}

// Prev fetches the rel="prev" target of src.
func (p *Pager) Prev(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return p.Follow(ctx, src, linkheader.RelPrev, opts)
}

// First fetches the rel="first" target of src.
func (p *Pager) First(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return p.Follow(ctx, src, linkheader.RelFirst, opts)
}

// Last fetches the rel="last" target of src.
func (p *Pager) Last(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return p.Follow(ctx, src, linkheader.RelLast, opts)
}

// Follow fetches the target of rel using the default fetcher.
func Follow(ctx context.Context, src linkheader.Source, rel string, opts transport.OptionsProvider) (*http.Response, error) {
	return std.Follow(ctx, src, rel, opts)
}

// Next fetches the rel="next" target of src using the default fetcher.
func Next(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return std.Next(ctx, src, opts)
}

// Prev fetches the rel="prev" target of src using the default fetcher.
func Prev(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return std.Prev(ctx, src, opts)
}

// First fetches the rel="first" target of src using the default fetcher.
func First(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return std.First(ctx, src, opts)
}

// Last fetches the rel="last" target of src using the default fetcher.
func Last(ctx context.Context, src linkheader.Source, opts transport.OptionsProvider) (*http.Response, error) {
	return std.Last(ctx, src, opts)
}
