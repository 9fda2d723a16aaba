// Package transport provides the fetch collaborator used by the pagination
// engine: a Fetcher interface, an HTTP implementation with metrics, logging and
// optional rate limit gating, and per-request options.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Fetcher performs a single request for a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string, opts RequestOptions) (*http.Response, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, locator string, opts RequestOptions) (*http.Response, error)

// Fetch implements Fetcher.
func (f FetchFunc) Fetch(ctx context.Context, locator string, opts RequestOptions) (*http.Response, error) {
	return f(ctx, locator, opts)
}

// RequestOptions customizes one request.
type RequestOptions struct {
	// Method defaults to GET
	Method string

	// Header is merged over the fetcher's default headers
	Header http.Header

	// Timeout bounds this request only (0 = fetcher default)
	Timeout time.Duration
}

// OptionsProvider returns the options for a locator. It is invoked once per
// request and may block, e.g. to refresh credentials.
type OptionsProvider func(ctx context.Context, locator string) (RequestOptions, error)

// Static returns a provider that hands out the same options for every request.
func Static(opts RequestOptions) OptionsProvider {
	return func(context.Context, string) (RequestOptions, error) {
		return opts, nil
	}
}

// Resolve invokes p for locator. A nil provider yields zero options.
func Resolve(ctx context.Context, p OptionsProvider, locator string) (RequestOptions, error) {
	if p == nil {
		return RequestOptions{}, nil
	}
	opts, err := p(ctx, locator)
	if err != nil {
		return RequestOptions{}, fmt.Errorf("resolve request options for %s: %w", locator, err)
	}
	return opts, nil
}
