package pagination

import (
	"errors"
	"net/http"
)

// Front identifies which expansion direction issued a request.
type Front int

const (
	// FrontAnchor is the start request.
	FrontAnchor Front = iota
	// FrontForward follows rel="next".
	FrontForward
	// FrontBackward follows rel="prev".
	FrontBackward
)

// String returns the front name used in logs and metrics.
func (f Front) String() string {
	switch f {
	case FrontAnchor:
		return "anchor"
	case FrontForward:
		return "forward"
	case FrontBackward:
		return "backward"
	default:
		return "unknown"
	}
}

// Page is the outcome of one fetch.
// Exactly one of Response and Err is set.
type Page struct {
	Locator  string
	Front    Front
	Response *http.Response
	Err      error
}

// OK reports whether the page was fetched successfully.
func (p Page) OK() bool {
	return p.Err == nil && p.Response != nil
}

// Results is the ordered outcome of a traversal.
type Results []Page

// Responses returns the successful responses in sequence order.
func (r Results) Responses() []*http.Response {
	out := make([]*http.Response, 0, len(r))
	for _, page := range r {
		if page.OK() {
			out = append(out, page.Response)
		}
	}
	return out
}

// Errors returns the captured failures in sequence order.
func (r Results) Errors() []error {
	var out []error
	for _, page := range r {
		if page.Err != nil {
			out = append(out, page.Err)
		}
	}
	return out
}

// Locators returns the locator of every slot in sequence order.
func (r Results) Locators() []string {
	out := make([]string, len(r))
	for i, page := range r {
		out[i] = page.Locator
	}
	return out
}

// Close closes every response body.
func (r Results) Close() error {
	var errs []error
	for _, page := range r {
		if page.Response != nil && page.Response.Body != nil {
			if err := page.Response.Body.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
