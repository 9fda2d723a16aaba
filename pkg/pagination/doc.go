// Package pagination walks resources paginated with RFC 5988 Link headers.
//
// Traverse starts at one locator and follows rel="next" and rel="prev" links
// outward, fetching every page it discovers, and returns the pages in
// sequence order: backward pages first, then the start page, then forward
// pages. Requests run concurrently; completion order never affects the
// result order.
//
// Example usage:
//
//	pages, err := pagination.Traverse(ctx, "https://api.example.com/items?page=4")
//	if err != nil {
//		return err
//	}
//	defer pages.Close()
//	for _, resp := range pages.Responses() {
//		// decode resp.Body
//	}
//
// Options are resolved once when a traversal starts. A bare Limit or
// Direction value is shorthand for the corresponding Config field:
//
//	pagination.Traverse(ctx, start, pagination.Limit(10))
//	pagination.Traverse(ctx, start, pagination.Backward)
//	pagination.Traverse(ctx, start, pagination.Config{
//		Limit:            50,
//		Direction:        pagination.Forward,
//		Options:          transport.Static(transport.RequestOptions{Header: auth}),
//		OnPartialFailure: true,
//	})
//
// Failure policies:
//   - strict (default): the first transport failure is returned as the
//     traversal error
//   - lenient (OnPartialFailure): the failure is kept as that page's Err and
//     only the front it terminated stops expanding
//
// Next, Prev, First and Last follow a single relation from a response or a
// raw Link header value. A missing relation yields a *RelationError, which
// matches ErrRelationAbsent and never a transport error.
package pagination
