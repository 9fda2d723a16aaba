package linkheader

import "net/http"

// Source yields the relations advertised by a response or a raw header value.
type Source interface {
	LinkSet() LinkSet
}

// Raw is an unparsed Link header value.
type Raw string

// LinkSet implements Source.
func (r Raw) LinkSet() LinkSet {
	return Parse(string(r))
}

// Set is an already parsed LinkSet used as a Source.
func (s LinkSet) LinkSet() LinkSet {
	return s
}

type responseSource struct {
	resp *http.Response
}

// FromResponse returns a Source reading the Link headers of resp.
// Relative targets are resolved against the URL that produced resp.
func FromResponse(resp *http.Response) Source {
	return responseSource{resp: resp}
}

// LinkSet implements Source.
func (s responseSource) LinkSet() LinkSet {
	if s.resp == nil {
		return LinkSet{}
	}
	if s.resp.Request == nil || s.resp.Request.URL == nil {
		return FromHeader(s.resp.Header)
	}
	return fromLinks(parseHeader(s.resp.Header), s.resp.Request.URL)
}
