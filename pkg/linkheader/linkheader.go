// Package linkheader turns RFC 5988 Link header values into relation lookups.
package linkheader

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tomnomnom/linkheader"
)

// Well-known pagination relations.
const (
	RelNext  = "next"
	RelPrev  = "prev"
	RelFirst = "first"
	RelLast  = "last"
)

// LinkSet maps a relation name to its target locator.
// Absent relations are absent keys.
type LinkSet map[string]string

// Get returns the locator for rel and whether it is present.
func (s LinkSet) Get(rel string) (string, bool) {
	target, ok := s[strings.ToLower(rel)]
	return target, ok
}

// Has reports whether rel is present.
func (s LinkSet) Has(rel string) bool {
	_, ok := s.Get(rel)
	return ok
}

// Parse parses a raw Link header value.
// An empty or malformed value yields an empty LinkSet, never an error.
func Parse(value string) LinkSet {
	return fromLinks(linkheader.Parse(value), nil)
}

// FromHeader parses every Link value present in h.
func FromHeader(h http.Header) LinkSet {
	return fromLinks(parseHeader(h), nil)
}

func parseHeader(h http.Header) linkheader.Links {
	if h == nil {
		return nil
	}
	return linkheader.ParseMultiple(h.Values("Link"))
}

// fromLinks builds a LinkSet, resolving relative targets against base when it is set.
// "previous" is accepted as an alias of "prev". The first link carrying a relation wins.
func fromLinks(links linkheader.Links, base *url.URL) LinkSet {
	set := make(LinkSet, len(links))
	for _, link := range links {
		target := strings.TrimSpace(link.URL)
		if target == "" {
			continue
		}
		if base != nil {
			if ref, err := url.Parse(target); err == nil {
				target = base.ResolveReference(ref).String()
			}
		}

		for _, rel := range strings.Fields(strings.ToLower(link.Rel)) {
			if rel == "previous" {
				rel = RelPrev
			}
			if _, exists := set[rel]; !exists {
				set[rel] = target
			}
		}
	}
	return set
}
