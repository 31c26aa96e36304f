// Package search retrieves evidence for claims from a web search engine and
// from a database of published fact checks.
package search

import (
	"context"
	"errors"
)

// ErrNoResults reports a successful search that matched nothing.
var ErrNoResults = errors.New("search: no results")

// Placeholders substituted for fields the search engine omits.
const (
	UnknownTitle   = "Unknown Title"
	NoSnippet      = "No snippet available"
	MissingLinkURL = "#"
)

// Evidence is one retrieved source.
type Evidence struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"link"`
	Source  string `json:"source,omitempty"`
}

// Review is a prior fact check of a similar claim.
type Review struct {
	Claim     string `json:"claim"`
	Claimant  string `json:"claimant,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	URL       string `json:"url,omitempty"`
	Rating    string `json:"rating,omitempty"`
}

// WebSearcher returns up to n organic results for query.
type WebSearcher interface {
	Search(ctx context.Context, query string, n int) ([]Evidence, error)
}

// FactChecker looks up prior fact checks. Failures yield an empty slice.
type FactChecker interface {
	Lookup(ctx context.Context, text string) []Review
}

// Top returns at most k items of ev.
func Top(ev []Evidence, k int) []Evidence {
	if k <= 0 || len(ev) <= k {
		return ev
	}
	return ev[:k]
}
