// Package dto holds the shapes the search pipeline hands to callers.
package dto

import "github.com/Laisky/zine-site/internal/web/search/model"

// ResultType is the content domain a result came from.
type ResultType string

const (
	ResultTypeStory       ResultType = "Story"
	ResultTypePage        ResultType = "Page"
	ResultTypeContributor ResultType = "Contributor"
)

// AllResultTypes lists every domain in presentation order.
// A new ResultType must be placed here before it can be merged.
var AllResultTypes = []ResultType{
	ResultTypeContributor,
	ResultTypeStory,
	ResultTypePage,
}

// NormalizedQuery is the canonical form of the user's input.
type NormalizedQuery struct {
	// Text whitespace collapsed and trimmed
	Text string
	// Terms Text split on spaces, never holds empty tokens
	Terms []string
}

// Empty reports whether nothing searchable was submitted.
func (q NormalizedQuery) Empty() bool {
	return q.Text == ""
}

// SearchResult is one row of the merged result list.
type SearchResult struct {
	ID      string       `json:"id"`
	Type    ResultType   `json:"type"`
	Title   string       `json:"title"`
	URL     string       `json:"url"`
	Image   *model.Image `json:"image"`
	Snippet *string      `json:"snippet"`
	Meta    *string      `json:"meta"`
}

// SearchResponse pairs the normalized query with its results.
// An empty Query means nothing was submitted; a non-empty Query with
// no Results means nothing matched.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []*SearchResult `json:"results"`
}
