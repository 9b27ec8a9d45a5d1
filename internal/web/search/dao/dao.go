// Package dao contains the content store queries the search pipeline depends on.
package dao

import (
	"context"
	"regexp"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/zine-site/internal/web/search/model"
)

// MaxResultsPerDomain caps every domain query.
const MaxResultsPerDomain = 50

const wildcard = "*"

var (
	// ErrMalformedPattern is returned for a pattern that is blank or lacks the trailing wildcard.
	ErrMalformedPattern = errors.New("malformed match pattern")
	// ErrUnknownStoreDriver is returned when settings name a store that does not exist.
	ErrUnknownStoreDriver = errors.New("unknown content store driver")
)

// ContentStore runs the three domain queries.
//
// Every method takes a prefix-wildcard pattern built by WildcardPattern and
// returns at most MaxResultsPerDomain records in the domain's own order:
// stories by publish date desc, pages by last update desc,
// contributors by family name then given name asc.
type ContentStore interface {
	SearchStories(ctx context.Context, pattern string) ([]*model.Story, error)
	SearchPages(ctx context.Context, pattern string) ([]*model.Page, error)
	SearchContributors(ctx context.Context, pattern string) ([]*model.Contributor, error)
}

// WildcardPattern turns normalized query text into a prefix match token.
func WildcardPattern(text string) string {
	return text + wildcard
}

// patternLiteral strips exactly one trailing wildcard and returns the literal prefix.
// Any other `*` belongs to the literal.
func patternLiteral(pattern string) (string, error) {
	if !strings.HasSuffix(pattern, wildcard) {
		return "", errors.Wrapf(ErrMalformedPattern, "pattern `%s` has no trailing wildcard", pattern)
	}

	literal := strings.TrimSpace(strings.TrimSuffix(pattern, wildcard))
	if literal == "" {
		return "", errors.Wrapf(ErrMalformedPattern, "pattern `%s`", pattern)
	}

	return literal, nil
}

// wordPrefixRegex matches literal at the start of any word.
// The syntax is shared by Go, PCRE (mongo) and is the form the tests compile.
func wordPrefixRegex(literal string) string {
	return `(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(literal)
}
