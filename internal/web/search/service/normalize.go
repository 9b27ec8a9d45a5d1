package service

import (
	"strings"

	"github.com/Laisky/zine-site/internal/web/search/dto"
)

// NormalizeQuery collapses whitespace runs to single spaces, trims the
// edges and splits the result into terms. Casing is left to matching.
func NormalizeQuery(raw string) dto.NormalizedQuery {
	terms := strings.Fields(raw)
	if terms == nil {
		terms = []string{}
	}

	return dto.NormalizedQuery{
		Text:  strings.Join(terms, " "),
		Terms: terms,
	}
}
