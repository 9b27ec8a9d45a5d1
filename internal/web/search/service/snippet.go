package service

import (
	"strings"
	"unicode"
)

const (
	// NoMatch is the match location of a text that contains no query term.
	NoMatch = -1

	snippetRadius         = 70
	fallbackSnippetLength = 160
	ellipsis              = "..."
)

// CandidateField is one weighted source of excerpt text for a result.
// A nil or blank Text is skipped.
type CandidateField struct {
	Text     *string
	Priority int
}

// Field builds a CandidateField from an optional stored value.
func Field(text *string, priority int) CandidateField {
	return CandidateField{Text: text, Priority: priority}
}

// TextField builds a CandidateField from a derived value, treating "" as absent.
func TextField(text string, priority int) CandidateField {
	if text == "" {
		return CandidateField{Priority: priority}
	}

	return CandidateField{Text: &text, Priority: priority}
}

func lowerRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}

	return rs
}

func indexRunes(hay, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return NoMatch
	}

outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, r := range needle {
			if hay[i+j] != r {
				continue outer
			}
		}

		return i
	}

	return NoMatch
}

// findMatch returns the earliest rune offset at which any term occurs in
// text, ignoring case, and the rune length of that term.
// Ties on offset go to the term listed first.
func findMatch(text string, terms []string) (idx, termLen int) {
	hay := lowerRunes(text)
	idx = NoMatch
	for _, term := range terms {
		needle := lowerRunes(term)
		if i := indexRunes(hay, needle); i != NoMatch && (idx == NoMatch || i < idx) {
			idx, termLen = i, len(needle)
		}
	}

	return idx, termLen
}

// FindMatchIndex returns the earliest character offset of any term in
// text, ignoring case, or NoMatch.
func FindMatchIndex(text string, terms []string) int {
	idx, _ := findMatch(text, terms)
	return idx
}

func truncateRunes(rs []rune, n int) string {
	if len(rs) > n {
		rs = rs[:n]
	}

	return string(rs)
}

// window cuts the excerpt around a match at rune offset idx.
// Ellipses mark the sides where text was dropped.
func window(rs []rune, idx, termLen int) string {
	start := max(0, idx-snippetRadius)
	end := min(len(rs), idx+termLen+snippetRadius)

	snippet := strings.TrimSpace(string(rs[start:end]))
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(rs) {
		snippet += ellipsis
	}

	return snippet
}

// BuildSnippet excerpts text around the first matching term.
// Text with no match, or a query with no terms, is cut to its first
// 160 characters. Blank text yields nil.
func BuildSnippet(text string, terms []string) *string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	rs := []rune(trimmed)
	idx, termLen := findMatch(trimmed, terms)
	if idx == NoMatch {
		snippet := truncateRunes(rs, fallbackSnippetLength)
		return &snippet
	}

	snippet := window(rs, idx, termLen)
	return &snippet
}

type rankedField struct {
	text     string
	idx      int
	priority int
}

// outranks reports whether a beats b: a match always beats no match,
// then the higher priority wins. Equal candidates keep input order.
func (a rankedField) outranks(b rankedField) bool {
	aHit, bHit := a.idx != NoMatch, b.idx != NoMatch
	if aHit != bHit {
		return aHit
	}

	return a.priority > b.priority
}

// FindBestSnippet picks the field to excerpt for one result and excerpts it.
// It returns nil when no field has usable text.
func FindBestSnippet(terms []string, fields []CandidateField) *string {
	var (
		best  rankedField
		found bool
	)
	for _, f := range fields {
		if f.Text == nil {
			continue
		}

		text := strings.TrimSpace(*f.Text)
		if text == "" {
			continue
		}

		cand := rankedField{text: text, idx: FindMatchIndex(text, terms), priority: f.Priority}
		if !found || cand.outranks(best) {
			best, found = cand, true
		}
	}

	if !found {
		return nil
	}

	return BuildSnippet(best.text, terms)
}
