// Package contributor resolves how a person is shown on the site.
//
// Search results, bylines and contributor pages all resolve names here,
// so the joining rules live in exactly one place.
package contributor

import (
	"strings"
	"unicode/utf8"
)

// Name is the set of stored name fields for one contributor.
// Every field is optional.
type Name struct {
	// Name is the single full-name field kept by older records
	Name *string `bson:"name,omitempty" json:"name,omitempty"`
	// GivenName given name
	GivenName *string `bson:"given_name,omitempty" json:"given_name,omitempty"`
	// MiddleName middle name
	MiddleName *string `bson:"middle_name,omitempty" json:"middle_name,omitempty"`
	// FamilyName family name
	FamilyName *string `bson:"family_name,omitempty" json:"family_name,omitempty"`
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}

	return strings.TrimSpace(*s)
}

// DisplayName prefers the full-name field; otherwise it joins the
// non-empty given, middle and family names with single spaces.
// A person with no usable field resolves to "".
func DisplayName(n Name) string {
	if full := trimmed(n.Name); full != "" {
		return full
	}

	parts := make([]string, 0, 3)
	for _, p := range []*string{n.GivenName, n.MiddleName, n.FamilyName} {
		if v := trimmed(p); v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, " ")
}

// Initials returns up to two upper-cased letters for avatar placeholders.
func Initials(n Name) string {
	given, family := trimmed(n.GivenName), trimmed(n.FamilyName)
	if given != "" && family != "" {
		return strings.ToUpper(firstRunes(given, 1) + firstRunes(family, 1))
	}

	tokens := strings.Fields(DisplayName(n))
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(firstRunes(tokens[0], 2))
	default:
		return strings.ToUpper(firstRunes(tokens[0], 1) + firstRunes(tokens[len(tokens)-1], 1))
	}
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

// Byline joins the author and illustrator display names with " & ",
// skipping whichever is empty.
func Byline(author, illustrator string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{author, illustrator} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " & ")
}
