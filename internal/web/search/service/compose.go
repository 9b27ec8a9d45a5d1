package service

import (
	"strings"

	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/internal/web/search/model"
	"github.com/Laisky/zine-site/library/contributor"
)

const (
	untitled            = "Untitled"
	contributorFallback = "Contributor"
	deadLink            = "#"
)

// snippet field priorities
const (
	priorityTitle       = 3
	priorityStoryBody   = 2
	priorityCredit      = 1
	priorityHeroHeading = 3
	priorityHeroTagline = 2
	priorityPageBody    = 1
)

func nonBlank(s *string) (string, bool) {
	if s == nil {
		return "", false
	}

	v := strings.TrimSpace(*s)
	return v, v != ""
}

// titleOr defaults only a missing title. A stored empty title is kept.
func titleOr(title *string, def string) string {
	if title == nil {
		return def
	}

	return *title
}

func urlFor(prefix string, slug *string) string {
	if v, ok := nonBlank(slug); ok {
		return prefix + v
	}

	return deadLink
}

func displayNameOf(n *contributor.Name) string {
	if n == nil {
		return ""
	}

	return contributor.DisplayName(*n)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// ComposeStory turns a story record into a search result.
//
// The snippet is the stored excerpt when there is one, else the best
// ranked excerpt of title, body and credits, else the byline.
func ComposeStory(terms []string, story *model.Story) *dto.SearchResult {
	author := displayNameOf(story.Author)
	illustrator := displayNameOf(story.Illustrator)
	byline := contributor.Byline(author, illustrator)

	var snippet *string
	if excerpt, ok := nonBlank(story.Excerpt); ok {
		snippet = &excerpt
	} else {
		snippet = FindBestSnippet(terms, []CandidateField{
			Field(story.Title, priorityTitle),
			Field(story.BodyText, priorityStoryBody),
			TextField(author, priorityCredit),
			TextField(illustrator, priorityCredit),
		})
	}
	if snippet == nil {
		snippet = optional(byline)
	}

	return &dto.SearchResult{
		ID:      story.ID,
		Type:    dto.ResultTypeStory,
		Title:   titleOr(story.Title, untitled),
		URL:     urlFor("/", story.Slug),
		Image:   story.MainImage,
		Snippet: snippet,
		Meta:    optional(byline),
	}
}

// ComposePage turns a page record into a search result.
func ComposePage(terms []string, page *model.Page) *dto.SearchResult {
	return &dto.SearchResult{
		ID:    page.ID,
		Type:  dto.ResultTypePage,
		Title: titleOr(page.Title, untitled),
		URL:   urlFor("/pages/", page.Slug),
		Image: page.HeroImage(),
		Snippet: FindBestSnippet(terms, []CandidateField{
			Field(page.Title, priorityTitle),
			Field(page.HeroHeading(), priorityHeroHeading),
			Field(page.HeroTagline(), priorityHeroTagline),
			Field(page.BodyText, priorityPageBody),
		}),
	}
}

// ComposeContributor turns a contributor record into a search result.
// Contributors never carry a snippet.
func ComposeContributor(person *model.Contributor) *dto.SearchResult {
	title := contributor.DisplayName(person.Name)
	if title == "" {
		title = contributorFallback
	}

	meta := contributorFallback
	return &dto.SearchResult{
		ID:    person.ID,
		Type:  dto.ResultTypeContributor,
		Title: title,
		URL:   urlFor("/contributors/", person.Slug),
		Image: person.Image,
		Meta:  &meta,
	}
}

func composeAll[T any](records []*T, compose func(*T) *dto.SearchResult) []*dto.SearchResult {
	results := make([]*dto.SearchResult, 0, len(records))
	for _, r := range records {
		results = append(results, compose(r))
	}

	return results
}
