package tui

import (
	"fmt"
	"strings"

	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/library/contributor"
)

// RenderResult renders one search result as a short block of styled lines.
func RenderResult(r *dto.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(badgeStyle.Render(fmt.Sprintf("[%s]", r.Type)))
	sb.WriteString(" ")
	if initials := avatarInitials(r); initials != "" {
		sb.WriteString(avatarStyle.Render(initials))
		sb.WriteString(" ")
	}
	sb.WriteString(resultTitleStyle.Render(r.Title))
	if r.Meta != nil {
		sb.WriteString(" ")
		sb.WriteString(subtitleStyle.Render(*r.Meta))
	}
	sb.WriteString("\n  ")
	sb.WriteString(urlStyle.Render(r.URL))
	if r.Snippet != nil {
		sb.WriteString("\n")
		sb.WriteString(snippetStyle.Render(*r.Snippet))
	}

	return sb.String()
}

// avatarInitials stands in for the portrait of a contributor without an image.
func avatarInitials(r *dto.SearchResult) string {
	if r.Type != dto.ResultTypeContributor || r.Image != nil {
		return ""
	}

	return contributor.Initials(contributor.Name{Name: &r.Title})
}

// RenderResponse renders a whole search response for terminal output.
func RenderResponse(resp *dto.SearchResponse) string {
	if resp.Query == "" {
		return subtitleStyle.Render("nothing to search")
	}

	if len(resp.Results) == 0 {
		return subtitleStyle.Render(fmt.Sprintf("no results for %q", resp.Query))
	}

	blocks := make([]string, 0, len(resp.Results)+1)
	blocks = append(blocks, headerStyle.Render(
		fmt.Sprintf("%d results for %q", len(resp.Results), resp.Query)))
	for _, r := range resp.Results {
		blocks = append(blocks, RenderResult(r))
	}

	return strings.Join(blocks, "\n\n")
}
