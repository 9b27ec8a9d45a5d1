package service

import "github.com/Laisky/zine-site/internal/web/search/dto"

// MergeResults concatenates per-domain results in the fixed order
// contributors, stories, pages. Nothing is re-sorted or de-duplicated.
func MergeResults(contributors, stories, pages []*dto.SearchResult) []*dto.SearchResult {
	byType := map[dto.ResultType][]*dto.SearchResult{
		dto.ResultTypeContributor: contributors,
		dto.ResultTypeStory:       stories,
		dto.ResultTypePage:        pages,
	}

	merged := make([]*dto.SearchResult, 0, len(contributors)+len(stories)+len(pages))
	for _, typ := range dto.AllResultTypes {
		merged = append(merged, byType[typ]...)
	}

	return merged
}
