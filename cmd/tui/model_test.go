package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/internal/web/search/model"
)

type fakeSearcher struct {
	resp *dto.SearchResponse
	err  error
	raw  []string
}

func (f *fakeSearcher) Search(_ context.Context, raw string) (*dto.SearchResponse, error) {
	f.raw = append(f.raw, raw)
	return f.resp, f.err
}

func riverResponse() *dto.SearchResponse {
	meta := "Contributor"
	snippet := "Life by the river"
	return &dto.SearchResponse{
		Query: "river",
		Results: []*dto.SearchResult{
			{ID: "c1", Type: dto.ResultTypeContributor, Title: "Rivera Cruz", URL: "/contributors/rivera-cruz", Meta: &meta},
			{ID: "p1", Type: dto.ResultTypePage, Title: "About", URL: "/pages/about", Snippet: &snippet},
		},
	}
}

func TestModelSearchFlow(t *testing.T) {
	searcher := &fakeSearcher{resp: riverResponse()}
	m := NewModel(context.Background(), searcher)
	m.input.SetValue("river")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = next.(Model)
	require.Equal(t, ViewSearching, m.state)

	next, _ = m.Update(m.search("river")())
	m = next.(Model)
	require.Equal(t, ViewResults, m.state)
	require.NoError(t, m.err)
	require.Len(t, m.results.Items(), 2)
	require.Equal(t, []string{"river"}, searcher.raw)

	first := m.results.Items()[0].(resultItem)
	require.Equal(t, "[Contributor] Rivera Cruz", first.Title())
	require.Equal(t, "/contributors/rivera-cruz", first.Description())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	require.Equal(t, ViewInput, m.state)
	require.Equal(t, "", m.input.Value())
}

func TestModelSearchError(t *testing.T) {
	m := NewModel(context.Background(), &fakeSearcher{err: errors.New("boom")})

	next, _ := m.Update(m.search("river")())
	m = next.(Model)
	require.Equal(t, ViewResults, m.state)
	require.Error(t, m.err)
	require.Contains(t, m.View(), "search unavailable")
}

func TestRenderResponse(t *testing.T) {
	out := RenderResponse(riverResponse())
	require.Contains(t, out, "2 results for \"river\"")
	require.Contains(t, out, "Rivera Cruz")
	require.Contains(t, out, "/pages/about")
	require.Contains(t, out, "Life by the river")
	require.Less(t, strings.Index(out, "Rivera Cruz"), strings.Index(out, "About"))

	require.Contains(t, out, "RC")

	require.Contains(t, RenderResponse(&dto.SearchResponse{Query: "x"}), "no results")
	require.Contains(t, RenderResponse(&dto.SearchResponse{}), "nothing to search")
}

func TestAvatarInitials(t *testing.T) {
	require.Equal(t, "RC", avatarInitials(&dto.SearchResult{Type: dto.ResultTypeContributor, Title: "Rivera Cruz"}))
	require.Equal(t, "BO", avatarInitials(&dto.SearchResult{Type: dto.ResultTypeContributor, Title: "Bo"}))
	require.Empty(t, avatarInitials(&dto.SearchResult{
		Type:  dto.ResultTypeContributor,
		Title: "Rivera Cruz",
		Image: &model.Image{URL: "https://cdn/c.png"},
	}))
	require.Empty(t, avatarInitials(&dto.SearchResult{Type: dto.ResultTypeStory, Title: "The River Bend"}))
}
