package service

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/zine-site/internal/web/search/dao"
	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/internal/web/search/model"
	"github.com/Laisky/zine-site/library/contributor"
	"github.com/Laisky/zine-site/library/log"
)

func TestSearchEmptyQuery(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	svc := New(store)

	for _, raw := range []string{"", "   ", "\t"} {
		resp, err := svc.Search(ctx, raw)
		require.NoError(t, err)
		require.Equal(t, "", resp.Query)
		require.NotNil(t, resp.Results)
		require.Empty(t, resp.Results)
	}
	require.Zero(t, atomic.LoadInt32(&store.calls))
}

func TestSearchRiver(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{
		stories: []*model.Story{{
			ID:       "s1",
			Title:    ptr("The River Bend"),
			Slug:     ptr("the-river-bend"),
			BodyText: ptr("a quiet river at dawn"),
			Author:   &contributor.Name{Name: ptr("Jo Ann Smith")},
		}},
		pages: []*model.Page{{
			ID:    "p1",
			Title: ptr("About"),
			Slug:  ptr("about"),
			Hero:  &model.PageHero{Tagline: ptr("Life by the river")},
		}},
		contributors: []*model.Contributor{{
			ID:   "c1",
			Name: contributor.Name{GivenName: ptr("Rivera"), FamilyName: ptr("Cruz")},
			Slug: ptr("rivera-cruz"),
		}},
	}

	resp, err := New(store).Search(ctx, "  river ")
	require.NoError(t, err)
	require.Equal(t, "river", resp.Query)
	require.Equal(t, int32(3), atomic.LoadInt32(&store.calls))
	require.ElementsMatch(t, []string{"river*", "river*", "river*"}, store.patterns)

	require.Len(t, resp.Results, 3)

	c := resp.Results[0]
	require.Equal(t, dto.ResultTypeContributor, c.Type)
	require.Equal(t, "Rivera Cruz", c.Title)
	require.Equal(t, "/contributors/rivera-cruz", c.URL)
	require.Nil(t, c.Snippet)

	s := resp.Results[1]
	require.Equal(t, dto.ResultTypeStory, s.Type)
	require.Equal(t, "The River Bend", s.Title)
	require.Equal(t, "/the-river-bend", s.URL)
	require.Equal(t, "The River Bend", *s.Snippet)
	require.Equal(t, "Jo Ann Smith", *s.Meta)

	p := resp.Results[2]
	require.Equal(t, dto.ResultTypePage, p.Type)
	require.Equal(t, "/pages/about", p.URL)
	require.Equal(t, "Life by the river", *p.Snippet)
}

func TestSearchNoMatches(t *testing.T) {
	resp, err := New(&fakeStore{}).Search(context.Background(), "nothing")
	require.NoError(t, err)
	require.Equal(t, "nothing", resp.Query)
	require.NotNil(t, resp.Results)
	require.Empty(t, resp.Results)
}

func TestSearchFailClosed(t *testing.T) {
	boom := errors.New("connection refused")
	store := &fakeStore{
		stories:  []*model.Story{{ID: "s1"}},
		pagesErr: boom,
	}

	resp, err := New(store).Search(context.Background(), "river")
	require.Nil(t, resp)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "search pages")
}

func TestSearchQueriesDomainsConcurrently(t *testing.T) {
	// every query waits until all three have started
	var started sync.WaitGroup
	started.Add(3)
	store := &fakeStore{
		stories:      []*model.Story{{ID: "s1", Title: ptr("The River Bend")}},
		pages:        []*model.Page{{ID: "p1", Title: ptr("River notes")}},
		contributors: []*model.Contributor{{ID: "c1", Name: contributor.Name{Name: ptr("Rivera Cruz")}}},
		beforeReturn: func(context.Context, string) {
			started.Done()
			started.Wait()
		},
	}

	var (
		resp *dto.SearchResponse
		err  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err = New(store).Search(context.Background(), "river")
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("domain queries did not run at the same time")
	}

	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	require.Equal(t, dto.ResultTypeContributor, resp.Results[0].Type)
}

func TestSearchDiscardsSiblingsFinishingAfterFailure(t *testing.T) {
	boom := errors.New("connection refused")
	var late int32
	store := &fakeStore{
		stories:      []*model.Story{{ID: "s1", Title: ptr("The River Bend")}},
		contributors: []*model.Contributor{{ID: "c1", Name: contributor.Name{Name: ptr("Rivera Cruz")}}},
		pagesErr:     boom,
		beforeReturn: func(ctx context.Context, domain string) {
			if domain == "pages" {
				return
			}

			// siblings only return once the failure cancelled them
			<-ctx.Done()
			atomic.AddInt32(&late, 1)
		},
	}

	resp, err := New(store).Search(context.Background(), "river")
	require.Nil(t, resp)
	require.ErrorIs(t, err, boom)
	require.Equal(t, int32(2), atomic.LoadInt32(&late))
}

func TestSearchKeepsInnerWildcardLiteral(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() // nolint: errcheck
	mock.MatchExpectationsInOrder(false)

	re := `(^|[^[:alnum:]_])river\*`
	for _, from := range []string{"FROM stories s", "FROM pages", "FROM contributors"} {
		mock.ExpectQuery(regexp.QuoteMeta(from)).
			WithArgs(re, dao.MaxResultsPerDomain).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	svc := New(dao.NewPostgresStore(log.Logger.Named("test"), db))
	resp, err := svc.Search(context.Background(), "river*")
	require.NoError(t, err)
	require.Equal(t, "river*", resp.Query)
	require.NotNil(t, resp.Results)
	require.Empty(t, resp.Results)
	require.NoError(t, mock.ExpectationsWereMet())
}
