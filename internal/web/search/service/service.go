// Package service runs the site search pipeline: normalize the query,
// query every content domain concurrently, rank snippets, compose and
// merge the results.
package service

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/zine-site/internal/web/search/dao"
	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/internal/web/search/model"
	"github.com/Laisky/zine-site/library/log"
)

// Type is the search service.
type Type struct {
	store dao.ContentStore
}

// New creates a search service over store.
func New(store dao.ContentStore) *Type {
	return &Type{store: store}
}

// retrieved holds the raw records of one search, one slice per domain.
type retrieved struct {
	stories      []*model.Story
	pages        []*model.Page
	contributors []*model.Contributor
}

func loggerFromCtx(ctx context.Context) logSDK.Logger {
	if _, ok := gmw.GetGinCtxFromStdCtx(ctx); ok {
		return gmw.GetLogger(ctx)
	}

	return log.Logger
}

// Search runs raw user input through the whole pipeline.
//
// Blank input returns an empty response without touching the store.
// If any domain query fails, the error is returned and no partial
// results are kept.
func (s *Type) Search(ctx context.Context, raw string) (*dto.SearchResponse, error) {
	q := NormalizeQuery(raw)
	if q.Empty() {
		return &dto.SearchResponse{Results: []*dto.SearchResult{}}, nil
	}

	logger := loggerFromCtx(ctx).Named("search").With(
		zap.String("search_id", uuid.NewString()),
		zap.String("query", q.Text),
	)
	startAt := time.Now()

	found, err := s.retrieve(ctx, q)
	if err != nil {
		logger.Warn("retrieve search results", zap.Error(err))
		return nil, errors.Wrapf(err, "search `%s`", q.Text)
	}

	results := MergeResults(
		composeAll(found.contributors, ComposeContributor),
		composeAll(found.stories, func(st *model.Story) *dto.SearchResult {
			return ComposeStory(q.Terms, st)
		}),
		composeAll(found.pages, func(p *model.Page) *dto.SearchResult {
			return ComposePage(q.Terms, p)
		}),
	)

	logger.Debug("search done",
		zap.Int("stories", len(found.stories)),
		zap.Int("pages", len(found.pages)),
		zap.Int("contributors", len(found.contributors)),
		zap.Duration("cost", time.Since(startAt)),
	)
	return &dto.SearchResponse{Query: q.Text, Results: results}, nil
}

// retrieve issues the three domain queries at once and waits for all of them.
func (s *Type) retrieve(ctx context.Context, q dto.NormalizedQuery) (*retrieved, error) {
	pattern := dao.WildcardPattern(q.Text)
	found := new(retrieved)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.store.SearchStories(gctx, pattern)
		if err != nil {
			return errors.Wrap(err, "search stories")
		}

		found.stories = records
		return nil
	})
	g.Go(func() error {
		records, err := s.store.SearchPages(gctx, pattern)
		if err != nil {
			return errors.Wrap(err, "search pages")
		}

		found.pages = records
		return nil
	})
	g.Go(func() error {
		records, err := s.store.SearchContributors(gctx, pattern)
		if err != nil {
			return errors.Wrap(err, "search contributors")
		}

		found.contributors = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return found, nil
}
