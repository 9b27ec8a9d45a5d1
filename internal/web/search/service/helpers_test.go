package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Laisky/zine-site/internal/web/search/model"
)

func ptr(s string) *string { return &s }

// fakeStore is an in-memory ContentStore that records every call.
type fakeStore struct {
	stories      []*model.Story
	pages        []*model.Page
	contributors []*model.Contributor

	storiesErr, pagesErr, contributorsErr error

	// beforeReturn runs inside every query with its domain name
	beforeReturn func(ctx context.Context, domain string)

	calls int32

	mu       sync.Mutex
	patterns []string
}

func (f *fakeStore) record(ctx context.Context, domain, pattern string) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.patterns = append(f.patterns, pattern)
	f.mu.Unlock()

	if f.beforeReturn != nil {
		f.beforeReturn(ctx, domain)
	}
}

func (f *fakeStore) SearchStories(ctx context.Context, pattern string) ([]*model.Story, error) {
	f.record(ctx, "stories", pattern)
	if f.storiesErr != nil {
		return nil, f.storiesErr
	}
	return f.stories, nil
}

func (f *fakeStore) SearchPages(ctx context.Context, pattern string) ([]*model.Page, error) {
	f.record(ctx, "pages", pattern)
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return f.pages, nil
}

func (f *fakeStore) SearchContributors(ctx context.Context, pattern string) ([]*model.Contributor, error) {
	f.record(ctx, "contributors", pattern)
	if f.contributorsErr != nil {
		return nil, f.contributorsErr
	}
	return f.contributors, nil
}
