package dao

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/zine-site/internal/web/search/model"
	"github.com/Laisky/zine-site/library/db/redis"
)

// Cache is the byte store CachedStore keeps query results in.
// *redis.DB and *kv.Kv satisfy it.
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// CachedStore serves repeated patterns from Cache and falls through to
// the wrapped store on a miss. Cache failures are logged and never fail a query.
type CachedStore struct {
	logger logSDK.Logger
	next   ContentStore
	cache  Cache
	ttl    time.Duration
}

// NewCachedStore wraps next with a result cache.
func NewCachedStore(logger logSDK.Logger, next ContentStore, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{
		logger: logger,
		next:   next,
		cache:  cache,
		ttl:    ttl,
	}
}

// cacheKey derives a fixed-length key for domain and pattern.
func cacheKey(domain, pattern string) string {
	sum := sha256.Sum256([]byte(pattern))
	return redis.KeyPrefixSearch + domain + "/" + hex.EncodeToString(sum[:])
}

func cachedQuery[T any](ctx context.Context, s *CachedStore,
	domain, pattern string,
	load func(context.Context, string) ([]*T, error),
) ([]*T, error) {
	key := cacheKey(domain, pattern)
	logger := s.logger.With(zap.String("domain", domain), zap.String("key", key))

	raw, found, err := s.cache.GetBytes(ctx, key)
	switch {
	case err != nil:
		logger.Warn("read search cache", zap.Error(err))
	case found:
		docs := []*T{}
		if err = json.Unmarshal(raw, &docs); err == nil {
			logger.Debug("search cache hit")
			return docs, nil
		}

		logger.Warn("decode search cache", zap.Error(err))
	}

	docs, err := load(ctx, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", domain)
	}

	if raw, err = json.Marshal(docs); err != nil {
		logger.Warn("encode search cache", zap.Error(err))
		return docs, nil
	}
	if err = s.cache.SetBytes(ctx, key, raw, s.ttl); err != nil {
		logger.Warn("write search cache", zap.Error(err))
	}

	return docs, nil
}

// SearchStories implements ContentStore.
func (s *CachedStore) SearchStories(ctx context.Context, pattern string) ([]*model.Story, error) {
	return cachedQuery(ctx, s, "stories", pattern, s.next.SearchStories)
}

// SearchPages implements ContentStore.
func (s *CachedStore) SearchPages(ctx context.Context, pattern string) ([]*model.Page, error) {
	return cachedQuery(ctx, s, "pages", pattern, s.next.SearchPages)
}

// SearchContributors implements ContentStore.
func (s *CachedStore) SearchContributors(ctx context.Context, pattern string) ([]*model.Contributor, error) {
	return cachedQuery(ctx, s, "contributors", pattern, s.next.SearchContributors)
}
