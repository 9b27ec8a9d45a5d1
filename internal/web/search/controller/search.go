// Package controller exposes the search service over HTTP and graphql.
package controller

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/library/log"
)

// ErrMsgUnavailable is the only failure detail returned to clients.
const ErrMsgUnavailable = "search unavailable"

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, raw string) (*dto.SearchResponse, error)
}

// QueryResolver resolves the search field of the graphql Query type.
type QueryResolver struct {
	svc Searcher
}

// Type is the search controller.
type Type struct {
	QueryResolver *QueryResolver

	svc Searcher
}

// New creates a search controller.
func New(svc Searcher) *Type {
	return &Type{
		QueryResolver: &QueryResolver{svc: svc},
		svc:           svc,
	}
}

func loggerFromCtx(ctx context.Context) logSDK.Logger {
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		return ctxLogger
	}

	return log.Logger
}

// Search resolves `search(q: String!)`.
// Store failures reach the caller only as ErrMsgUnavailable.
func (r *QueryResolver) Search(ctx context.Context, q string) (*dto.SearchResponse, error) {
	resp, err := r.svc.Search(ctx, q)
	if err != nil {
		loggerFromCtx(ctx).Error("search", zap.Error(err))
		return nil, errors.New(ErrMsgUnavailable)
	}

	return resp, nil
}

// Register mounts the search routes on r.
func (c *Type) Register(r gin.IRoutes) {
	r.GET("/search", c.Search)
}

// Search handles GET /search?q=<raw>.
func (c *Type) Search(ctx *gin.Context) {
	resp, err := c.svc.Search(ctx, ctx.Query("q"))
	if err != nil {
		gmw.GetLogger(ctx).Error("search", zap.Error(err))
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrMsgUnavailable})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
