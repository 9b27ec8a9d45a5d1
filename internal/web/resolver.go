package web

import (
	"github.com/Laisky/zine-site/internal/web/search/controller"
)

// Resolver is the root of the graphql resolvers.
type Resolver struct {
	search *controller.Type
}

// NewResolver roots the graphql resolvers on the search controller.
func NewResolver(search *controller.Type) *Resolver {
	return &Resolver{search: search}
}

// Query returns the resolver of the Query type.
func (r *Resolver) Query() QueryResolver {
	return r.search.QueryResolver
}
