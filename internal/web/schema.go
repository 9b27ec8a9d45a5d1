package web

import (
	"bytes"
	"context"
	_ "embed"
	"strconv"

	"github.com/99designs/gqlgen/graphql"
	"github.com/Laisky/errors/v2"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/internal/web/search/model"
)

//go:embed schema.graphql
var schemaSource string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSource})

// ResolverRoot returns the resolvers of every root type.
type ResolverRoot interface {
	Query() QueryResolver
}

// QueryResolver resolves the fields of Query.
type QueryResolver interface {
	Search(ctx context.Context, q string) (*dto.SearchResponse, error)
}

// Config configures NewExecutableSchema.
type Config struct {
	Resolvers ResolverRoot
}

// NewExecutableSchema binds schema.graphql to its resolvers.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{resolvers: cfg.Resolvers}
}

type executableSchema struct {
	resolvers ResolverRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

// Complexity leaves every field at the default cost.
func (e *executableSchema) Complexity(_ context.Context, _, _ string, _ int, _ map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	if opCtx.Operation.Operation != ast.Query {
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	ec := &executionContext{OperationContext: opCtx, resolvers: e.resolvers}
	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		data, ok := ec.query(ctx, opCtx.Operation.SelectionSet)
		if !ok {
			data = graphql.Null
		}

		var buf bytes.Buffer
		data.MarshalGQL(&buf)
		return &graphql.Response{Data: buf.Bytes()}
	}
}

type executionContext struct {
	*graphql.OperationContext
	resolvers ResolverRoot
}

// fieldResolver resolves one selected field. ok is false when a non-null
// field came out null, which nulls the enclosing object too.
type fieldResolver func(field graphql.CollectedField, path ast.Path) (v graphql.Marshaler, ok bool)

func childPath(path ast.Path, elem ast.PathElement) ast.Path {
	out := make(ast.Path, 0, len(path)+1)
	return append(append(out, path...), elem)
}

// fieldError records err against path in the response errors.
func (ec *executionContext) fieldError(ctx context.Context, path ast.Path, err error) {
	graphql.AddError(ctx, &gqlerror.Error{Err: err, Message: err.Error(), Path: path})
}

func (ec *executionContext) object(sel ast.SelectionSet, typeName string,
	path ast.Path, resolve fieldResolver,
) (graphql.Marshaler, bool) {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{typeName})
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		if field.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(typeName)
			continue
		}

		v, ok := resolve(field, childPath(path, ast.PathName(field.Alias)))
		if !ok {
			return nil, false
		}
		out.Values[i] = v
	}

	return out, true
}

func nullableString(s string) graphql.Marshaler {
	if s == "" {
		return graphql.Null
	}

	return graphql.MarshalString(s)
}

func optionalString(s *string) graphql.Marshaler {
	if s == nil {
		return graphql.Null
	}

	return graphql.MarshalString(*s)
}

func unknownField(typeName, field string) {
	panic("unknown field " + strconv.Quote(field) + " on " + typeName)
}

func (ec *executionContext) query(ctx context.Context, sel ast.SelectionSet) (graphql.Marshaler, bool) {
	return ec.object(sel, "Query", nil, func(field graphql.CollectedField, path ast.Path) (graphql.Marshaler, bool) {
		switch field.Name {
		case "search":
			return ec.querySearch(ctx, field, path)
		case "__schema":
			return ec.introspectSchema(ctx, field, path)
		case "__type":
			return ec.introspectTypeByName(ctx, field, path)
		default:
			unknownField("Query", field.Name)
			return nil, false
		}
	})
}

func (ec *executionContext) querySearch(ctx context.Context,
	field graphql.CollectedField, path ast.Path,
) (graphql.Marshaler, bool) {
	q, _ := field.ArgumentMap(ec.Variables)["q"].(string)
	resp, err := ec.resolvers.Query().Search(ctx, q)
	if err != nil {
		ec.fieldError(ctx, path, err)
		return nil, false
	}
	if resp == nil {
		ec.fieldError(ctx, path, errors.New("search must not be null"))
		return nil, false
	}

	return ec.searchResponse(ctx, field.Selections, path, resp)
}

func (ec *executionContext) searchResponse(ctx context.Context, sel ast.SelectionSet,
	path ast.Path, resp *dto.SearchResponse,
) (graphql.Marshaler, bool) {
	return ec.object(sel, "SearchResponse", path, func(field graphql.CollectedField, p ast.Path) (graphql.Marshaler, bool) {
		switch field.Name {
		case "query":
			return graphql.MarshalString(resp.Query), true
		case "results":
			list := make(graphql.Array, 0, len(resp.Results))
			for i, r := range resp.Results {
				v, ok := ec.searchResult(ctx, field.Selections, childPath(p, ast.PathIndex(i)), r)
				if !ok {
					return nil, false
				}
				list = append(list, v)
			}

			return list, true
		default:
			unknownField("SearchResponse", field.Name)
			return nil, false
		}
	})
}

func (ec *executionContext) searchResult(ctx context.Context, sel ast.SelectionSet,
	path ast.Path, r *dto.SearchResult,
) (graphql.Marshaler, bool) {
	if r == nil {
		ec.fieldError(ctx, path, errors.New("search result must not be null"))
		return nil, false
	}

	return ec.object(sel, "SearchResult", path, func(field graphql.CollectedField, p ast.Path) (graphql.Marshaler, bool) {
		switch field.Name {
		case "id":
			return graphql.MarshalString(r.ID), true
		case "type":
			return graphql.MarshalString(string(r.Type)), true
		case "title":
			return graphql.MarshalString(r.Title), true
		case "url":
			return graphql.MarshalString(r.URL), true
		case "image":
			return ec.image(field.Selections, p, r.Image)
		case "snippet":
			return optionalString(r.Snippet), true
		case "meta":
			return optionalString(r.Meta), true
		default:
			unknownField("SearchResult", field.Name)
			return nil, false
		}
	})
}

func (ec *executionContext) image(sel ast.SelectionSet, path ast.Path, img *model.Image) (graphql.Marshaler, bool) {
	if img == nil {
		return graphql.Null, true
	}

	return ec.object(sel, "Image", path, func(field graphql.CollectedField, _ ast.Path) (graphql.Marshaler, bool) {
		switch field.Name {
		case "assetRef":
			return graphql.MarshalString(img.AssetRef), true
		case "url":
			return graphql.MarshalString(img.URL), true
		case "alt":
			return graphql.MarshalString(img.Alt), true
		default:
			unknownField("Image", field.Name)
			return nil, false
		}
	})
}
