package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/zine-site/internal/web/search/controller"
	"github.com/Laisky/zine-site/internal/web/search/dto"
	"github.com/Laisky/zine-site/internal/web/search/model"
	"github.com/Laisky/zine-site/library/throttle"
)

type graphQLSearcher struct {
	raw  string
	resp *dto.SearchResponse
	err  error
}

func (s *graphQLSearcher) Search(_ context.Context, raw string) (*dto.SearchResponse, error) {
	s.raw = raw
	return s.resp, s.err
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Path    []any  `json:"path"`
	} `json:"errors"`
}

func postGraphQL(t *testing.T, router http.Handler, query string, vars map[string]any) (int, graphQLResponse, string) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/query/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp graphQLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp, w.Body.String()
}

func riverSearchResponse() *dto.SearchResponse {
	snippet := "Life by the river"
	meta := "Contributor"
	return &dto.SearchResponse{
		Query: "river",
		Results: []*dto.SearchResult{
			{
				ID:    "c1",
				Type:  dto.ResultTypeContributor,
				Title: "Rivera Cruz",
				URL:   "/contributors/rivera-cruz",
				Image: &model.Image{URL: "https://cdn/c.png", Alt: "portrait"},
				Meta:  &meta,
			},
			{
				ID:      "p1",
				Type:    dto.ResultTypePage,
				Title:   "About",
				URL:     "/pages/about",
				Snippet: &snippet,
			},
		},
	}
}

func TestGraphQLSearch(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	svc := &graphQLSearcher{resp: riverSearchResponse()}
	router := NewRouter(controller.New(svc), nil, nil)

	code, resp, raw := postGraphQL(t, router, `query Search($q: String!) {
		search(q: $q) {
			query
			results { __typename id type title url snippet meta image { url alt } }
		}
	}`, map[string]any{"q": "  river "})
	require.Equal(t, http.StatusOK, code, raw)
	require.Empty(t, resp.Errors, raw)
	require.Equal(t, "  river ", svc.raw)
	require.JSONEq(t, `{"search":{
		"query":"river",
		"results":[
			{"__typename":"SearchResult","id":"c1","type":"Contributor","title":"Rivera Cruz",
			 "url":"/contributors/rivera-cruz","snippet":null,"meta":"Contributor",
			 "image":{"url":"https://cdn/c.png","alt":"portrait"}},
			{"__typename":"SearchResult","id":"p1","type":"Page","title":"About",
			 "url":"/pages/about","snippet":"Life by the river","meta":null,"image":null}
		]
	}}`, string(resp.Data))
}

func TestGraphQLSearchAliasAndGET(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	svc := &graphQLSearcher{resp: &dto.SearchResponse{Results: []*dto.SearchResult{}}}
	router := NewRouter(controller.New(svc), nil, nil)

	q := url.Values{}
	q.Set("query", `{ found: search(q: "") { query n: results { id } } }`)
	req := httptest.NewRequest(http.MethodGet, "/query/?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"data":{"found":{"query":"","n":[]}}}`, w.Body.String())
}

func TestGraphQLSearchUnavailable(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	svc := &graphQLSearcher{err: errors.New("dial tcp: connection refused")}
	router := NewRouter(controller.New(svc), nil, nil)

	code, resp, raw := postGraphQL(t, router, `{ search(q: "river") { query } }`, nil)
	require.Equal(t, http.StatusOK, code, raw)
	require.JSONEq(t, `null`, string(resp.Data))
	require.Len(t, resp.Errors, 1)
	require.Equal(t, controller.ErrMsgUnavailable, resp.Errors[0].Message)
	require.Equal(t, []any{"search"}, resp.Errors[0].Path)
	require.NotContains(t, raw, "connection refused")
}

func TestGraphQLIntrospection(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	router := NewRouter(controller.New(&graphQLSearcher{}), nil, nil)

	code, resp, raw := postGraphQL(t, router, `{
		__schema { queryType { name } }
		__type(name: "SearchResult") {
			name
			kind
			fields { name type { kind name ofType { name } } }
		}
	}`, nil)
	require.Equal(t, http.StatusOK, code, raw)
	require.Empty(t, resp.Errors, raw)

	var data struct {
		Schema struct {
			QueryType struct {
				Name string `json:"name"`
			} `json:"queryType"`
		} `json:"__schema"`
		Type struct {
			Name   string `json:"name"`
			Kind   string `json:"kind"`
			Fields []struct {
				Name string `json:"name"`
				Type struct {
					Kind   string  `json:"kind"`
					Name   *string `json:"name"`
					OfType *struct {
						Name string `json:"name"`
					} `json:"ofType"`
				} `json:"type"`
			} `json:"fields"`
		} `json:"__type"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "Query", data.Schema.QueryType.Name)
	require.Equal(t, "SearchResult", data.Type.Name)
	require.Equal(t, "OBJECT", data.Type.Kind)

	names := make([]string, 0, len(data.Type.Fields))
	for _, f := range data.Type.Fields {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"id", "type", "title", "url", "image", "snippet", "meta"}, names)

	typeField := data.Type.Fields[1]
	require.Equal(t, "NON_NULL", typeField.Type.Kind)
	require.Nil(t, typeField.Type.Name)
	require.Equal(t, "SearchResultType", typeField.Type.OfType.Name)

	imageField := data.Type.Fields[4]
	require.Equal(t, "OBJECT", imageField.Type.Kind)
	require.Equal(t, "Image", *imageField.Type.Name)
}

func TestGraphQLThrottled(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	limiter, err := throttle.New(throttle.Cfg{
		TotalNPerSec: 1, TotalBurst: 100, EachKeyNPerSec: 1, EachKeyBurst: 1,
	})
	require.NoError(t, err)
	router := NewRouter(controller.New(&graphQLSearcher{resp: riverSearchResponse()}), nil, limiter)

	code, _, raw := postGraphQL(t, router, `{ search(q: "river") { query } }`, nil)
	require.Equal(t, http.StatusOK, code, raw)

	body := []byte(`{"query":"{ search(q: \"river\") { query } }"}`)
	req := httptest.NewRequest(http.MethodPost, "/query/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.JSONEq(t, `{"error":"deny by throttle"}`, w.Body.String())
}

func TestGraphQLPlayground(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	router := NewRouter(controller.New(&graphQLSearcher{}), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/ui/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/query/")
}
