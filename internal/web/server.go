// Package web gin server
package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
	gmw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/Laisky/zine-site/internal/web/search/controller"
	"github.com/Laisky/zine-site/library/config"
	"github.com/Laisky/zine-site/library/log"
	"github.com/Laisky/zine-site/library/throttle"
)

// ErrMsgThrottled is returned to callers over their request rate.
const ErrMsgThrottled = "deny by throttle"

// NewRouter builds the gin engine with middlewares and routes.
// A nil limiter leaves search unthrottled.
func NewRouter(search *controller.Type, allowedOriginSuffixes []string, limiter *throttle.Throttle) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLogger(log.Logger.Named("gin")),
		),
		newCORSMiddleware(allowedOriginSuffixes),
	)

	status := newStatusHandler()
	router.GET("/health", status)
	router.HEAD("/health", status)
	router.OPTIONS("/health", status)

	gql := gmw.FromStd(newGraphQLHandler(NewResolver(search)).ServeHTTP)
	throttled := router.Group("", newThrottleMiddleware(limiter))
	search.Register(throttled)
	throttled.GET("/query/", gql)
	throttled.POST("/query/", gql)
	router.GET("/ui/", gmw.FromStd(playground.Handler("zine search playground", "/query/")))

	return router
}

// newGraphQLHandler serves the search schema over GET and POST.
func newGraphQLHandler(resolver ResolverRoot) *handler.Server {
	h := handler.New(NewExecutableSchema(Config{Resolvers: resolver}))
	h.AddTransport(transport.GET{})
	h.AddTransport(transport.POST{})
	h.AddTransport(transport.Options{})
	h.Use(extension.Introspection{})
	h.SetErrorPresenter(func(ctx context.Context, e error) *gqlerror.Error {
		err := graphql.DefaultErrorPresenter(ctx, e)
		// the resolver already logged the cause of a failed search
		if !strings.Contains(e.Error(), controller.ErrMsgUnavailable) {
			log.Logger.Warn("graphql server", zap.Error(err.Err))
		}

		return err
	})

	return h
}

// RunServer blocks serving http on addr.
func RunServer(addr string, search *controller.Type) {
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter, err := loadThrottle()
	if err != nil {
		log.Logger.Panic("create search throttle", zap.Error(err))
	}

	router := NewRouter(search,
		gconfig.Shared.GetStringSlice("settings.web.allowed_origin_suffixes"), limiter)

	log.Logger.Info("listening on http", zap.String("addr", addr))
	log.Logger.Panic("httpServer exit", zap.Error(router.Run(addr)))
}

// loadThrottle builds the search throttle from settings.web.throttle,
// or returns nil when total_per_sec is unset.
func loadThrottle() (*throttle.Throttle, error) {
	if gconfig.Shared.Get("settings.web.throttle.total_per_sec") == nil {
		return nil, nil
	}

	totalPerSec := gconfig.Shared.GetInt("settings.web.throttle.total_per_sec")
	eachPerSec := config.IntOr("settings.web.throttle.each_per_sec", totalPerSec)
	return throttle.New(throttle.Cfg{
		TotalNPerSec:   totalPerSec,
		TotalBurst:     config.IntOr("settings.web.throttle.total_burst", totalPerSec),
		EachKeyNPerSec: eachPerSec,
		EachKeyBurst:   config.IntOr("settings.web.throttle.each_burst", eachPerSec),
	})
}

// newThrottleMiddleware rejects callers over their rate, keyed by client ip.
func newThrottleMiddleware(limiter *throttle.Throttle) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if limiter != nil && !limiter.Allow(ctx.ClientIP()) {
			gmw.GetLogger(ctx).Debug("throttled", zap.String("client", ctx.ClientIP()))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": ErrMsgThrottled})
			return
		}

		ctx.Next()
	}
}

func newStatusHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Allow", "GET, HEAD, OPTIONS")
		switch ctx.Request.Method {
		case http.MethodGet:
			ctx.String(http.StatusOK, "ok")
		default:
			ctx.Status(http.StatusOK)
		}
	}
}

// originAllowed reports whether the origin host is one of suffixes or a subdomain of one.
func originAllowed(origin string, suffixes []string) bool {
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, suffix := range suffixes {
		suffix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(suffix), "."))
		if suffix == "" {
			continue
		}
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}

	return false
}

func setCORSHeaders(ctx *gin.Context, origin string) {
	ctx.Header("Access-Control-Allow-Origin", origin)
	ctx.Header("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS, POST")
	ctx.Header("Access-Control-Allow-Headers", "*")
	ctx.Header("Access-Control-Max-Age", "86400") // 24 hours
}

// newCORSMiddleware lets browsers on the configured site domains call the api.
func newCORSMiddleware(allowedOriginSuffixes []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := strings.TrimSpace(ctx.Request.Header.Get("Origin"))
		preflight := ctx.Request.Method == http.MethodOptions

		switch {
		case origin == "" && preflight:
			setCORSHeaders(ctx, "*")
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		case origin != "" && originAllowed(origin, allowedOriginSuffixes):
			setCORSHeaders(ctx, origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Vary", "Origin")
			if preflight {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		case origin != "" && preflight:
			// preflight from a disallowed origin
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}
