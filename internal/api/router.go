package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sydlexius/songscape/internal/api/middleware"
	"github.com/sydlexius/songscape/internal/corpus"
	"github.com/sydlexius/songscape/internal/explore"
)

// Explorer answers artist lookups.
type Explorer interface {
	Query(ctx context.Context, raw string) explore.Response
}

// StatsSource reports what the corpus holds.
type StatsSource interface {
	Stats() corpus.Stats
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Explorer      Explorer
	Corpus        StatsSource
	ArtistLimiter *middleware.ClientRateLimiter
	Logger        *slog.Logger
	StaticDir     string
	CORSOrigins   []string
	// ContentSecurityPolicy overrides the default policy when set.
	ContentSecurityPolicy string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	explorer      Explorer
	corpus        StatsSource
	artistLimiter *middleware.ClientRateLimiter
	logger        *slog.Logger
	staticAssets  *StaticAssets
	corsOrigins   []string
	csp           string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	logger := deps.Logger.With(slog.String("component", "api"))
	return &Router{
		explorer:      deps.Explorer,
		corpus:        deps.Corpus,
		artistLimiter: deps.ArtistLimiter,
		logger:        logger,
		staticAssets:  NewStaticAssets(deps.StaticDir, logger),
		corsOrigins:   deps.CORSOrigins,
		csp:           deps.ContentSecurityPolicy,
	}
}

// Handler returns the root HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/artist", r.artistLimiter.Middleware(http.HandlerFunc(r.handleArtist)))
	mux.HandleFunc("GET /api/health", r.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Static front end
	mux.Handle("GET /", r.staticAssets.Handler())

	var h http.Handler = mux
	if len(r.corsOrigins) > 0 {
		h = cors.Handler(cors.Options{
			AllowedOrigins: r.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		})(h)
	}
	h = middleware.SecurityHeaders(r.csp)(h)
	return middleware.Logging(r.logger)(h)
}
