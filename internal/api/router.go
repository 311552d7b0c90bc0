// Package api wires the HTTP surface: health probes, on-demand reverse
// engineering, pattern library search, and parser metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	apihandler "github.com/schemarev/schemarev/internal/api/handler"
	"github.com/schemarev/schemarev/internal/entity"
)

// RouterDeps holds optional dependencies for the router. Pool and Patterns
// are nil when the pattern library is disabled.
type RouterDeps struct {
	Pool     *pgxpool.Pool
	Patterns apihandler.PatternStore
	Semantic apihandler.SemanticStore
}

func NewRouter(logger *zap.SugaredLogger, engine *entity.Engine, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	if deps == nil {
		deps = &RouterDeps{}
	}

	health := apihandler.NewHealthHandler(deps.Pool)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		reverse := apihandler.NewReverseHandler(logger, engine)
		r.Post("/reverse", reverse.Reverse)

		patterns := apihandler.NewPatternHandler(logger, deps.Patterns, deps.Semantic)
		r.Route("/patterns", func(r chi.Router) {
			r.Get("/search", patterns.Search)
			r.Get("/similar", patterns.Similar)
			r.Get("/pairs", patterns.Pairs)
		})

		metrics := apihandler.NewMetricsHandler(logger, engine)
		r.Get("/metrics", metrics.Get)
		r.Post("/metrics/reset", metrics.Reset)
	})

	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debugw("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start))
		})
	}
}
