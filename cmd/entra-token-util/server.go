package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/apps"
	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/health"
	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/poll"
	"github.com/halcyonlab/entra-token-util/cmd/entra-token-util/handlers/start"
	"github.com/halcyonlab/entra-token-util/internal/catalog"
	"github.com/halcyonlab/entra-token-util/internal/deviceflow"
)

type server struct {
	router *chi.Mux
}

func newServer(cfg ServeConfig, flow *deviceflow.Flow, cat *catalog.Catalog, scopes *catalog.ScopeMap, registry *prometheus.Registry, logger *zap.Logger) *server {
	srv := &server{router: chi.NewRouter()}

	srv.router.Use(middleware.RealIP)
	srv.router.Use(requestLogger(logger))
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(middleware.Timeout(30 * time.Second))

	startHandler := start.New(flow, cfg.DefaultScope, logger)
	pollHandler := poll.New(flow, logger)
	appsHandler := apps.New(cat, scopes)

	srv.router.Get("/health", health.New(flow).WithVersion(version).ServeHTTP)
	srv.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv.router.Route("/api", func(r chi.Router) {
		r.Post("/device-code", startHandler.ServeHTTP)
		r.Get("/poll-token/{sessionID}", pollHandler.ServeHTTP)
		r.Get("/apps", appsHandler.Pinned)
		r.Get("/search", appsHandler.Search)
		r.Get("/scopes/{clientID}", appsHandler.Scopes)
	})

	return srv
}

// requestLogger logs one line per request with zap. Poll requests are the
// steady state of the flow, so everything logs at debug except 5xx results.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			begin := time.Now()
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(begin)),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn("request", fields...)
			} else {
				logger.Debug("request", fields...)
			}
		})
	}
}
