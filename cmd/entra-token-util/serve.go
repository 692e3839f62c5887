package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/halcyonlab/entra-token-util/internal/catalog"
	"github.com/halcyonlab/entra-token-util/internal/deviceflow"
	"github.com/halcyonlab/entra-token-util/internal/metrics"
	"github.com/halcyonlab/entra-token-util/internal/provider"
	"github.com/halcyonlab/entra-token-util/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web API for browser-driven device flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	var cfg ServeConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, closeStore, err := newSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := provider.NewClient(provider.Config{
		Tenant:    cfg.Tenant,
		Authority: cfg.Authority,
		Timeout:   cfg.ProviderTimeout,
	})
	flow := deviceflow.New(client, store,
		deviceflow.WithLogger(logger),
		deviceflow.WithMetrics(metrics.New(registry)),
	)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	scopes, err := catalog.LoadScopeMap(cfg.ScopeMapPath)
	if err != nil {
		return fmt.Errorf("loading scope map: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("apps", cat.Len()))

	srv := newServer(cfg, flow, cat, scopes, registry, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Port))
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("starting shutdown", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			if err := httpServer.Close(); err != nil {
				logger.Warn("closing server", zap.Error(err))
			}
		}
	}

	return nil
}

// newSessionStore picks Redis when configured, in-memory otherwise. Losing
// in-memory sessions on restart is acceptable: pollers see a 404 and
// restart their flow.
func newSessionStore(cfg ServeConfig, logger *zap.Logger) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	logger.Info("using Redis session store")
	closeStore := func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing Redis connection", zap.Error(err))
		}
	}
	return session.NewRedisStore(client), closeStore, nil
}
