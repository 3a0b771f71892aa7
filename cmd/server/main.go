package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stayfront/internal/api"
	"stayfront/internal/audit"
	"stayfront/internal/auth"
	"stayfront/internal/config"
	"stayfront/internal/guard"
	"stayfront/internal/manager"
	"stayfront/internal/metrics"
	"stayfront/internal/ratelimit"
	"stayfront/internal/router"
	"stayfront/internal/storage"
	"stayfront/internal/tenancy"
)

// @title Stayfront Platform API
// @version 1.0
// @description Tenant administration API for the stayfront hotel platform
// @BasePath /api/admin
// @schemes http

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "stayfront").Logger()

	// Init Metrics
	metrics.Init()

	// Load Configuration
	cfgPath := os.Getenv("STAYFRONT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Info().Str("path", cfgPath).Msg("configuration loaded")

	// Setup JWT Secret
	auth.SetSecret(cfg.Auth.JWTSecret)

	// Init PostgreSQL (tenant + principal directories)
	db, err := storage.NewStorage(cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init db")
	}
	defer db.DB.Close()
	logger.Info().Msg("postgres connected")

	// Audit pipeline: structured log always, queue fanout when configured.
	sinks := []audit.Sink{audit.LogSink{Logger: logger}}
	if cfg.RabbitMQ.URL != "" {
		queueSink, err := audit.NewQueueSink(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer queueSink.Close()
		sinks = append(sinks, queueSink)
		logger.Info().Msg("rabbitmq connected")
	}
	dispatcher := audit.NewDispatcher(logger, sinks...)

	// Tenant resolution path
	resolver := tenancy.NewResolver(db, cfg.Tenancy.BaseDomains, logger)
	cache := tenancy.NewCache(resolver, tenancy.DefaultCacheTTL)
	classifier := router.NewClassifier(cache, cfg.Tenancy.PlatformHosts, cfg.Tenancy.PreviewSuffixes, logger)

	// Isolation + throttling
	accessGuard := guard.NewAccessGuard(dispatcher, logger)
	limiter := ratelimit.NewLimiter()

	// Tenant administration
	tenantAdmin := manager.NewTenantAdmin(db, cache, dispatcher, logger)

	apiHandler := api.NewAPI(tenantAdmin, db, accessGuard, limiter, logger)

	r := chi.NewRouter()
	r.Use(classifier.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/api/admin", apiHandler.Router())

	// Tenant site root: rendering lives elsewhere; this process only
	// establishes tenant context and hands it downstream. Public traffic
	// is throttled per client IP under the embed class.
	r.Route(router.TenantSitePrefix, func(r chi.Router) {
		r.Use(ratelimit.Middleware(limiter, ratelimit.EmbedConfig, ratelimit.IPKeyFunc(true)))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"tenant": r.Header.Get(router.TenantIdentifierHeader),
				"via":    r.Header.Get(router.TenantTypeHeader),
			})
		})
	})

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	// Graceful Shutdown Setup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}

	// Drain buffered audit events before the sinks close.
	dispatcher.Stop()

	logger.Info().Msg("graceful shutdown complete")
}
