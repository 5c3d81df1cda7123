package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/analytics"
	"github.com/rmacedo/edgeadmin-go/internal/auth"
	"github.com/rmacedo/edgeadmin-go/internal/config"
	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/handler"
	"github.com/rmacedo/edgeadmin-go/internal/infra/cache"
	"github.com/rmacedo/edgeadmin-go/internal/infra/geoip"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/infra/resilience"
	"github.com/rmacedo/edgeadmin-go/internal/infra/supabase"
	"github.com/rmacedo/edgeadmin-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("local_admin_enabled", cfg.LocalAdminEnabled),
		zap.Int("analytics_batch_size", cfg.AnalyticsBatchSize),
		zap.Duration("analytics_flush_interval", cfg.AnalyticsFlushInterval),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "edgeadmin")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("external-apis")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	geoCache := cache.New[domain.GeoLocation](cfg.CacheTTL)
	geoClient := geoip.NewClient(httpClient, cfg.GeoAPIURL, cb, resilienceCfg, geoCache, metrics)

	// --- Auth ---
	resolver := auth.NewResolver(supabaseClient, supabaseClient, cfg.JWTSecret, cfg.LocalAdminEnabled, logger)
	resolver.SetMetrics(metrics)

	var localAdmin *auth.LocalAdmin
	if cfg.LocalAdminEnabled {
		if cfg.LocalAdminPasswordHash == "" {
			logger.Fatal("LOCAL_ADMIN_ENABLED requires LOCAL_ADMIN_PASSWORD_HASH")
		}
		localAdmin = auth.NewLocalAdmin(resolver, cfg.LocalAdminUser, cfg.LocalAdminPasswordHash, cfg.LocalTokenTTL)
		logger.Warn("local admin escape hatch is ENABLED")
	} else {
		// Login route still needs a handler; it answers 401 for every
		// attempt while the escape hatch is off.
		localAdmin = auth.NewLocalAdmin(resolver, cfg.LocalAdminUser, "", cfg.LocalTokenTTL)
	}

	// --- Analytics ingest queue ---
	queue := analytics.NewQueue(supabaseClient, metrics, logger, cfg.AnalyticsBatchSize, cfg.AnalyticsFlushInterval)
	queue.Start()

	// --- Services ---
	domainsSvc := service.NewDomainsService(supabaseClient, metrics, logger)
	analyticsSvc := service.NewAnalyticsService(supabaseClient, supabaseClient, queue, geoClient, metrics, logger)
	billingSvc := service.NewBillingService(supabaseClient, cfg.PixKey, cfg.PixMerchantName, cfg.PixMerchantCity, metrics, logger)
	adminSvc := service.NewAdminService(supabaseClient, supabaseClient, supabaseClient, supabaseClient, metrics, logger)

	if cfg.PixKey == "" {
		logger.Warn("billing: PIX_KEY not configured, charge creation will be rejected")
	}

	// --- Router ---
	router := handler.NewRouter(
		resolver,
		localAdmin,
		domainsSvc,
		analyticsSvc,
		billingSvc,
		adminSvc,
		supabaseClient,
		metrics,
		logger,
	)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	// Flush buffered analytics events before exiting.
	queue.Stop(ctx)

	logger.Info("server stopped")
}
