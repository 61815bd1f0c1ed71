package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkdeck/internal/infra/adapter/persistence/postgres"
	"linkdeck/internal/infra/cache"
	"linkdeck/internal/infra/db"
	"linkdeck/internal/infra/fallback"
	"linkdeck/internal/infra/imagestore"
	"linkdeck/internal/infra/metadata"
	"linkdeck/internal/infra/worker"
	"linkdeck/internal/observability/logging"
	"linkdeck/internal/observability/tracing"
	"linkdeck/pkg/config"

	linkUC "linkdeck/internal/usecase/link"
	previewUC "linkdeck/internal/usecase/preview"

	hhttp "linkdeck/internal/handler/http"
	hlink "linkdeck/internal/handler/http/link"
	"linkdeck/internal/handler/http/middleware"
	hpreview "linkdeck/internal/handler/http/preview"
	"linkdeck/internal/handler/http/requestid"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, database, version)

	runServer(logger, components, version)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds everything runServer needs to serve traffic and
// shut down cleanly.
type ServerComponents struct {
	Handler  http.Handler
	Executor *worker.Executor
	Cache    io.Closer
}

// setupServer wires repositories, use cases and handlers and returns the
// fully assembled HTTP handler.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	fetchCfg, err := metadata.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid metadata fetch configuration", slog.Any("error", err))
		os.Exit(1)
	}
	fetcher := metadata.NewHTTPFetcher(fetchCfg)

	// Preview result cache. Redis when configured; without it every
	// resolution goes straight to the fetcher.
	var resultCache previewUC.ResultCache = cache.Noop{}
	var cachePinger hhttp.CachePinger
	var cacheCloser io.Closer
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		ttl := config.GetEnvDuration("PREVIEW_CACHE_TTL", time.Hour)
		redisCache, err := cache.NewRedisCache(redisURL, ttl)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		resultCache = redisCache
		cachePinger = redisCache
		cacheCloser = redisCache
		logger.Info("preview cache enabled", slog.Duration("ttl", ttl))
	} else {
		logger.Warn("REDIS_URL not set, preview caching disabled")
	}

	fallbackProvider := fallback.NewStaticProvider(os.Getenv("FALLBACK_IMAGE_URL"))

	imageDir := config.GetEnvString("IMAGE_STORE_DIR", "./data/previews")
	images, err := imagestore.NewFileStore(imageDir, os.Getenv("PUBLIC_BASE_URL")+"/media")
	if err != nil {
		logger.Error("failed to initialize image store", slog.Any("error", err))
		os.Exit(1)
	}

	executor := worker.NewExecutor(config.GetEnvInt("PREVIEW_WORKERS", 4), logger)

	linkRepo := postgres.NewLinkRepo(database)
	persister := previewUC.NewPersister(fetcher, images, fallbackProvider, linkRepo, executor, 0, logger)

	previewSvc := previewUC.NewService(fetcher, fallbackProvider, resultCache, logger)
	linkSvc := &linkUC.Service{Repo: linkRepo, Previews: persister}

	mux := http.NewServeMux()
	hpreview.Register(mux, previewSvc)
	hlink.Register(mux, linkSvc)

	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Cache: cachePinger, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// Re-hosted preview images.
	mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(imageDir))))

	return &ServerComponents{
		Handler:  applyMiddleware(logger, mux),
		Executor: executor,
		Cache:    cacheCloser,
	}
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): CORS → Request ID → Rate Limit → Recovery →
// Logging → Body Limit → Tracing → Metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig := middleware.LoadCORSConfig()
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	chain := handler

	// Apply in reverse order (innermost to outermost).
	chain = hhttp.MetricsMiddleware(chain)
	chain = tracing.Middleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)

	if config.GetEnvBool("RATELIMIT_ENABLED", true) {
		rps := float64(config.GetEnvInt("RATELIMIT_RPS", 10))
		burst := config.GetEnvInt("RATELIMIT_BURST", 20)
		limiter := hhttp.NewRateLimiter(rps, burst)
		chain = limiter.Limit(chain)
		logger.Info("rate limiting enabled",
			slog.Float64("rps", rps),
			slog.Int("burst", burst))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	chain = requestid.Middleware(chain)
	chain = middleware.CORS(corsConfig, logger)(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown. Pending
// preview persistence jobs get a drain window before the process exits.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + config.GetEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// Drain in-flight preview persistence jobs.
	if err := components.Executor.Shutdown(shutdownCtx); err != nil {
		logger.Error("executor shutdown timed out, abandoning pending jobs", slog.Any("error", err))
	}

	if components.Cache != nil {
		if err := components.Cache.Close(); err != nil {
			logger.Error("failed to close preview cache", slog.Any("error", err))
		}
	}

	logger.Info("server stopped")
}
