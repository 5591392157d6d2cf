package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duynhne/advocate-service/config"
	database "github.com/duynhne/advocate-service/internal/core"
	"github.com/duynhne/advocate-service/internal/core/domain"
	"github.com/duynhne/advocate-service/internal/core/repository/memory"
	"github.com/duynhne/advocate-service/internal/core/repository/psql"
	logicv1 "github.com/duynhne/advocate-service/internal/logic/v1"
	"github.com/duynhne/advocate-service/internal/web/ui"
	v1 "github.com/duynhne/advocate-service/internal/web/v1"
	"github.com/duynhne/advocate-service/middleware"
)

func main() {
	// Load configuration from environment variables (with .env file support for local dev)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger, err := middleware.NewLogger(cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("Service starting",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("env", cfg.Service.Env),
		zap.String("port", cfg.Service.Port),
	)

	if cfg.Tracing.Enabled {
		if _, err := middleware.InitTracing(cfg); err != nil {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			logger.Info("Tracing initialized",
				zap.String("endpoint", cfg.Tracing.Endpoint),
				zap.Float64("sample_rate", cfg.Tracing.SampleRate),
			)
		}
	} else {
		logger.Info("Tracing disabled (TRACING_ENABLED=false)")
	}

	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg.Profiling); err != nil {
			logger.Warn("Failed to initialize profiling", zap.Error(err))
		} else {
			logger.Info("Profiling initialized", zap.String("endpoint", cfg.Profiling.Endpoint))
			defer middleware.StopProfiling()
		}
	}

	repo, pool := openStore(cfg, logger)
	if pool != nil {
		defer pool.Close()
	}

	redisClient := openRedis(cfg.RateLimit, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	service := logicv1.NewAdvocateService(repo)
	apiHandler := v1.NewAdvocateHandler(service)
	uiHandler, err := ui.NewHandler(service)
	if err != nil {
		logger.Fatal("Failed to parse UI templates", zap.Error(err))
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing middleware (must be first for context propagation)
	r.Use(middleware.TracingMiddleware())
	r.Use(middleware.LoggingMiddleware(logger))
	if cfg.Metrics.Enabled {
		r.Use(middleware.PrometheusMiddleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", apiHandler.ReadyHandler(&isShuttingDown))

	writeLimit := middleware.RateLimitMiddleware(cfg.RateLimit, redisClient, logger)
	v1.RegisterRoutes(r, apiHandler, writeLimit)
	ui.RegisterRoutes(r, uiHandler, writeLimit)

	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting advocate service", zap.String("port", cfg.Service.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// Fail readiness first and wait for propagation before stopping the listener.
	isShuttingDown.Store(true)
	if drainDelay := cfg.GetReadinessDrainDelayDuration(); drainDelay > 0 {
		logger.Info("Readiness drain delay started", zap.Duration("delay", drainDelay))
		time.Sleep(drainDelay)
	}

	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...", zap.Duration("timeout", shutdownTimeout))

	// Order: HTTP server → tracer, then deferred store and redis close
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server shutdown complete")
	}

	if err := middleware.ShutdownTracing(shutdownCtx); err != nil {
		logger.Error("Tracer shutdown error", zap.Error(err))
	}

	logger.Info("Graceful shutdown complete")
}

// openStore connects to PostgreSQL, or falls back to the in-memory store when
// DB_HOST is not set (development only, enforced by config validation).
func openStore(cfg *config.Config, logger *zap.Logger) (domain.AdvocateRepository, *pgxpool.Pool) {
	if cfg.Database.UseMemoryStore() {
		logger.Warn("DB_HOST not set, using in-memory advocate store (data is lost on restart)")
		return memory.NewAdvocateRepository(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connection pool established", zap.String("host", cfg.Database.Host))

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		logger.Info("Schema ensured")
	}

	return psql.NewAdvocateRepository(pool), pool
}

// openRedis returns nil when the shared limiter is not configured or not
// reachable; the in-memory limiter is used instead.
func openRedis(cfg config.RateLimitConfig, logger *zap.Logger) *redis.Client {
	if !cfg.Enabled || cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not reachable, falling back to in-memory rate limiter",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("Redis rate limiter enabled", zap.String("addr", cfg.RedisAddr))
	return client
}
