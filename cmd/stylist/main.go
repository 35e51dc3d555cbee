package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/config"
	dbRedis "github.com/kailas-cloud/stylist/internal/db/redis"
	logpkg "github.com/kailas-cloud/stylist/internal/logger"
	"github.com/kailas-cloud/stylist/internal/metrics"
	quotarepo "github.com/kailas-cloud/stylist/internal/repository/quota"
	chiTransport "github.com/kailas-cloud/stylist/internal/transport/chi"
	openaiClient "github.com/kailas-cloud/stylist/internal/transport/openai"
	replicateClient "github.com/kailas-cloud/stylist/internal/transport/replicate"
	serperClient "github.com/kailas-cloud/stylist/internal/transport/serper"
	healthuc "github.com/kailas-cloud/stylist/internal/usecase/health"
	quotauc "github.com/kailas-cloud/stylist/internal/usecase/quota"
	recommendationuc "github.com/kailas-cloud/stylist/internal/usecase/recommendation"
	searchuc "github.com/kailas-cloud/stylist/internal/usecase/search"
	styleimageuc "github.com/kailas-cloud/stylist/internal/usecase/styleimage"
	"github.com/kailas-cloud/stylist/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting stylist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterUpstreamMetrics()

	// Quota store: Redis with per-call in-memory fallback, or memory only.
	ctx := context.Background()
	memory := quotarepo.NewMemoryStore()
	var quotaStore quotauc.Store = memory
	var pinger healthuc.DBPinger

	if cfg.Database.Driver == "redis" {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			// Memory stays authoritative for this process.
			logger.Warn("Redis unavailable, quotas are process-local", zap.Error(err))
		} else {
			defer redisStore.Close()
			readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
			if err := redisStore.WaitForReady(ctx, readiness); err != nil {
				logger.Warn("Redis not ready, serving quotas from memory until it recovers", zap.Error(err))
			} else {
				logger.Info("Connected to Redis")
			}
			quotaStore = quotarepo.NewFallbackStore(
				quotarepo.NewRedisStore(redisStore, cfg.Storage.KeyPrefix),
				memory,
				metrics.QuotaFallbackTotal,
				logger,
			)
			pinger = redisStore
		}
	}

	// Provider clients. Missing credentials fail the dependent call, not startup.
	openai := openaiClient.NewClient(&openaiClient.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Model,
		ImageModel: cfg.OpenAI.ImageModel,
		MaxTokens:  cfg.OpenAI.MaxTokens,
		Timeout:    time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		Observer:   metrics.NewObserver("openai"),
		Logger:     logger,
	})
	replicate := replicateClient.New(replicateClient.Config{
		APIToken: cfg.Replicate.APIToken,
		BaseURL:  cfg.Replicate.BaseURL,
		Model:    cfg.Replicate.Model,
		Timeout:  30 * time.Second,
		Observer: metrics.NewObserver("replicate"),
		Logger:   logger,
	})
	serper := serperClient.New(serperClient.Config{
		APIKey:   cfg.Search.APIKey,
		BaseURL:  cfg.Search.BaseURL,
		Location: cfg.Search.Location,
		Num:      cfg.Search.PageSize,
		Timeout:  time.Duration(cfg.Search.TimeoutSec) * time.Second,
		Observer: metrics.NewObserver("serper"),
		Logger:   logger,
	})
	logger.Info("Providers configured",
		zap.Bool("openai", openai.Configured()),
		zap.Bool("replicate", replicate.Configured()),
		zap.Bool("serper", serper.Configured()),
	)

	// Use case services
	quotaSvc := quotauc.New(quotaStore).
		WithLimit(cfg.Quota.SearchLimit).
		WithWindow(time.Duration(cfg.Quota.WindowSec) * time.Second).
		WithHistorySize(cfg.Quota.HistorySize).
		WithTrackedCounter(metrics.SearchesTrackedTotal)
	searchSvc := searchuc.New(serper).
		WithBatching(cfg.Search.BatchSize, time.Duration(cfg.Search.BatchDelayMs)*time.Millisecond)
	recommendationSvc := recommendationuc.New(openai).
		WithFallbackCounter(metrics.RecommendationFallbackTotal)
	imageSvc := styleimageuc.New(replicate, openai).
		WithPolling(time.Duration(cfg.Replicate.PollIntervalMs)*time.Millisecond, cfg.Replicate.MaxPollAttempts)
	healthSvc := healthuc.New(pinger).
		WithProvider("openai", openai).
		WithProvider("replicate", replicate).
		WithProvider("serper", serper)

	// Create chi server
	server := chiTransport.NewServer(recommendationSvc, searchSvc, quotaSvc, imageSvc, healthSvc, logger).
		WithUploads(cfg.Uploads.Dir, cfg.Uploads.MaxFileBytes, cfg.Uploads.MaxDimension).
		WithDevBypass(cfg.Auth.DevBypass).
		WithPlaceholderImage(cfg.Replicate.PlaceholderPath)

	if cfg.Auth.DevBypass {
		logger.Warn("Auth dev bypass enabled: unauthenticated requests act as the dev user",
			zap.String("dev_user", cfg.Auth.DevBypassUID),
		)
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.SessionMiddleware(chiTransport.SessionConfig{
		Secret:     cfg.Auth.JWTSecret,
		CookieName: cfg.Auth.CookieName,
		DevBypass:  cfg.Auth.DevBypass,
		DevUserID:  cfg.Auth.DevBypassUID,
	}))
	r.Use(metrics.Middleware("/recommendations", "/replicate", "/openai", "/search"))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
