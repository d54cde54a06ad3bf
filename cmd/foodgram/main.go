package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodgram/backend/api"
	"github.com/foodgram/backend/internal/auth"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/identities"
	"github.com/foodgram/backend/internal/infrastructure/config"
	"github.com/foodgram/backend/internal/infrastructure/ratelimit"
	"github.com/foodgram/backend/internal/ingredients"
	"github.com/foodgram/backend/internal/media"
	"github.com/foodgram/backend/internal/recipes"
	"github.com/foodgram/backend/internal/shortlinks"
	"github.com/foodgram/backend/internal/subscriptions"
	"github.com/foodgram/backend/internal/tags"
	"github.com/foodgram/backend/internal/tracing"
	"github.com/foodgram/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		zapLogger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			zapLogger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	var linkCache shortlinks.Cache
	if redisClient != nil {
		defer redisClient.Close()
		linkCache = shortlinks.NewRedisCache(redisClient, cfg.ShortLinks.CacheTTL)
	} else {
		zapLogger.Info("Redis not configured, short links resolve from the database")
	}

	storage, err := media.NewStorage(ctx, cfg.Media)
	if err != nil {
		zapLogger.Fatal("Failed to create media storage", zap.String("backend", cfg.Media.Backend), zap.Error(err))
	}

	users := identities.NewService(zapLogger, db, storage, cfg.Media.MaxSizeBytes)
	authSvc := auth.NewAuthService(zapLogger, db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	services := api.Services{
		Auth:          authSvc,
		Users:         users,
		Tags:          tags.NewService(zapLogger, db),
		Ingredients:   ingredients.NewService(zapLogger, db),
		Recipes:       recipes.NewService(zapLogger, db, users, storage, cfg.Media.MaxSizeBytes),
		Subscriptions: subscriptions.NewService(zapLogger, db, users, storage),
		ShortLinks:    shortlinks.NewService(zapLogger, db, linkCache, cfg.ShortLinks.CodeLength, cfg.Server.BaseURL),
		Storage:       storage,
	}

	limiter := ratelimit.NewRegistry(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, 10*time.Minute)
	apiServer := api.NewServer(zapLogger, cfg, services, limiter)

	// Pool gauges, revoked token cleanup and idle limiter eviction
	go database.RunMaintenance(ctx, zapLogger, cfg.Auth.PurgeInterval,
		database.PoolStatsTask(cfg.Database.Driver, db),
		database.Task{
			Name: "purge_revoked_tokens",
			Run: func(ctx context.Context) error {
				n, err := authSvc.PurgeRevoked(ctx)
				if err == nil && n > 0 {
					zapLogger.Info("purged revoked tokens", zap.Int64("count", n))
				}
				return err
			},
		},
		database.Task{
			Name: "evict_idle_limiters",
			Run: func(context.Context) error {
				limiter.Cleanup()
				return nil
			},
		},
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLogger.Info("Starting API server", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLogger.Error("Failed to flush traces", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zapLogger.Info("Server exited properly")
}
