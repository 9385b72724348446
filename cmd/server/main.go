package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/auth"
	"github.com/arnavshah/meeting-rotation-api/pkg/cache"
	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	"github.com/arnavshah/meeting-rotation-api/pkg/database"
	"github.com/arnavshah/meeting-rotation-api/pkg/handlers"
	applogger "github.com/arnavshah/meeting-rotation-api/pkg/logger"
	"github.com/arnavshah/meeting-rotation-api/pkg/metrics"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	store := database.NewStore(db)

	// the limiter is optional; without it quotas are not enforced
	var limiter *cache.Limiter
	if cfg.Redis.Enabled {
		limiter, err = cache.NewLimiter(cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, rate limits disabled", zap.Error(err))
			limiter = nil
		}
	}

	am := auth.NewManager(cfg.Auth)
	if err := am.EnsureAdmin(context.Background(), store, logger); err != nil {
		logger.Fatal("seed admin user", zap.Error(err))
	}

	var mx *metrics.Metrics
	if cfg.Server.Metrics {
		mx = metrics.New()
	}

	h := &handlers.Handler{
		Store:     store,
		Auth:      am,
		Scheduler: scheduler.NewScheduler(cfg.Rotation, logger.Named("scheduler")),
		Limiter:   limiter,
		Metrics:   mx,
		Logger:    logger,
		Origins:   cfg.Server.CORSOrigins,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handlers.NewRouter(h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", handlers.Version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	if err := limiter.Close(); err != nil {
		logger.Warn("redis close", zap.Error(err))
	}

	logger.Info("server stopped")
}
