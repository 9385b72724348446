package handler

import (
	"context"
	"net/http"

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

var (
	router  http.Handler
	initErr error
)

func init() {
	cfg, err := config.Load("")
	if err != nil {
		initErr = err
		return
	}

	logger, err := applogger.New(cfg.Log)
	if err != nil {
		initErr = err
		return
	}

	gin.SetMode(gin.ReleaseMode)

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("database unavailable", zap.Error(err))
		initErr = err
		return
	}
	store := database.NewStore(db)

	var limiter *cache.Limiter
	if cfg.Redis.Enabled {
		if limiter, err = cache.NewLimiter(cfg.Redis, logger); err != nil {
			logger.Warn("redis unavailable, rate limits disabled", zap.Error(err))
			limiter = nil
		}
	}

	am := auth.NewManager(cfg.Auth)
	if err := am.EnsureAdmin(context.Background(), store, logger); err != nil {
		logger.Warn("seed admin user", zap.Error(err))
	}

	var mx *metrics.Metrics
	if cfg.Server.Metrics {
		mx = metrics.New()
	}

	router = handlers.NewRouter(&handlers.Handler{
		Store:     store,
		Auth:      am,
		Scheduler: scheduler.NewScheduler(cfg.Rotation, logger.Named("scheduler")),
		Limiter:   limiter,
		Metrics:   mx,
		Logger:    logger,
		Origins:   cfg.Server.CORSOrigins,
	})
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, r *http.Request) {
	if initErr != nil {
		http.Error(w, `{"error":"service misconfigured"}`, http.StatusInternalServerError)
		return
	}
	router.ServeHTTP(w, r)
}
