package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agora/internal/config"
	"agora/internal/db"
	"agora/internal/forum"
	"agora/internal/handlers"
	"agora/internal/logger"
	"agora/internal/metrics"
	"agora/internal/models"
	"agora/internal/router"
	"agora/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	if err := db.Init(cfg.DatabaseURL, zl); err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}

	svc := forum.NewService(db.DB,
		forum.WithLogger(zl.Named("forum")),
		forum.WithRenderer(utils.RenderPost),
	)
	index, err := utils.NewTTLCache[[]models.Section](16, cfg.IndexCacheTTL)
	if err != nil {
		zl.Fatal("cache init failed", zap.Error(err))
	}

	m, metricsHandler, err := metrics.Setup("agora")
	if err != nil {
		zl.Fatal("metrics init failed", zap.Error(err))
	}

	h := handlers.New(svc, zl.Named("http"), index, m)
	r := router.New(db.DB, h, m, metricsHandler, cfg.SessionSecret)

	zl.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
