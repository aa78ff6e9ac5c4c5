package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/barber_bot/internal/app"
	"github.com/Freeeeeet/barber_bot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Sugar().Infow("Starting barber bot",
		"environment", cfg.Environment,
		"storage", cfg.Storage,
		"cache", cfg.CacheBackend,
		"http_addr", cfg.HTTPAddr,
		"telegram", cfg.TelegramToken != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("Stopped with error", zap.Error(err))
		return
	}
	logger.Info("Shutdown complete")
}
