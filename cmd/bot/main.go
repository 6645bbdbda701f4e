package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/vpn-shop-bot/config"
	"github.com/yourusername/vpn-shop-bot/internal/delivery/telegram"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/cache"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/panel"
	"github.com/yourusername/vpn-shop-bot/internal/infrastructure/storage"
	"github.com/yourusername/vpn-shop-bot/pkg/logger"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := telegram.Deps{Panels: panel.NewRegistry()}

	if cfg.PostgresDSN != "" {
		db, err := storage.Open(cfg.PostgresDSN)
		if err != nil {
			logger.ErrorLogger.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		deps.Catalog = storage.NewPostgresCatalog(db)
		deps.Purchases = storage.NewPostgresPurchases(db)
		deps.Users = storage.NewPostgresUsers(db)
		deps.Messages = storage.NewPostgresMessages(db)
		logger.InfoLogger.Println("using postgres stores")
	} else {
		deps.Catalog = storage.NewMemoryCatalog()
		deps.Purchases = storage.NewMemoryPurchases()
		deps.Users = storage.NewMemoryUsers()
		deps.Messages = storage.NewMemoryMessages()
		logger.InfoLogger.Println("POSTGRES_DSN not set, using in-memory stores")
	}

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.ErrorLogger.Fatalf("redis: %v", err)
		}
		deps.Shared = rc
		logger.InfoLogger.Println("using redis shared cache")
	} else {
		deps.Shared = cache.NewMemoryCache()
		logger.InfoLogger.Println("REDIS_ADDR not set, using in-memory shared cache")
	}

	handler, err := telegram.NewBotHandler(cfg, deps)
	if err != nil {
		logger.ErrorLogger.Fatalf("telegram: %v", err)
	}
	logger.InfoLogger.Printf("authorized as @%s", handler.GetBotUsername())

	handler.Start(ctx)
	logger.InfoLogger.Println("shutdown complete")
}
