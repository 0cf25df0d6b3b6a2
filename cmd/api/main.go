package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-tracker/internal/bootstrap"
	"go-inventory-tracker/internal/cache"
	"go-inventory-tracker/internal/config"
	"go-inventory-tracker/internal/events"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/router"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/database"
	"go-inventory-tracker/pkg/jwt"
	"go-inventory-tracker/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load config & logger
	cfg := config.Load()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	// 2. Setup Database
	db := database.ConnectDB(cfg.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Schema, admin user and default shops
	if err := bootstrap.Run(ctx, db, bootstrap.Options{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		log.Fatal().Err(err).Msg("Bootstrap failed")
	}

	// 4. WebSocket hub, report cache and event publishers
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	publishers := events.Multi{wsHub}
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		publishers = append(publishers, kafkaPublisher)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Kafka publishing enabled")
	}

	reports := cache.NewNop()
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, report cache disabled")
			rdb.Close()
			rdb = nil
		} else {
			reports = cache.NewRedisCache(rdb, cfg.CacheTTL)
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("Report cache enabled")
		}
	}

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	shopRepo := repository.NewShopRepo(db)
	userRepo := repository.NewUserRepo(db)

	if cfg.IsProduction() && cfg.JWTSecret == "your-super-secret-key-change-in-production" {
		log.Fatal().Msg("JWT_SECRET must be set in production")
	}
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	app := router.New(router.Deps{
		Auth:        service.NewAuthService(userRepo, tokens),
		Products:    service.NewProductService(db, productRepo, shopRepo, txRepo, publishers, reports),
		Ledger:      service.NewLedgerService(db, productRepo, txRepo, publishers, reports),
		Shops:       service.NewShopService(shopRepo),
		Dashboard:   service.NewDashboardService(productRepo, txRepo, reports),
		Hub:         wsHub,
		CORSOrigins: cfg.CORSAllowedOrigins,
		LoginLimit:  cfg.LoginRateLimit,
		LoginWindow: time.Minute,
	})

	// 6. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("Server started")

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if kafkaPublisher != nil {
		logger.LogError(kafkaPublisher.Close(), "Failed to close Kafka writer")
	}
	if rdb != nil {
		logger.LogError(rdb.Close(), "Failed to close redis client")
	}
	if sqlDB, err := db.DB(); err == nil {
		logger.LogError(sqlDB.Close(), "Failed to close database")
	}

	log.Info().Msg("Server exited")
}
