// Package main is the entry point of the transfer API.
// It initializes all dependencies, sets up the HTTP server,
// and shuts it down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simplepay/internal/config"
	"simplepay/internal/handlers"
	"simplepay/internal/logger"
	"simplepay/internal/messaging"
	"simplepay/internal/middleware"
	"simplepay/internal/repositories"
	"simplepay/internal/repositories/cache"
	"simplepay/internal/routes"
	"simplepay/internal/services/authorizer"
	"simplepay/internal/services/ledger"
	"simplepay/internal/services/notification"
	"simplepay/internal/services/transfer"
	"simplepay/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.IsProduction())

	db, err := repositories.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn().Err(err).Msg("failed to close database connection")
		}
	}()
	log.Info().Str("driver", cfg.DBDriver).Msg("database connected")
	go logPoolStats(db)

	health := &handlers.HealthHandler{DB: db}

	// Redis is optional: without it accounts are read from the database and
	// requests are not deduplicated.
	var cacheService *cache.CacheService
	var idempotency middleware.IdempotencyStore
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	redisClient, err := cache.Connect(pingCtx, &cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("running without account cache and idempotency")
	} else {
		cacheService = cache.NewCacheService(redisClient, 10*time.Minute)
		idempotency = cache.NewIdempotencyStore(redisClient)
		health.Redis = cacheService.HealthCheck
		defer cacheService.Close()
		log.Info().Msg("redis connected")
	}

	sink, closeSink := notificationSink(cfg, health)
	defer closeSink()
	outbox := repositories.NewOutboxRepository(db)
	relay := notification.NewRelay(outbox, sink, notification.RelayConfig{
		BatchSize:     cfg.NotificationBatchSize,
		PollInterval:  cfg.NotificationPollInterval,
		RetryDelay:    cfg.NotificationRetryDelay,
		MaxRetryDelay: cfg.NotificationMaxRetryDelay,
	})
	health.Relay = relay
	health.Outbox = outbox
	relayCtx, stopRelay := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(relayCtx)
	}()

	accounts := repositories.NewAccountRepository(db, cacheService)
	counters := ledger.NewCounters()
	health.Ledger = counters

	transferService := transfer.NewService(transfer.Config{
		Validator: validation.NewTransferValidator(accounts),
		Ledger:    ledger.NewService(repositories.NewWalletRepository(db), counters),
		Authorizer: authorizer.NewClient(authorizer.Config{
			URL:     cfg.AuthorizerURL,
			Token:   cfg.AuthorizerToken,
			Timeout: cfg.AuthorizerTimeout,
		}, repositories.NewAuthorizationRepository(db)),
		Transfers: repositories.NewTransferRepository(db),
		Accounts:  accounts,
		Events:    relay,
	})

	app := fiber.New(fiber.Config{
		AppName:      "simplepay",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key",
		AllowMethods: "GET,POST,HEAD",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		Transfers:       transferService,
		Accounts:        accounts,
		Health:          health,
		Idempotency:     idempotency,
		IdempotencyTTL:  cfg.IdempotencyTTL,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("transfer API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// Undelivered events stay in the outbox for the next start.
	stopRelay()
	<-relayDone
}

// notificationSink publishes to RabbitMQ when configured and falls back to
// calling the notification service directly.
func notificationSink(cfg *config.Config, health *handlers.HealthHandler) (notification.Sink, func()) {
	if cfg.RabbitMQURL != "" {
		broker, err := messaging.Dial(cfg.RabbitMQURL, "simplepay-api")
		if err == nil {
			health.Broker = func(context.Context) error { return broker.HealthCheck() }
			log.Info().Msg("publishing transfer events to rabbitmq")
			return notification.NewBrokerSink(broker), func() {
				if err := broker.Close(); err != nil {
					log.Warn().Err(err).Msg("failed to close rabbitmq connection")
				}
			}
		}
		log.Warn().Err(err).Msg("rabbitmq unavailable, notifying directly")
	}
	return notification.NewHTTPNotifier(cfg.NotifierURL, 5*time.Second), func() {}
}

func logPoolStats(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		stats := sqlDB.Stats()
		log.Debug().
			Int("open", stats.OpenConnections).
			Int("idle", stats.Idle).
			Int("in_use", stats.InUse).
			Int64("wait_count", stats.WaitCount).
			Dur("wait_duration", stats.WaitDuration).
			Msg("db pool stats")
	}
}
