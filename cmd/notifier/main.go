// Package main runs the notification worker. It consumes transfer.received
// events from RabbitMQ and notifies the payee through the notification
// service, recording each delivery in MongoDB when MONGO_URI is set.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"simplepay/internal/config"
	"simplepay/internal/logger"
	"simplepay/internal/messaging"
	"simplepay/internal/models"
	"simplepay/internal/repositories/audit"
	"simplepay/internal/services/notification"

	"github.com/rs/zerolog/log"
)

const handleTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.IsProduction())

	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("RABBITMQ_URL must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker, err := messaging.Dial(cfg.RabbitMQURL, "simplepay-notifier")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer broker.Close()

	var auditStore notification.AuditStore
	if cfg.MongoURI != "" {
		client, err := audit.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("failed to disconnect from mongodb")
			}
		}()
		auditStore = audit.NewRepository(client, cfg.MongoDB)
		log.Info().Str("database", cfg.MongoDB).Msg("audit log enabled")
	}

	worker := notification.NewWorker(
		notification.NewHTTPNotifier(cfg.NotifierURL, 10*time.Second),
		auditStore,
	)

	deliveries, err := broker.Deliveries("simplepay-notifier")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start consuming")
	}

	go func() {
		select {
		case amqpErr := <-broker.NotifyClose():
			log.Error().Interface("reason", amqpErr).Msg("rabbitmq channel closed")
			stop()
		case <-ctx.Done():
		}
	}()

	log.Info().Str("queue", messaging.NotificationQueue).Msg("notifier consuming")
	if err := messaging.Consume(ctx, deliveries, handleTimeout, messaging.Handler[models.TransferReceivedEvent](worker.Handle)); err != nil {
		log.Error().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("notifier stopped")
}
