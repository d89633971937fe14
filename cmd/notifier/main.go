package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"experia/internal/notifications/service"
	"experia/pkg/config"
	"experia/pkg/contracts"
	"experia/pkg/kafka"
	kafka_config "experia/pkg/kafka/config"
)

const (
	ServiceName     = "notifier"
	ConsumerGroupID = "experia-notifier"
)

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting notifier service")

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load Kafka configuration", "error", err)
	}

	notificationService := service.NewNotificationService(cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		contracts.TopicBookingConfirmed,
		ConsumerGroupID,
		contracts.TopicBookingConfirmedDLQ,
		notificationService.HandleBookingConfirmed,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	cfg.Log.Info("Notifier service stopped")
}
