package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecommerce-async/order-service/internal/events"
	"github.com/ecommerce-async/order-service/internal/notification"
	"github.com/ecommerce-async/order-service/pkg/config"
	brokertls "github.com/ecommerce-async/order-service/pkg/tls"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	conn, err := events.Dial(cfg, logger)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()
	defer brokertls.Cleanup()

	dispatcher := notification.NewDispatcher(logger)

	consumer, err := events.NewRabbitConsumer(conn, cfg, dispatcher, logger)
	if err != nil {
		log.Fatal("Failed to create consumer:", err)
	}

	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start consumer:", err)
	}

	logger.Info("Notification service started, waiting for RabbitMQ messages...",
		zap.String("queue", cfg.QueueName))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	consumer.Stop()
	logger.Info("Notification service exited")
}
