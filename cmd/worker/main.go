package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/ragbooking/config"
	"github.com/Domenick1991/ragbooking/internal/email"
	"github.com/Domenick1991/ragbooking/internal/kafka"
	"github.com/Domenick1991/ragbooking/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog)
	defer consumer.Close()

	emailSender := email.NewSender(zlog)

	zlog.Info("notification worker started", zap.String("topic", cfg.Kafka.NotificationsTopic), zap.String("group", cfg.Kafka.GroupID))
	err = consumer.Consume(ctx, kafka.BookingEventHandler(zlog, emailSender.Send))
	if err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("consumer stopped", zap.Error(err))
		return
	}
	zlog.Info("notification worker stopped")
}
