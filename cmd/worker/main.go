package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/askhat-dev/travel-marketplace/internal/adapter/email"
	"github.com/askhat-dev/travel-marketplace/internal/adapter/nats"
	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/platform/metrics"
	"github.com/askhat-dev/travel-marketplace/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	conn, err := nats.NewConnection(cfg.NATS, "travel-marketplace-worker")
	if err != nil {
		appLogger.Fatalf("failed to connect to NATS: %v", err)
	}
	defer conn.Close()

	sender, err := email.NewSMTPSender(cfg.SMTP, appLogger)
	if err != nil {
		appLogger.Fatalf("failed to initialize SMTP sender: %v", err)
	}

	mm := metrics.NewMetricsManager("travel_marketplace_worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := worker.NewNotifier(conn, sender, mm, appLogger)
	if err := notifier.Start(ctx); err != nil {
		appLogger.Fatalf("failed to start notification worker: %v", err)
	}
	defer notifier.Stop()

	<-ctx.Done()
	appLogger.Info("worker stopped")
}
