package main

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/askhat-dev/travel-marketplace/internal/app"
	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/port/http"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, appLogger, app.Options{
		ClientName:  "travel-marketplace-server",
		WithMetrics: true,
	})
	if err != nil {
		appLogger.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close(context.Background())

	handlers := http.NewHandlers(
		application.Listings,
		application.Bookings,
		application.Reviews,
		application.Users,
		application.Payments,
		appLogger,
	)
	server := http.NewServer(cfg.HTTPServer, cfg.Auth, handlers, application.Metrics, appLogger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		appLogger.Fatalf("HTTP server failed: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.TimeoutGraceful)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("graceful shutdown failed: %v", err)
	}
	appLogger.Info("server stopped")
}
