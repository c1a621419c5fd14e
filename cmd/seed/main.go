package main

import (
	"context"
	"flag"
	"log"

	"github.com/askhat-dev/travel-marketplace/internal/app"
	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/seeder"
)

func main() {
	var opts seeder.Options
	flag.IntVar(&opts.Listings, "listings", 20, "number of listings to create")
	flag.BoolVar(&opts.Bookings, "bookings", false, "create sample bookings")
	flag.BoolVar(&opts.Reviews, "reviews", false, "create sample reviews")
	flag.BoolVar(&opts.Clear, "clear", false, "clear existing data before seeding")
	flag.Parse()

	cfg := config.MustLoad()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   "console",
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg, appLogger, app.Options{ClientName: "travel-marketplace-seed"})
	if err != nil {
		appLogger.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close(ctx)

	s := seeder.New(
		application.Users,
		application.Listings,
		application.Bookings,
		application.Reviews,
		application.UserRepo,
		application.ListingRepo,
		application.BookingRepo,
		application.ReviewRepo,
		appLogger,
	)

	if err := s.Run(ctx, opts); err != nil {
		appLogger.Fatalf("seeding failed: %v", err)
	}
}
