package app

import (
	"context"
	"fmt"

	natsgo "github.com/nats-io/nats.go"
	redisgo "github.com/redis/go-redis/v9"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/askhat-dev/travel-marketplace/internal/adapter/chapa"
	"github.com/askhat-dev/travel-marketplace/internal/adapter/mongo"
	"github.com/askhat-dev/travel-marketplace/internal/adapter/nats"
	"github.com/askhat-dev/travel-marketplace/internal/adapter/redis"
	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/platform/metrics"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

// App wires adapters, repositories and services. Mongo is required; Redis and
// NATS degrade gracefully so the seed CLI works without the full stack.
type App struct {
	Cfg     *config.Config
	Log     logger.Logger
	Metrics *metrics.MetricsManager

	MongoClient *mongodrv.Client
	RedisClient *redisgo.Client
	NATSConn    *natsgo.Conn

	ListingRepo repository.ListingRepository
	BookingRepo repository.BookingRepository
	ReviewRepo  repository.ReviewRepository
	UserRepo    repository.UserRepository
	PaymentRepo repository.PaymentRepository

	Listings service.ListingService
	Bookings service.BookingService
	Reviews  service.ReviewService
	Users    service.UserService
	Payments service.PaymentService
}

type Options struct {
	// ClientName identifies this process on the NATS connection.
	ClientName string
	// WithMetrics enables the prometheus registry; the seed CLI leaves it off.
	WithMetrics bool
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	a := &App{Cfg: cfg, Log: log}

	if opts.WithMetrics {
		a.Metrics = metrics.NewMetricsManager("travel_marketplace")
	}

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongodb: %w", err)
	}
	a.MongoClient = mongoClient

	a.ListingRepo = mongo.NewListingRepository(mongoClient, cfg.MongoDB.Database, log)
	a.BookingRepo = mongo.NewBookingRepository(mongoClient, cfg.MongoDB.Database, log)
	a.ReviewRepo = mongo.NewReviewRepository(mongoClient, cfg.MongoDB.Database, log)
	a.UserRepo = mongo.NewUserRepository(mongoClient, cfg.MongoDB.Database, log)
	a.PaymentRepo = mongo.NewPaymentRepository(mongoClient, cfg.MongoDB.Database, log)

	var listingCache repository.ListingCache
	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warnf("redis unavailable, listing cache disabled: %v", err)
	} else {
		a.RedisClient = redisClient
		listingCache = redis.NewListingCache(redisClient)
	}

	var publisher nats.MessagePublisher
	natsConn, err := nats.NewConnection(cfg.NATS, opts.ClientName)
	if err != nil {
		log.Warnf("NATS unavailable, booking events disabled: %v", err)
	} else {
		a.NATSConn = natsConn
		publisher, err = nats.NewPublisher(natsConn)
		if err != nil {
			return nil, fmt.Errorf("nats publisher: %w", err)
		}
	}

	gateway := chapa.NewClient(cfg.Chapa, log)

	a.Listings = service.NewListingService(a.ListingRepo, listingCache, cfg.Cache, cfg.Store, log)
	a.Bookings = service.NewBookingService(a.BookingRepo, a.ListingRepo, a.UserRepo, publisher, a.Metrics, cfg.Store, log)
	a.Reviews = service.NewReviewService(a.ReviewRepo, a.ListingRepo, a.BookingRepo, cfg.Store, log)
	a.Users = service.NewUserService(a.UserRepo, cfg.Store, log)
	a.Payments = service.NewPaymentService(a.PaymentRepo, a.BookingRepo, a.UserRepo, gateway, cfg.Chapa, a.Metrics, cfg.Store, log)

	return a, nil
}

func (a *App) Close(ctx context.Context) {
	if a.NATSConn != nil {
		a.NATSConn.Close()
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Warnf("failed to close redis client: %v", err)
		}
	}
	if a.MongoClient != nil {
		if err := a.MongoClient.Disconnect(ctx); err != nil {
			a.Log.Warnf("failed to disconnect mongodb client: %v", err)
		}
	}
}
