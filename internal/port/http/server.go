package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/platform/metrics"
	"github.com/askhat-dev/travel-marketplace/internal/service"
)

type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

type Handlers struct {
	Listings *ListingHandler
	Bookings *BookingHandler
	Reviews  *ReviewHandler
	Users    *UserHandler
	Payments *PaymentHandler
}

func NewHandlers(
	listings service.ListingService,
	bookings service.BookingService,
	reviews service.ReviewService,
	users service.UserService,
	payments service.PaymentService,
	log logger.Logger,
) Handlers {
	return Handlers{
		Listings: NewListingHandler(listings, log),
		Bookings: NewBookingHandler(bookings, log),
		Reviews:  NewReviewHandler(reviews, log),
		Users:    NewUserHandler(users, log),
		Payments: NewPaymentHandler(payments, log),
	}
}

func NewServer(cfg config.HTTPServerConfig, authCfg config.AuthConfig, h Handlers, mm *metrics.MetricsManager, log logger.Logger) *Server {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(RequestLogger(log, mm))
	r.Use(Recoverer(log))

	auth := JWTAuth(authCfg.JWTSecret, log)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if mm != nil {
		r.Method(http.MethodGet, "/metrics", mm.Handler())
	}

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", h.Listings.List)
		r.Get("/{id}", h.Listings.Get)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Listings.Create)
			r.Put("/{id}", h.Listings.Update)
			r.Delete("/{id}", h.Listings.Delete)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.Bookings.List)
		r.Post("/", h.Bookings.Create)
		r.Get("/{id}", h.Bookings.Get)
		r.Put("/{id}", h.Bookings.Update)
		r.Delete("/{id}", h.Bookings.Delete)
		r.Post("/{id}/confirm", h.Bookings.Confirm)
		r.Post("/{id}/cancel", h.Bookings.Cancel)
		r.Post("/{id}/complete", h.Bookings.Complete)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.Reviews.List)
		r.Get("/{id}", h.Reviews.Get)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Reviews.Create)
			r.Put("/{id}", h.Reviews.Update)
			r.Delete("/{id}", h.Reviews.Delete)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Users.Register)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/", h.Users.List)
			r.Get("/{id}", h.Users.Get)
		})
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/callback", h.Payments.Callback)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Payments.Initiate)
			r.Get("/{id}", h.Payments.Get)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
