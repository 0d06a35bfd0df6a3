package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bloom-shop/internal/cart"
	"bloom-shop/internal/catalog"
	"bloom-shop/internal/checkout"
	"bloom-shop/internal/config"
	"bloom-shop/internal/database"
	custommiddleware "bloom-shop/internal/middleware"
	"bloom-shop/internal/notify"
	"bloom-shop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Dependencies are the backing services the storefront runs on. DB and Redis
// are optional.
type Dependencies struct {
	Products  catalog.Source
	Submitter checkout.Submitter
	DB        database.Service
	Redis     *redis.Client
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	var metrics *custommiddleware.Metrics
	if cfg.Server.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = custommiddleware.NewMetrics(registry)
		router.Use(metrics.Middleware)
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s := &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	router.Get("/health", s.health)

	carts, err := cart.NewRegistry(cfg.Session.MaxCarts, notify.NewLogNotifier(logger))
	if err != nil {
		return nil, err
	}

	catalogService := catalog.NewService(deps.Products, logger, catalog.WithFallbackPriceRange(
		decimal.NewFromFloat(cfg.Catalog.FallbackMin),
		decimal.NewFromFloat(cfg.Catalog.FallbackMax),
	))
	checkoutService := checkout.NewService(deps.Submitter, logger)

	sessions := custommiddleware.NewSessionManager(custommiddleware.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Server.Env == "production",
	})

	// Checkout is only throttled when Redis is available
	var limiter func(http.Handler) http.Handler
	if deps.Redis != nil {
		limiter = custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.Checkout.RateLimit,
			Window:            cfg.Checkout.RateWindow,
			KeyPrefix:         "ratelimit:checkout",
		}, logger)
	}

	router.Group(func(r chi.Router) {
		r.Use(sessions.Middleware(logger))
		r.Use(custommiddleware.LoggingMiddleware(logger))

		transport.NewCatalogHandler(catalogService, logger).RegisterRoutes(r)
		transport.NewCartHandler(carts, catalogService, metrics, logger).RegisterRoutes(r)
		transport.NewCheckoutHandler(carts, checkoutService, metrics, logger).RegisterRoutes(r, limiter)
	})

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{"status": "ok"}

	if s.deps.DB != nil {
		dbHealth := s.deps.DB.Health(r.Context())
		body["database"] = dbHealth
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}

	if s.deps.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = map[string]string{"status": "down", "error": err.Error()}
		} else {
			body["redis"] = map[string]string{"status": "up"}
		}
	}

	custommiddleware.RespondWithJSON(w, status, body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
