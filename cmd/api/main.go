package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bloom-shop/internal/catalog"
	"bloom-shop/internal/checkout"
	"bloom-shop/internal/config"
	"bloom-shop/internal/database"
	"bloom-shop/internal/logger"
	"bloom-shop/internal/repository"
	"bloom-shop/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight checkouts get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

// productSource builds the catalog source named by CATALOG_SOURCE. The
// database service is returned when the source needs one.
func productSource(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalog.Source, database.Service, error) {
	switch cfg.Catalog.Source {
	case config.SourceFixture:
		src, err := catalog.LoadMemorySource(cfg.Catalog.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil

	case config.SourceRemote:
		return catalog.NewRemoteSource(cfg.Catalog.RemoteURL, cfg.Catalog.RemoteTimeout), nil, nil

	case config.SourcePostgres:
		dbService, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Database health check", zap.Any("health", dbService.Health(ctx)))

		if err := database.RunMigrations(dbService.DB(), log); err != nil {
			dbService.Close()
			return nil, nil, err
		}

		repo := repository.NewProductRepository(dbService.DB())
		if cfg.Catalog.Seed {
			products, err := catalog.LoadDataset(cfg.Catalog.FixturePath)
			if err != nil {
				dbService.Close()
				return nil, nil, err
			}
			if err := repository.Seed(ctx, repo, products); err != nil {
				dbService.Close()
				return nil, nil, err
			}
			log.Info("Product catalog seeded", zap.Int("products", len(products)))
		}
		return repo, dbService, nil
	}

	return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
}

func main() {
	migrationStatus := flag.Bool("migration-status", false, "print the database migration status and exit")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	if *migrationStatus {
		dbService, err := database.New(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer dbService.Close()
		if err := database.GetMigrationStatus(dbService.DB()); err != nil {
			log.Fatal("Failed to read migration status", zap.Error(err))
		}
		return
	}

	log.Info("Starting flower storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	products, dbService, err := productSource(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize product source", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, continuing without it until it recovers", zap.Error(err))
		}

		if cfg.Catalog.CacheTTL > 0 {
			products = catalog.NewCachedSource(products, redisClient, cfg.Catalog.CacheTTL, log)
			log.Info("Product cache enabled", zap.Duration("ttl", cfg.Catalog.CacheTTL))
		}
	}

	deps := server.Dependencies{
		Products:  products,
		Submitter: checkout.MockSubmitter{Delay: cfg.Checkout.ProcessingTime},
		DB:        dbService,
		Redis:     redisClient,
	}

	srv, err := server.NewServer(cfg, log, deps)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
