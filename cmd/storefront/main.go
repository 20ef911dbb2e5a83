package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("storefront starting", "storage", cfg.StorageBackend, "orders", cfg.OrderBackend, "catalog", cfg.CatalogBackend)

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	kv, closeKV, err := newKeyValueStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up cart storage", "error", err)
		os.Exit(1)
	}
	closers = append(closers, closeKV)

	var rest *backend.Client
	if cfg.UsesREST() {
		rest = backend.NewClient(backend.Config{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.BackendAPIKey,
			Timeout: cfg.BackendTimeout,
		}, logger)
	}

	var orderStore orders.Store = rest
	if cfg.OrderBackend == config.BackendPostgres {
		repo, err := orders.NewRepository(&orders.Credentials{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		})
		if err != nil {
			logger.Error("failed to connect to orders database", "error", err)
			os.Exit(1)
		}
		closers = append(closers, func() { repo.Close() })
		if err := repo.RunMigrations(); err != nil {
			logger.Error("failed to run orders migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("orders database migrations completed")
		orderStore = repo
	}

	var products catalog.Source = rest
	if cfg.CatalogBackend == config.BackendSQLite {
		repo, err := catalog.NewRepository(cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open catalog database", "error", err)
			os.Exit(1)
		}
		closers = append(closers, func() { repo.Close() })
		if err := repo.RunMigrations(); err != nil {
			logger.Error("failed to run catalog migrations", "error", err)
			os.Exit(1)
		}
		products = repo
	}

	var notifier checkout.Notifier
	if cfg.KafkaEnabled() {
		publisher := events.NewPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("error closing kafka writer", "error", err)
			}
		})
		notifier = publisher
		logger.Info("publishing order events", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		logger.Error("invalid jwt configuration", "error", err)
		os.Exit(1)
	}

	sessions := cart.NewSessions(kv, cfg.CartNamespace, logger)
	serverMetrics := metrics.NewServerMetrics("http")
	serverMetrics.TrackActiveCarts(sessions.Len)

	handler := h.NewRouter(h.RouterDeps{
		Logger:             logger,
		Verifier:           verifier,
		Metrics:            serverMetrics,
		Sessions:           sessions,
		Products:           products,
		Checkout:           checkout.NewService(orderStore, notifier, logger),
		Orders:             orderStore,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(handler, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newKeyValueStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.KeyValueStore, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		logger.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		return storage.NewRedisStore(client), func() { client.Close() }, nil

	case config.StorageMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
		return storage.NewMongoStore(db), func() { _ = db.Client().Disconnect(context.Background()) }, nil

	default:
		logger.Warn("cart storage is in memory; carts are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}
}
