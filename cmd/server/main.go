package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/ajmusgrove/bookstore/internal/adapter/handler"
	"github.com/ajmusgrove/bookstore/internal/adapter/notify"
	"github.com/ajmusgrove/bookstore/internal/adapter/payment"
	"github.com/ajmusgrove/bookstore/internal/adapter/storage"
	"github.com/ajmusgrove/bookstore/internal/config"
	"github.com/ajmusgrove/bookstore/internal/core/service"
	"github.com/ajmusgrove/bookstore/internal/port"
)

// Parameter-table keys, mirroring the deployment's parameter store layout.
const (
	stripeKeyParam       = "stripe_api_key"
	baseURLParam         = "public_base_url"
	fulfillEndpointParam = "fulfillment_endpoint"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("failed to connect mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	// Runtime secrets come from the parameter table
	stripeKey, err := mysqlAdapter.GetParam(ctx, stripeKeyParam)
	if err != nil {
		logger.Error("failed to read stripe key", "error", err)
		os.Exit(1)
	}
	baseURL, err := mysqlAdapter.GetParam(ctx, baseURLParam)
	if err != nil {
		logger.Error("failed to read public base url", "error", err)
		os.Exit(1)
	}

	stripeAdapter := payment.NewStripeAdapter(stripeKey)

	var notifier port.FulfillmentNotifier
	fulfillEndpoint, err := mysqlAdapter.GetParam(ctx, fulfillEndpointParam)
	switch {
	case errors.Is(err, port.ErrParamNotFound):
		logger.Warn("no fulfillment endpoint configured, records go to the log")
		notifier = notify.NewLogNotifier(logger)
	case err != nil:
		logger.Error("failed to read fulfillment endpoint", "error", err)
		os.Exit(1)
	default:
		notifier = notify.NewWebhookNotifier(fulfillEndpoint, logger)
	}

	// Initialize services
	checkoutService := service.NewCheckoutService(mysqlAdapter, stripeAdapter, cfg.Currency, baseURL, logger)
	fulfillmentService := service.NewFulfillmentService(redisAdapter, notifier, logger)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(checkoutService, fulfillmentService, cfg.StaticDir, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/create-checkout-session", httpHandler.CreateCheckoutSession)
	mux.HandleFunc("/session-status", httpHandler.SessionStatus)
	mux.Handle("/", httpHandler.Storefront())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}
