// Package main is the entry point for the ŌmBliss Yoĝa API server.
//
// The main package is kept minimal. Its job is to:
//  1. Read configuration (optional YAML file plus environment)
//  2. Create dependencies (logger, store, payment gateway)
//  3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, ...).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/ombliss-yoga/internal/config"
	"github.com/sakif/ombliss-yoga/internal/payment"
	"github.com/sakif/ombliss-yoga/internal/repository"
	"github.com/sakif/ombliss-yoga/internal/repository/mongo"
	"github.com/sakif/ombliss-yoga/internal/repository/sqlite"
	"github.com/sakif/ombliss-yoga/internal/server"
)

// connectTimeout bounds the initial store connection and ping.
const connectTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file (optional)")
	flag.Parse()

	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	// === 3. OPEN THE STORE ===
	store, err := openStore(cfg.Storage)
	if err != nil {
		logger.Error("failed to open store",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 4. PAYMENT GATEWAY ===
	// Without a key the server still starts; only /create-payment-intent is
	// unavailable.
	var gateway payment.Gateway = payment.Disabled{}
	if cfg.Payment.SecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.Payment.SecretKey, cfg.Payment.BaseURL)
	} else {
		logger.Warn("payment secret key not set, payment intents are disabled")
	}

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, store, gateway, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		store.Close(context.Background())
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func openStore(cfg config.StorageConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.StorageSQLite:
		// os.MkdirAll creates the parent directories if needed (like `mkdir -p`).
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
