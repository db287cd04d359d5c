package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/pereval/api"
	dbfs "github.com/garnizeh/pereval/db"
	"github.com/garnizeh/pereval/internal/config"
	"github.com/garnizeh/pereval/internal/db"
	"github.com/garnizeh/pereval/internal/repository/sqlrepo"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := config.SetupLogger(cfg)
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting pereval server",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Open database connection
	conn, err := db.New(ctx, db.Dialect(cfg.Database.Driver), cfg.Database.DSN(), logger,
		db.Options{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		logger.Error("failed to open database", slog.Any("err", err))
		os.Exit(1)
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
			logger.Error("failed to apply schema", slog.Any("err", err))
			conn.Close()
			os.Exit(1)
		}
	}

	store := sqlrepo.New(conn, logger)
	handler := api.SetupRoutes(version, buildTime, store)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}

	if err := conn.Close(); err != nil {
		logger.Error("error closing database", slog.Any("err", err))
	}

	logger.Info("server exited")
}
