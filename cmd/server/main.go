// Package main is the entry point for the saved filter API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pkgconsole/internal/domain/filter"
	"pkgconsole/internal/filtrage"
	v1 "pkgconsole/internal/infrastructure/http/v1"
	"pkgconsole/internal/infrastructure/storage/postgres"
	"pkgconsole/internal/infrastructure/storage/postgres/filter_repo"
	"pkgconsole/pkg/logger"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.development(),
	})

	ctx := context.Background()
	ctx = logger.WithLogger(ctx, log)
	log.Info("starting saved filter server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = min(poolCfg.MinConns, poolCfg.MaxConns)
	poolCfg.MaxConnIdleTime = cfg.ConnIdleTimeout

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.Migrate {
		if err := pool.Migrate(ctx); err != nil {
			log.Fatalw("failed to migrate database", "error", err)
		}
	}
	pool.LogPoolStats(ctx)

	txManager := postgres.NewTxManager(pool)

	// --- Saved filters ---
	service := filter.NewService(
		filter_repo.NewFilterRepo(txManager),
		txManager,
		func(value string) error {
			_, err := filtrage.SanitizeValue(value)
			return err
		},
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:  log,
		Filters: service,
		DB:      txManager,
		Debug:   cfg.development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
