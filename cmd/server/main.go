package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mayday/coordinator/internal/api"
	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/db"
	"mayday/coordinator/internal/jobs"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"
	"mayday/coordinator/internal/routes"
	"mayday/coordinator/internal/workers"
)

// @title Mayday Coordinator API
// @version 1.0
// @description Disaster-response coordination: events, volunteers, resources.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Mayday coordinator starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if err := run(cfg); err != nil {
		logging.Fatal("Server exited with error", "error", err.Error())
	}
}

func run(cfg *config.Config) error {
	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(orm); err != nil {
		return err
	}

	sqlxDB, err := db.InitSQLX(cfg.Database, orm)
	if err != nil {
		return err
	}

	metricsReg := metrics.NewMetricsRegistry()
	deps, err := api.InitDependencies(cfg, orm, sqlxDB, metricsReg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs.InitializeJobs(ctx, orm, deps.Services.Reconciler, metricsReg, cfg.ReconcileInterval)
	workers.InitWorkers(ctx, deps.Sinks.Stream, deps.Sinks.Broadcaster)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           routes.RegisterRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutdown signal received, draining connections")
	// Event streams never finish on their own.
	deps.Sinks.Broadcaster.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logging.Info("Server stopped")
	return nil
}
