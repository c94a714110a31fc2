package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/afip-einvoicing/internal/api"
	"github.com/afip-einvoicing/internal/billing/afip"
	"github.com/afip-einvoicing/internal/config"
	"github.com/afip-einvoicing/internal/data/mongo"
	"github.com/afip-einvoicing/internal/data/postgres"
	"github.com/afip-einvoicing/internal/invoicing/poller"
	"github.com/afip-einvoicing/internal/invoicing/service"
	"github.com/afip-einvoicing/internal/lock"
	"github.com/afip-einvoicing/internal/logger"
	"github.com/afip-einvoicing/internal/observability/metrics"
	"github.com/afip-einvoicing/internal/platform/persistence"
	"github.com/afip-einvoicing/internal/queue"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("invoicing_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Invoicing Service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepository(log, postgresDB)
	submissionRepo := mongo.NewSubmissionRepository(log, mongoDB.Database())

	// Initialize billing client
	billingClient := afip.NewClient(log, &cfg.Afip)

	// Initialize in-process pipeline primitives. Queue and lock are shared
	// by the HTTP surface and the background poller.
	eventQueue := queue.NewInMemory()
	drainLock := lock.New()
	serviceMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Initialize services
	createService := service.NewCreateService(invoiceRepo, eventQueue, serviceMetrics, log)
	processService := service.NewProcessService(invoiceRepo, submissionRepo, billingClient, eventQueue, drainLock, serviceMetrics, log)
	validateService := service.NewValidateService(billingClient, log)

	// Initialize drain poller
	drainPoller, err := poller.NewPoller(&cfg.Drain, processService, log)
	if err != nil {
		log.Error("Failed to initialize drain poller", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := api.NewServer(log, cfg, createService, processService, validateService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start drain poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		drainPoller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for the poller to finish its current drain
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Drain poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}
	drainPoller.Shutdown()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Invoicing Service shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Invoicing Service shutdown completed with errors")
	} else {
		log.Info("Invoicing Service shutdown completed successfully")
	}
}
