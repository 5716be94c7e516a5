package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/ahmed-hamed0/sani3y.com/api"
	"github.com/ahmed-hamed0/sani3y.com/db"
	"github.com/ahmed-hamed0/sani3y.com/internal/config"
	internaldb "github.com/ahmed-hamed0/sani3y.com/internal/db"
	"github.com/ahmed-hamed0/sani3y.com/internal/lifecycle"
	"github.com/ahmed-hamed0/sani3y.com/internal/ratings"
	"github.com/ahmed-hamed0/sani3y.com/internal/repository/sqlite"
	"github.com/ahmed-hamed0/sani3y.com/internal/tasks"
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

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	log.Printf("Starting sani3y server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations
	conn, err := internaldb.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := internaldb.Migrate(ctx, conn, db.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	handler, err := api.SetupRoutes(cfg, version, buildTime, conn)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// Background workers: acceptance reconciler, rating recompute,
	// signup repair
	store := sqlite.New(conn, logger)
	ratingSvc := ratings.NewService(store, store, logger)
	lifecycleSvc := lifecycle.NewService(store, store, store, store, store, logger)
	handlers := tasks.NewHandlers(lifecycleSvc, ratingSvc, store, store, logger)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	pool := tasks.NewWorkerPool(store, handlers, logger, cfg.WorkerConfig.Count)
	pool.Start(workerCtx)
	pool.Schedule(workerCtx, cfg.WorkerConfig.ReconcileInterval, tasks.TypeReconcileAcceptance)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Stop background workers before closing the database
	cancelWorkers()
	pool.Stop()

	if err := conn.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
