/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the work log server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, WORKLOG_* variables)
  2. Parse command-line flags (override the environment)
  3. Initialize SQLite store
  4. Create API handler and compliance scheduler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: WORKLOG_PORT or 8080)
  -db         SQLite database path (default: WORKLOG_DB or worklog.db)
              Use ":memory:" for in-memory database
  -log-level  debug, info, warn, error (default: WORKLOG_LOG_LEVEL or info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the compliance scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -db="./data/worklog.db"
  ./server -db=":memory:" -log-level=debug
  WORKLOG_PORT=3000 ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/warp/worklog-engine/api"
	"github.com/warp/worklog-engine/config"
	"github.com/warp/worklog-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	logLevel := flag.String("log-level", cfg.App.LogLevel, "Log level (debug, info, warn, error)")
	flag.Parse()

	level, err := config.ParseLevel(*logLevel)
	if err != nil {
		return err
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worklog"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, logger)

	scheduler := api.NewComplianceScheduler(handler.Evaluator, logger)
	scheduler.Enabled = cfg.Compliance.Enabled
	scheduler.CheckInterval = cfg.Compliance.Interval
	handler.Compliance = scheduler
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Scenarios:      cfg.IsDevelopment(),
		StaticDir:      cfg.App.StaticDir,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", *port), slog.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
