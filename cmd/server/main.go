/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the mortgage engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Initialize logger
  3. Initialize SQLite store and seed the workspace
  4. Connect the schedule cache (Redis, or in-memory)
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML configuration file (optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database
  -redis   Redis address for the schedule cache (overrides config)

ENVIRONMENT:
  MORTGAGE_PORT, MORTGAGE_DB, MORTGAGE_REDIS_ADDR, MORTGAGE_CACHE_TTL,
  MORTGAGE_LOG_LEVEL, MORTGAGE_LOG_FORMAT, MORTGAGE_EURIBOR_SEED

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close cache and database connections
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/mortgages.db"

  # Run with in-memory database and Redis cache
  ./server -db=":memory:" -redis=localhost:6379

SEE ALSO:
  - config/config.go: Configuration loading
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

	"github.com/warp/mortgage-engine/api"
	"github.com/warp/mortgage-engine/cache"
	"github.com/warp/mortgage-engine/config"
	"github.com/warp/mortgage-engine/euribor"
	"github.com/warp/mortgage-engine/portfolio"
	"github.com/warp/mortgage-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML configuration file")
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	redisAddr := flag.String("redis", "", "Redis address for the schedule cache")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}
	if *redisAddr != "" {
		cfg.Redis.Addr = *redisAddr
	}

	logger := config.InitLogger(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Initialize store
	store, err := sqlite.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	source := euribor.NewRandomSource()
	if cfg.Euribor.Seed != 0 {
		source = euribor.NewSeededSource(cfg.Euribor.Seed)
	}
	svc := portfolio.NewService(store,
		portfolio.WithSource(source),
		portfolio.WithLogger(logger),
	)
	if err := svc.EnsureDefault(context.Background()); err != nil {
		return fmt.Errorf("seed workspace: %w", err)
	}

	schedules, closeCache := newCache(cfg.Redis, logger)
	defer closeCache()

	handler := api.NewHandler(svc, schedules, api.NewMetrics())
	handler.CacheTTL = cfg.Redis.CacheTTL
	handler.Logger = logger

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", cfg.Database)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
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

// newCache connects to Redis when configured and reachable, and falls back
// to the in-memory cache otherwise.
func newCache(cfg config.RedisConfig, logger *slog.Logger) (cache.Cache, func()) {
	if cfg.Addr == "" {
		return cache.NewMemory(), func() {}
	}

	r := cache.NewRedis(cfg.Addr)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, using in-memory schedule cache", "addr", cfg.Addr, "error", err)
		r.Close()
		return cache.NewMemory(), func() {}
	}

	logger.Info("schedule cache connected", "addr", cfg.Addr)
	return r, func() { r.Close() }
}
