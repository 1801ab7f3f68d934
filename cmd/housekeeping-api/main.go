// main is the entry point of the Housekeeping API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the configured storage backend (SQLite or PostgreSQL)
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close storage, exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/housekeeping-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/housekeeping-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/housekeeping-api/internal/config"
	"github.com/aanand-mishra/housekeeping-api/internal/http/handlers/record"
	"github.com/aanand-mishra/housekeeping-api/internal/metrics"
	"github.com/aanand-mishra/housekeeping-api/internal/schema"
	"github.com/aanand-mishra/housekeeping-api/internal/storage"
	"github.com/aanand-mishra/housekeeping-api/internal/storage/postgres"
	"github.com/aanand-mishra/housekeeping-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through the package-level slog functions, so the
	// configured logger becomes the default.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting housekeeping-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	store, err := openStorage(context.Background(), cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	// Route table:
	//   GET    /api/schemas                    → schema catalogue
	//   POST   /api/{collection}               → validate and store a record
	//   POST   /api/{collection}/validate      → validate only
	//   GET    /api/{collection}               → list records
	//   GET    /api/{collection}/{id}          → get one record
	//   DELETE /api/{collection}/{id}          → delete a record
	//   GET    /metrics                        → Prometheus metrics
	v := schema.NewValidator(schema.Default())
	reg := v.Registry()
	m := metrics.New()

	router := http.NewServeMux()
	router.HandleFunc("GET /api/schemas", m.Instrument("/api/schemas", record.Schemas(reg)))
	router.HandleFunc("POST /api/{collection}", m.Instrument("/api/{collection}", record.New(v, store, m)))
	router.HandleFunc("POST /api/{collection}/validate", m.Instrument("/api/{collection}/validate", record.Validate(v, m)))
	router.HandleFunc("GET /api/{collection}", m.Instrument("/api/{collection}", record.GetList(reg, store, m)))
	router.HandleFunc("GET /api/{collection}/{id}", m.Instrument("/api/{collection}/{id}", record.GetByID(reg, store, m)))
	router.HandleFunc("DELETE /api/{collection}/{id}", m.Instrument("/api/{collection}/{id}", record.Delete(reg, store, m)))
	router.Handle("GET /metrics", m.Handler())

	// ── 5. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// openStorage opens the backend named by cfg.Storage.Driver.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging / production: JSON output, at DEBUG and INFO level respectively.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
