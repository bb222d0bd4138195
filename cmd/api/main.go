// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/honeytoast/trip-planner/internal/config"
	"github.com/honeytoast/trip-planner/internal/handler"
	"github.com/honeytoast/trip-planner/internal/middleware"
	"github.com/honeytoast/trip-planner/internal/nav"
	"github.com/honeytoast/trip-planner/internal/repo"
	"github.com/honeytoast/trip-planner/internal/service"
	"github.com/honeytoast/trip-planner/migrations"
)

// formTTL is how long an untouched draft survives in Redis.
const formTTL = 24 * time.Hour

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Trip backend -----------------------------------------------------
	trips, closeTrips, err := newTripRepo(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up trip backend", "backend", cfg.DataBackend, "error", err)
		os.Exit(1)
	}
	defer closeTrips()

	// --- Form store -------------------------------------------------------
	forms, closeForms, err := newFormStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up form store", "error", err)
		os.Exit(1)
	}
	defer closeForms()

	svc := service.NewTripFormService(forms, trips, service.TripFormConfig{
		Table:         cfg.TripsTable,
		InsertTimeout: cfg.RemoteTimeout,
	}, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. Identity is applied by the server to user routes only.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(svc, nav.Sidebar(), logger)
	r.Mount("/", server.Routes(middleware.NewIdentity([]byte(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for one remote insert on top of normal handling.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RemoteTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newTripRepo builds the repository for the configured backend and returns
// the function that releases it.
func newTripRepo(ctx context.Context, cfg config.Config) (repo.TripRepo, func(), error) {
	if cfg.DataBackend == config.BackendREST {
		client := &http.Client{Timeout: cfg.RemoteTimeout}
		slog.Info("using REST trip backend", "url", cfg.SupabaseURL, "table", cfg.TripsTable)
		return repo.NewRESTTripRepo(cfg.SupabaseURL, cfg.SupabaseAnonKey, client), func() {}, nil
	}

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create database pool: %w", err)
	}

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return repo.NewTripRepo(pool), pool.Close, nil
}

// migrate applies the embedded goose migrations through a database/sql
// handle borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		slog.Info("migration applied",
			"version", res.Source.Version,
			"file", res.Source.Path,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
	return nil
}

// newFormStore picks Redis when REDIS_URL is set and falls back to memory,
// which only suits a single instance.
func newFormStore(ctx context.Context, cfg config.Config) (repo.FormStore, func(), error) {
	if cfg.RedisURL == "" {
		slog.Info("using in-memory form store")
		return repo.NewMemoryFormStore(), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	slog.Info("using redis form store", "addr", opt.Addr, "ttl", formTTL.String())
	return repo.NewRedisFormStore(client, formTTL), func() { _ = client.Close() }, nil
}
