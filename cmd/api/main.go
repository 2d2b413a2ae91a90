// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

// Command api is the entry point of the church administration API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL and run migrations (when DATABASE_URL is set).
//  4. Connect to Redis (when a backend needs it).
//  5. Build session, rate limiting and identity components.
//  6. Register routes and start the dispatcher.
//  7. Drain connections on SIGINT or SIGTERM.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zlovtnik/iead-sub004/internal/api"
	"github.com/zlovtnik/iead-sub004/internal/platform/config"
	"github.com/zlovtnik/iead-sub004/internal/platform/constants"
	"github.com/zlovtnik/iead-sub004/internal/platform/middleware"
	"github.com/zlovtnik/iead-sub004/internal/platform/migration"
	pgstore "github.com/zlovtnik/iead-sub004/internal/platform/postgres"
	redisstore "github.com/zlovtnik/iead-sub004/internal/platform/redis"
	"github.com/zlovtnik/iead-sub004/internal/ratelimit"
	"github.com/zlovtnik/iead-sub004/internal/router"
	"github.com/zlovtnik/iead-sub004/internal/session"
	"github.com/zlovtnik/iead-sub004/internal/users/identity"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("addr", cfg.Addr()),
		slog.String("session_backend", cfg.SessionBackend),
		slog.String("rate_limit_backend", cfg.RateLimitBackend),
		slog.Int("trusted_proxies", len(cfg.TrustedProxies)),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	health := api.HealthDependencies{}

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool, err = pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("postgres_pool_closing")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")
		health.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }
	}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("redis_client_closing")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}

	// Background workers live until shutdown begins.
	workers, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// ── 5. Sessions ───────────────────────────────────────────────────────
	var sessionStore session.Store
	switch cfg.SessionBackend {
	case config.BackendRedis:
		sessionStore = session.NewRedisStore(rdb)
	case config.BackendPostgres:
		sessionStore = session.NewPostgresStore(pool)
	default:
		sessionStore = session.NewMemoryStore()
	}

	sessions := session.NewManager(sessionStore, cfg.SessionTTL, session.WithLogger(log))
	go sessions.RunJanitor(workers, constants.SessionSweepInterval)

	// ── 6. Rate Limiting ──────────────────────────────────────────────────
	var limiter ratelimit.Limiter
	if cfg.RateLimitBackend == config.BackendRedis {
		limiter = ratelimit.NewRedisLimiter(rdb)
	} else {
		memoryLimiter := ratelimit.NewMemoryLimiter()
		go memoryLimiter.Run(workers, constants.RateLimitCleanupInterval)
		limiter = memoryLimiter
	}

	throttle := ratelimit.NewThrottle(cfg.ClientRPS, cfg.ClientBurst, constants.RateLimitClientTTL)
	go throttle.Run(workers, constants.RateLimitCleanupInterval)

	// ── 7. Identity ───────────────────────────────────────────────────────
	var users identity.Repository = identity.NewMemoryRepository()
	if pool != nil {
		users = identity.NewPostgresRepository(pool)
	}
	identityService := identity.NewService(users, sessions, log)

	if cfg.BootstrapAdminPassword != "" {
		created, err := identityService.Bootstrap(startupCtx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		must(log, err, "bootstrap administrator")
		if created {
			log.Info("bootstrap_admin_created", slog.String("username", cfg.BootstrapAdminUsername))
		}
	} else {
		log.Warn("bootstrap_admin_skipped", slog.String("reason", "BOOTSTRAP_ADMIN_PASSWORD not set"))
	}

	// ── 8. Routes ─────────────────────────────────────────────────────────
	composer := middleware.NewComposer(limiter, throttle, sessions, identityService)
	routes := router.New()

	identityHandler := identity.NewHandler(identityService, composer, identity.LoginLimit{
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginWindow,
	})
	must(log, identityHandler.Register(routes), "register identity routes")

	for _, route := range routes.Routes() {
		log.Debug("route_registered", slog.String("path", route.Path), slog.Any("methods", route.Methods))
	}

	// ── 9. Server ─────────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(health, log)
	server := api.NewServer(cfg, log, routes, api.Handlers{Liveness: liveness, Readiness: readiness})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe(context.Background(), cfg.Addr())
	}()

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	signals, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	select {
	case <-signals.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		if !errors.Is(err, api.ErrServerClosed) {
			log.Error("server_failed", slog.Any("error", err))
		}
	}

	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown_incomplete", slog.Any("error", err))
		return
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(logger)
	return logger
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
