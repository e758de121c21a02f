// Command server runs the todo HTTP service.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fluxorio/todo-service/pkg/api"
	"github.com/fluxorio/todo-service/pkg/auth"
	"github.com/fluxorio/todo-service/pkg/config"
	"github.com/fluxorio/todo-service/pkg/db"
	"github.com/fluxorio/todo-service/pkg/events"
	"github.com/fluxorio/todo-service/pkg/logging"
	"github.com/fluxorio/todo-service/pkg/observability/prometheus"
	"github.com/fluxorio/todo-service/pkg/observability/tracing"
	"github.com/fluxorio/todo-service/pkg/todo"
	"github.com/fluxorio/todo-service/pkg/todo/memory"
	"github.com/fluxorio/todo-service/pkg/todo/postgres"
	"github.com/fluxorio/todo-service/pkg/todo/remote"
	"github.com/fluxorio/todo-service/pkg/todo/sqlstore"
	"github.com/fluxorio/todo-service/pkg/web"
	"github.com/fluxorio/todo-service/pkg/web/middleware"
	authmw "github.com/fluxorio/todo-service/pkg/web/middleware/auth"
	"github.com/fluxorio/todo-service/pkg/web/middleware/security"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewDefaultLogger().Errorf("failed to load config: %v", err)
		os.Exit(1)
	}

	var logger logging.Logger
	if cfg.Log.Format == "json" {
		logger = logging.NewJSONLogger()
	} else {
		logger = logging.NewDefaultLogger()
	}

	if err := run(cfg, logger); err != nil {
		logger.Errorf("server exited with error: %v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger logging.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(tracing.Config{
		Exporter: cfg.Observe.TracingExporter,
		Endpoint: cfg.Observe.TracingEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = shutdownTracing(shutdownCtx)
	}()

	repo, sqlDB, cleanup, err := buildRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	repo = prometheus.InstrumentRepository(repo)

	// Change events: always fan out in-process (feeds /todos/watch);
	// NATS publishing is enabled by configuration
	bus := events.NewBus()
	defer bus.Close()
	publisher := events.Publisher(bus)
	if cfg.Events.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(events.NATSConfig{
			URL:    cfg.Events.NATSURL,
			Prefix: cfg.Events.SubjectPrefix,
		})
		if err != nil {
			return err
		}
		defer natsPub.Close()
		publisher = events.Multi(bus, natsPub)
		logger.Infof("publishing change events to NATS at %s", cfg.Events.NATSURL)
	}

	metrics := prometheus.GetMetrics()
	counted := events.PublisherFunc(func(event events.Event) error {
		metrics.RecordEventPublished(string(event.Type))
		return publisher.Publish(event)
	})

	service := todo.NewService(repo, todo.WithPublisher(
		events.NewServicePublisher(counted, func(err error) {
			logger.Warnf("event publish failed: %v", err)
		}),
	))

	router := web.NewRouter(logger)
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(middleware.RecoveryConfig{Logger: logger}))
	router.Use(security.Headers(security.DefaultHeadersConfig()))
	router.Use(prometheus.MetricsMiddleware())
	router.Use(tracing.Middleware())
	timeoutCfg := middleware.DefaultTimeoutConfig(cfg.Server.RequestTimeout)
	timeoutCfg.SkipPaths = []string{"/todos/watch", "/metrics"}
	router.Use(middleware.Timeout(timeoutCfg))
	if cfg.Server.RequestsPerMinute > 0 {
		rateCfg := security.DefaultRateLimitConfig()
		rateCfg.RequestsPerMinute = cfg.Server.RequestsPerMinute
		router.Use(security.RateLimit(rateCfg))
	}

	if cfg.Auth.JWTSecret != "" {
		var userStore auth.Store
		if sqlDB != nil {
			dialect := "sqlite3"
			if cfg.Repository.Backend == config.BackendPostgresSQL {
				dialect = "postgres"
			}
			store := auth.NewSQLStore(sqlDB, dialect)
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			userStore = store
		} else {
			userStore = auth.NewMemoryStore()
		}
		authService := auth.NewService(userStore, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
		api.NewAuthHandler(authService).Register(router)

		jwtCfg := authmw.DefaultJWTConfig(cfg.Auth.JWTSecret)
		jwtCfg.SkipPaths = []string{"/auth/", "/health", "/ready", "/metrics"}
		router.Use(authmw.JWT(jwtCfg))
		logger.Info("JWT authentication enabled")
	} else {
		logger.Warn("running without authentication; set auth.jwt_secret to enable it")
	}

	api.NewTodoHandler(service).Register(router)
	api.NewHealthHandler(repo).Register(router)
	api.NewWatchHandler(bus, logger).Register(router)
	router.GET("/metrics", prometheus.Handler())

	// Export pool gauges while the server runs
	if sqlDB != nil {
		go pollPoolStats(ctx, sqlDB, metrics)
	}

	server := web.NewServer(web.ServerConfig{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Infof("todo service started (backend: %s)", cfg.Repository.Backend)

	select {
	case sig := <-sigCh:
		logger.Infof("received %s, shutting down", sig)
		if err := server.Stop(); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// buildRepository constructs the configured storage backend.
// sqlDB is non-nil only for database/sql backends and feeds the user
// store and pool metrics.
func buildRepository(ctx context.Context, cfg config.Config) (todo.Repository, *sql.DB, func(), error) {
	noop := func() {}

	switch cfg.Repository.Backend {
	case config.BackendMemory:
		var opts []memory.Option
		if cfg.Repository.Latency > 0 {
			opts = append(opts, memory.WithLatency(cfg.Repository.Latency))
		}
		return memory.New(opts...), nil, noop, nil

	case config.BackendSQLite, config.BackendPostgresSQL:
		driver := "sqlite3"
		dialect := sqlstore.DialectSQLite
		if cfg.Repository.Backend == config.BackendPostgresSQL {
			driver = "postgres"
			dialect = sqlstore.DialectPostgres
		}
		poolCfg := db.DefaultPoolConfig(cfg.Repository.DSN, driver)
		if cfg.Repository.MaxOpenConns > 0 {
			poolCfg.MaxOpenConns = cfg.Repository.MaxOpenConns
		}
		if cfg.Repository.MaxIdleConns > 0 {
			poolCfg.MaxIdleConns = cfg.Repository.MaxIdleConns
		}
		pool, err := db.NewPool(poolCfg)
		if err != nil {
			return nil, nil, noop, err
		}
		repo := sqlstore.New(pool.DB(), dialect)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, noop, err
		}
		return repo, pool.DB(), func() { pool.Close() }, nil

	case config.BackendPostgres:
		repo, err := postgres.Connect(ctx, cfg.Repository.DSN)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, nil, noop, err
		}
		return repo, nil, func() { repo.Close() }, nil

	case config.BackendRemote:
		return remote.New(remote.Config{BaseURL: cfg.Repository.BaseURL}), nil, noop, nil
	}

	// Unreachable: config.Validate rejects unknown backends
	return nil, nil, noop, &db.Error{Code: "INVALID_CONFIG", Message: "unknown backend"}
}

// pollPoolStats mirrors database/sql pool statistics into Prometheus
func pollPoolStats(ctx context.Context, sqlDB *sql.DB, metrics *prometheus.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdatePoolStats(sqlDB.Stats())
		case <-ctx.Done():
			return
		}
	}
}
