// cmd/api/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/adapters/auth"
	"github.com/ammerola/pharmacy-be/internal/adapters/db"
	redis_a "github.com/ammerola/pharmacy-be/internal/adapters/redis_adapter"
	"github.com/ammerola/pharmacy-be/internal/adapters/storage"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/core/services"
	"github.com/ammerola/pharmacy-be/internal/handlers"
	"github.com/ammerola/pharmacy-be/internal/handlers/middleware"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
	"github.com/ammerola/pharmacy-be/internal/pkg/logger"
	"github.com/ammerola/pharmacy-be/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	boot := logger.SetupLogger("info", "json", "pharmacy-api", Version, "").Logger
	boot.Info("starting pharmacy order and inventory service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion))

	cfg, err := config.Load(boot)
	if err != nil {
		boot.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat, cfg.App.Name, Version, cfg.App.Environment).Logger
	log.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if *migrateCmd != "" {
		err = migrateCommand(ctx, cfg, *migrateCmd, log)
	} else {
		err = serve(ctx, cfg, log)
	}
	if err != nil {
		log.Error("exiting", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests for at most the graceful timeout
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	deps, err := initializeDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close()

	server := newHTTPServer(cfg, deps, log)
	listenErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			slog.String("address", server.Addr),
			slog.Bool("tls", cfg.Server.TLSEnabled))
		if cfg.Server.TLSEnabled {
			listenErr <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
			return
		}
		listenErr <- server.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining requests",
		slog.Duration("graceful_timeout", cfg.Server.GracefulTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server shutdown complete")
	return nil
}

// dependencies are the long-lived clients the handlers share
type dependencies struct {
	closers  []func() error
	tokens   *auth.TokenService
	handlers handlers.Handlers
}

// close releases clients in reverse order of creation
func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *dependencies, err error) {
	deps := &dependencies{}
	defer func() {
		if err != nil {
			deps.close()
		}
	}()

	log.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name))
	database, err := db.NewDatabase(ctx, db.ConfigFrom(cfg.Database), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.closers = append(deps.closers, func() error { database.Close(); return nil })

	redisClient, err := redis_a.NewClient(ctx, redis_a.ClientConfigFrom(cfg), log)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, redisClient.Close)
	cache := redis_a.NewCache(redisClient, cfg.Inventory.LevelCacheTTL, log)

	queue := asynq.NewClient(workers.RedisConnOpt(cfg.Asynq))
	inspector := asynq.NewInspector(workers.RedisConnOpt(cfg.Asynq))
	deps.closers = append(deps.closers, queue.Close, inspector.Close)

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	authz, err := auth.NewPolicyAuthorizer(cfg.Security.Policies, log)
	if err != nil {
		return nil, fmt.Errorf("failed to compile authorization policies: %w", err)
	}
	deps.tokens = auth.NewTokenService(auth.JWTConfig{
		Secret: cfg.Security.JWTSecret,
		Issuer: cfg.Security.JWTIssuer,
		TTL:    cfg.Security.JWTExpiration,
	})

	clock := ports.SystemClock{}
	orderRepo := db.NewOrderRepository(database, log)
	inventoryRepo := db.NewInventoryRepository(database, log)
	catalogRepo := db.NewCatalogRepository(database, log)

	engine := services.NewStockEngine(services.NewLedger(inventoryRepo, database, clock, log), inventoryRepo, database, clock, log)
	orders := services.NewOrderService(database, orderRepo, inventoryRepo, engine, authz, clock, cache, queue, log)
	inventory := services.NewInventoryService(inventoryRepo, authz, clock, cache, cfg.Inventory.LevelCacheTTL, log)
	catalog := services.NewCatalogService(catalogRepo, authz, clock, log)

	deps.handlers = handlers.Handlers{
		Orders:    handlers.NewOrderHandler(orders, log),
		Inventory: handlers.NewInventoryHandler(inventory, log),
		Catalog:   handlers.NewCatalogHandler(catalog, log),
		Import: handlers.NewImportHandler(orders, authz, store, queue, inspector, clock,
			handlers.ImportConfig{
				MaxFileSize:       int64(cfg.Import.MaxUploadMB) << 20,
				ProcessingTimeout: cfg.Import.ProcessingTimeout,
			}, log),
		Export: handlers.NewExportHandler(inventory, catalog, clock, log),
		Health: handlers.NewHealthHandler(database, cache, inspector, cfg.App, log),
	}

	log.Info("dependencies initialized")
	return deps, nil
}

// newHTTPServer wraps the router in the middleware stack the config enables.
// The first listed middleware sees the request first.
func newHTTPServer(cfg *config.Config, deps *dependencies, log *slog.Logger) *http.Server {
	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recovery(log),
	}
	sec := cfg.Security
	if sec.RateLimitRequests > 0 {
		mws = append(mws, middleware.RateLimit(sec.RateLimitRequests, sec.RateLimitDuration))
	}
	if len(sec.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(sec.AllowedOrigins))
	}
	if sec.SecureHeaders {
		mws = append(mws, middleware.SecureHeaders)
	}
	if cfg.Server.EnableCompression {
		mws = append(mws, middleware.Compression)
	}
	if cfg.Server.WriteTimeout > 0 {
		mws = append(mws, middleware.Timeout(cfg.Server.WriteTimeout))
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(handlers.NewRouter(deps.handlers, deps.tokens, log), mws...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(log.Handler(), slog.LevelError),
	}
}

func migrationConfig(cfg *config.Config) *db.MigrationConfig {
	return &db.MigrationConfig{
		DatabaseURL:      cfg.GetDatabaseURL(),
		TableName:        "schema_migrations",
		SchemaName:       "public",
		StatementTimeout: cfg.Database.StatementTimeout,
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")
	return db.RunMigrationsWithRetry(ctx, migrationConfig(cfg), logger, 3)
}

// migrateCommand runs one -migrate command and prints status as JSON on stdout
func migrateCommand(ctx context.Context, cfg *config.Config, cmd string, logger *slog.Logger) error {
	if cmd == "up" {
		return runMigrations(ctx, cfg, logger)
	}

	migrator, err := db.NewMigrator(migrationConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch cmd {
	case "down":
		return migrator.Down(ctx)
	case "status":
		status, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	default:
		return fmt.Errorf("unknown migrate command %q", cmd)
	}
}
