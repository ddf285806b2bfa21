// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
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
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
	"github.com/ammerola/pharmacy-be/internal/pkg/logger"
	"github.com/ammerola/pharmacy-be/internal/workers"
)

const serviceName = "pharmacy-worker"

// The worker runs few tasks at once and needs fewer connections than the API
const (
	workerMaxConns = 10
	workerMinConns = 2
)

func main() {
	boot := logger.SetupLogger("info", "json", serviceName, "", "").Logger

	cfg, err := config.Load(boot)
	if err != nil {
		boot.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat, serviceName, cfg.App.Version, cfg.App.Environment).Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("worker shutdown complete")
}

// run serves tasks and the maintenance schedule until ctx is cancelled
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	dbCfg := db.ConfigFrom(cfg.Database)
	dbCfg.MaxConnections, dbCfg.MinConnections = workerMaxConns, workerMinConns
	database, err := db.NewDatabase(ctx, dbCfg, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close()

	redisClient, err := redis_a.NewClient(ctx, redis_a.ClientConfigFrom(cfg), log)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	authz, err := auth.NewPolicyAuthorizer(cfg.Security.Policies, log)
	if err != nil {
		return fmt.Errorf("authorization policies: %w", err)
	}

	queue := asynq.NewClient(workers.RedisConnOpt(cfg.Asynq))
	defer queue.Close()

	clock := ports.SystemClock{}
	cache := redis_a.NewCache(redisClient, cfg.Inventory.LevelCacheTTL, log)
	inventoryRepo := db.NewInventoryRepository(database, log)
	engine := services.NewStockEngine(services.NewLedger(inventoryRepo, database, clock, log), inventoryRepo, database, clock, log)
	orders := services.NewOrderService(database, db.NewOrderRepository(database, log), inventoryRepo,
		engine, authz, clock, cache, queue, log)

	imports := workers.NewPurchaseImportProcessor(orders, db.NewCatalogRepository(database, log), store, log)
	stock := workers.NewStockChangedProcessor(queue, cfg.Inventory.LowStockThreshold, cfg.Notification.LowStockRecipients, log)
	mail := workers.NewNotificationProcessor(cfg.Notification, cfg.App.Environment, log)
	cleanup := workers.NewCleanupProcessor(inventoryRepo, store, clock,
		cfg.Inventory.MovementRetention, cfg.Import.UploadRetention, log)

	mux := asynq.NewServeMux()
	mux.Use(workers.LoggingMiddleware(log))
	mux.HandleFunc(ports.TypePurchaseImport, imports.ProcessImport)
	mux.HandleFunc(ports.TypeStockChanged, stock.ProcessStockChanged)
	mux.HandleFunc(ports.TypeSendEmail, mail.SendEmail)
	mux.HandleFunc(ports.TypeCleanupMovements, cleanup.CleanupMovements)
	mux.HandleFunc(ports.TypeCleanupUploads, cleanup.CleanupUploads)

	scheduler, err := workers.NewScheduler(cfg.Asynq, log)
	if err != nil {
		return err
	}

	srv := workers.NewServer(cfg.Asynq, log)
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("start task server: %w", err)
	}
	defer srv.Shutdown()

	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Shutdown()

	log.Info("worker ready",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}
