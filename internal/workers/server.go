// internal/workers/server.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

const (
	retryBase = time.Second
	retryCap  = 10 * time.Minute
)

// Periodic lists the maintenance tasks the scheduler enqueues, in cron syntax (UTC)
var Periodic = []PeriodicTask{
	{Spec: "30 3 * * *", TaskType: ports.TypeCleanupMovements},
	{Spec: "@every 1h", TaskType: ports.TypeCleanupUploads},
}

// PeriodicTask is one scheduler entry
type PeriodicTask struct {
	Spec     string
	TaskType string
}

// RedisConnOpt points asynq at its logical database on the shared Redis
func RedisConnOpt(cfg config.AsynqConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// NewServer builds the task server with weighted queues and capped
// exponential retry
func NewServer(cfg config.AsynqConfig, log *slog.Logger) *asynq.Server {
	return asynq.NewServer(RedisConnOpt(cfg), asynq.Config{
		Concurrency:     cfg.Concurrency,
		Queues:          cfg.Queues,
		StrictPriority:  cfg.StrictPriority,
		ShutdownTimeout: cfg.ShutdownTimeout,
		RetryDelayFunc:  RetryDelay,
		Logger:          NewAsynqLogger(log),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.ErrorContext(ctx, "task attempt failed",
				slog.String("task_type", t.Type()),
				slog.Int("retried", retried),
				slog.Int("max_retry", maxRetry),
				slog.Bool("final", retried >= maxRetry),
				slog.String("error", err.Error()))
		}),
		HealthCheckFunc: func(err error) {
			if err != nil {
				log.Error("redis health check failed", slog.String("error", err.Error()))
			}
		},
	})
}

// RetryDelay doubles from one second per attempt up to ten minutes
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n >= 10 {
		return retryCap
	}
	return min(retryBase<<n, retryCap)
}

// NewScheduler registers every Periodic task on the low queue. Unique keeps
// a slow run from overlapping the next tick.
func NewScheduler(cfg config.AsynqConfig, log *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisConnOpt(cfg), &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   NewAsynqLogger(log),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic enqueue failed", slog.String("error", err.Error()))
			}
		},
	})

	for _, p := range Periodic {
		id, err := scheduler.Register(p.Spec, asynq.NewTask(p.TaskType, nil),
			asynq.Queue(ports.QueueLow), asynq.MaxRetry(1), asynq.Unique(time.Hour))
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", p.TaskType, err)
		}
		log.Info("periodic task registered",
			slog.String("task_type", p.TaskType),
			slog.String("spec", p.Spec),
			slog.String("entry_id", id))
	}
	return scheduler, nil
}

// AsynqLogger routes asynq's own logging through slog
type AsynqLogger struct {
	log *slog.Logger
}

func NewAsynqLogger(log *slog.Logger) *AsynqLogger {
	return &AsynqLogger{log: log.With(slog.String("component", "asynq"))}
}

func (l *AsynqLogger) Debug(args ...any) { l.log.Debug(fmt.Sprint(args...)) }
func (l *AsynqLogger) Info(args ...any)  { l.log.Info(fmt.Sprint(args...)) }
func (l *AsynqLogger) Warn(args ...any)  { l.log.Warn(fmt.Sprint(args...)) }
func (l *AsynqLogger) Error(args ...any) { l.log.Error(fmt.Sprint(args...)) }

// Fatal logs and exits, as asynq expects
func (l *AsynqLogger) Fatal(args ...any) {
	l.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}
