// internal/workers/middleware.go
package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/pkg/logger"
)

// LoggingMiddleware tags the context with the task id and logs each run
func LoggingMiddleware(log *slog.Logger) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			start := time.Now()
			if id, ok := asynq.GetTaskID(ctx); ok {
				ctx = context.WithValue(ctx, logger.ContextKeyTaskID, id)
			}
			retried, _ := asynq.GetRetryCount(ctx)

			err := next.ProcessTask(ctx, t)

			attrs := []any{
				slog.String("task_type", t.Type()),
				slog.Int("retried", retried),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				log.ErrorContext(ctx, "task failed", append(attrs, slog.String("error", err.Error()))...)
				return err
			}
			log.InfoContext(ctx, "task processed", attrs...)
			return nil
		})
	}
}
