// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/adapters/storage"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// MovementPruner deletes ledger movements older than a cutoff
type MovementPruner interface {
	DeleteMovementsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	movements         MovementPruner
	storage           ports.FileStorage
	clock             ports.Clock
	movementRetention time.Duration
	uploadRetention   time.Duration
	logger            *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(movements MovementPruner, store ports.FileStorage, clock ports.Clock, movementRetention, uploadRetention time.Duration, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		movements:         movements,
		storage:           store,
		clock:             clock,
		movementRetention: movementRetention,
		uploadRetention:   uploadRetention,
		logger:            logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupMovements removes stock movements past the retention window.
// Inventory quantities are unaffected; the movements are history only.
func (p *CleanupProcessor) CleanupMovements(ctx context.Context, t *asynq.Task) error {
	if p.movementRetention <= 0 {
		p.logger.DebugContext(ctx, "movement retention disabled")
		return nil
	}
	cutoff := p.clock.Now().Add(-p.movementRetention)
	p.logger.InfoContext(ctx, "cleaning up stock movements", slog.Time("cutoff", cutoff))

	deleted, err := p.movements.DeleteMovementsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup stock movements: %w", err)
	}

	p.logger.InfoContext(ctx, "stock movements cleaned up",
		slog.Int64("rows_deleted", deleted))

	return nil
}

// CleanupUploads removes import uploads the worker never consumed
func (p *CleanupProcessor) CleanupUploads(ctx context.Context, t *asynq.Task) error {
	cutoff := p.clock.Now().Add(-p.uploadRetention)
	p.logger.InfoContext(ctx, "cleaning up import uploads", slog.Time("cutoff", cutoff))

	keys, err := p.storage.ListBefore(ctx, storage.ImportPrefix, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list import uploads: %w", err)
	}

	var deletedCount int
	for _, key := range keys {
		if err := p.storage.Delete(ctx, key); err != nil {
			p.logger.WarnContext(ctx, "failed to delete import upload",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		deletedCount++
	}

	p.logger.InfoContext(ctx, "import uploads cleaned up",
		slog.Int("files_deleted", deletedCount),
		slog.Int("files_found", len(keys)))

	return nil
}
