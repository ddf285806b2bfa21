// internal/core/services/ledger.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// Ledger is the only code path that changes inventory quantities.
// Both operations join the transaction carried in ctx, or open their own.
type Ledger struct {
	repo   ports.InventoryRepository
	tx     ports.Transactor
	clock  ports.Clock
	logger *slog.Logger
}

// NewLedger creates a new inventory ledger
func NewLedger(repo ports.InventoryRepository, tx ports.Transactor, clock ports.Clock, logger *slog.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		tx:     tx,
		clock:  clock,
		logger: logger.With(slog.String("service", "ledger")),
	}
}

// GetOrCreate returns the record for key, inserting it at quantity zero when it
// does not exist yet. The record is row-locked until the transaction ends.
func (l *Ledger) GetOrCreate(ctx context.Context, key domain.StockKey, expiry time.Time) (*domain.InventoryRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var rec *domain.InventoryRecord
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := l.repo.EnsureExists(ctx, key, expiry, l.clock.Now()); err != nil {
			return fmt.Errorf("failed to ensure inventory record %s: %w", key, err)
		}

		locked, err := l.repo.LockByKey(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to lock inventory record %s: %w", key, err)
		}
		if locked == nil {
			return &domain.DataIntegrityError{
				Entity: "inventory", ID: key.String(),
				Reason: "record vanished after insert",
			}
		}
		rec = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ApplyDelta changes the quantity of record id by delta and returns the new
// quantity. A decrement that would go below zero fails with
// InsufficientStockError and writes nothing.
func (l *Ledger) ApplyDelta(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var after int
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := l.repo.LockByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to lock inventory record %s: %w", id, err)
		}
		if rec == nil {
			return &domain.DataIntegrityError{
				Entity: "inventory", ID: id.String(),
				Reason: "record no longer exists",
			}
		}

		if delta < 0 && rec.Quantity+delta < 0 {
			return &domain.InsufficientStockError{
				InventoryID: id,
				Requested:   -delta,
				Available:   rec.Quantity,
			}
		}

		after, err = l.repo.AddQuantity(ctx, id, delta)
		if err != nil {
			return fmt.Errorf("failed to update quantity of %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.logger.DebugContext(ctx, "inventory quantity changed",
		slog.String("inventory_id", id.String()),
		slog.Int("delta", delta),
		slog.Int("quantity", after))

	return after, nil
}
