// internal/core/services/stock_engine.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

const tracerName = "github.com/ammerola/pharmacy-be/internal/core/services"

// AppliedEffect is a stock effect after it has been written to the ledger
type AppliedEffect struct {
	Effect        domain.StockEffect
	QuantityAfter int
}

// StockEngine applies the lines of a newly approved order to the ledger
type StockEngine struct {
	ledger *Ledger
	repo   ports.InventoryRepository
	tx     ports.Transactor
	clock  ports.Clock
	tracer trace.Tracer
	logger *slog.Logger
}

// NewStockEngine creates a new stock mutation engine
func NewStockEngine(ledger *Ledger, repo ports.InventoryRepository, tx ports.Transactor, clock ports.Clock, logger *slog.Logger) *StockEngine {
	return &StockEngine{
		ledger: ledger,
		repo:   repo,
		tx:     tx,
		clock:  clock,
		tracer: otel.Tracer(tracerName),
		logger: logger.With(slog.String("service", "stock_engine")),
	}
}

// Apply applies every line of order to the ledger. All effects are applied or
// none are: the first failure aborts the transaction in ctx.
// Effects are applied in (medicine, batch) order so concurrent approvals that
// touch the same batches always lock them in the same sequence.
func (e *StockEngine) Apply(ctx context.Context, order *domain.Order, lines []domain.Line) ([]AppliedEffect, error) {
	ctx, span := e.tracer.Start(ctx, "StockEngine.Apply", trace.WithAttributes(
		attribute.String("order.kind", string(order.Kind)),
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.lines", len(lines)),
	))
	defer span.End()

	var applied []AppliedEffect
	err := e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		effects, err := e.resolve(ctx, lines)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		applied = make([]AppliedEffect, 0, len(effects))
		for _, eff := range effects {
			after, err := e.applyOne(ctx, &eff)
			if err != nil {
				return err
			}

			if err := e.repo.RecordMovement(ctx, &domain.StockMovement{
				InventoryID:   eff.InventoryID,
				OrderKind:     order.Kind,
				OrderID:       order.ID,
				LineID:        eff.LineID,
				Delta:         eff.Delta(),
				QuantityAfter: after,
				CreatedAt:     now,
			}); err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}

			applied = append(applied, AppliedEffect{Effect: eff, QuantityAfter: after})
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock application failed")
		return nil, err
	}

	e.logger.InfoContext(ctx, "stock effects applied",
		slog.String("order_kind", string(order.Kind)),
		slog.String("order_id", order.ID.String()),
		slog.Int("effects", len(applied)))

	return applied, nil
}

// resolve maps lines to effects and sorts them into lock order. Any effect
// naming an inventory id takes its key from the record, read without a lock;
// keys never change once a record exists. Only a sales return whose record is
// gone falls back to the batch it kept.
func (e *StockEngine) resolve(ctx context.Context, lines []domain.Line) ([]domain.StockEffect, error) {
	effects := make([]domain.StockEffect, 0, len(lines))
	for _, l := range lines {
		eff, err := domain.ResolveStockEffect(l)
		if err != nil {
			return nil, err
		}

		if eff.InventoryID != uuid.Nil {
			rec, err := e.repo.FindByID(ctx, eff.InventoryID)
			if err != nil {
				return nil, fmt.Errorf("failed to read inventory record %s: %w", eff.InventoryID, err)
			}
			switch {
			case rec != nil:
				eff.Key = rec.Key()
				eff.Expiry = rec.ExpiryDate
			case eff.Direction == domain.StockDecrease,
				eff.Key.MedicineID == uuid.Nil || eff.Key.BatchNumber == "":
				return nil, &domain.DataIntegrityError{
					Entity: "inventory", ID: eff.InventoryID.String(),
					Reason: "record referenced by line " + eff.LineID.String() + " no longer exists",
				}
			default:
				eff.InventoryID = uuid.Nil
			}
		}

		effects = append(effects, eff)
	}

	sort.SliceStable(effects, func(i, j int) bool {
		return effects[i].Key.Less(effects[j].Key)
	})
	return effects, nil
}

func (e *StockEngine) applyOne(ctx context.Context, eff *domain.StockEffect) (int, error) {
	if eff.Direction == domain.StockIncrease {
		expiry := eff.Expiry
		if expiry.IsZero() {
			expiry = e.clock.Now().Truncate(24 * time.Hour)
		}
		rec, err := e.ledger.GetOrCreate(ctx, eff.Key, expiry)
		if err != nil {
			return 0, err
		}
		eff.InventoryID = rec.ID
	}

	return e.ledger.ApplyDelta(ctx, eff.InventoryID, eff.Delta())
}
