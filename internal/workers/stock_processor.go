// internal/workers/stock_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// StockChangedProcessor consumes the stock:changed events published after an
// approval commits.
type StockChangedProcessor struct {
	queue      ports.TaskQueue
	threshold  int
	recipients []string
	logger     *slog.Logger
}

// NewStockChangedProcessor creates a new stock change processor
func NewStockChangedProcessor(queue ports.TaskQueue, threshold int, recipients []string, logger *slog.Logger) *StockChangedProcessor {
	return &StockChangedProcessor{
		queue:      queue,
		threshold:  threshold,
		recipients: recipients,
		logger:     logger.With(slog.String("processor", "stock_changed")),
	}
}

// ProcessStockChanged logs every movement and raises a low-stock alert for
// batches at or below the threshold. The alert is best effort: the event has
// already been applied, so a failed enqueue never fails the task.
func (p *StockChangedProcessor) ProcessStockChanged(ctx context.Context, t *asynq.Task) error {
	var payload ports.StockChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	var low []ports.StockMovementSummary
	for _, m := range payload.Movements {
		p.logger.InfoContext(ctx, "stock movement applied",
			slog.String("order_kind", string(payload.OrderKind)),
			slog.String("order_id", payload.OrderID.String()),
			slog.String("inventory_id", m.InventoryID.String()),
			slog.String("medicine_id", m.MedicineID.String()),
			slog.String("batch_number", m.BatchNumber),
			slog.Int("delta", m.Delta),
			slog.Int("quantity_after", m.QuantityAfter))

		if m.QuantityAfter <= p.threshold {
			p.logger.WarnContext(ctx, "low stock",
				slog.String("inventory_id", m.InventoryID.String()),
				slog.String("batch_number", m.BatchNumber),
				slog.Int("quantity", m.QuantityAfter),
				slog.Int("threshold", p.threshold))
			low = append(low, m)
		}
	}

	if len(low) == 0 || len(p.recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Low stock after %s order %s", payload.OrderKind, payload.OrderID)
	body := lowStockBody(payload, low, p.threshold)
	for _, to := range p.recipients {
		task, err := ports.NewTask(ports.TypeSendEmail, ports.EmailPayload{To: to, Subject: subject, Body: body})
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to build low stock email", slog.String("error", err.Error()))
			return nil
		}
		if _, err := p.queue.EnqueueContext(ctx, task,
			asynq.Queue(ports.QueueLow),
			asynq.MaxRetry(5),
			asynq.Timeout(time.Minute),
		); err != nil {
			p.logger.ErrorContext(ctx, "failed to enqueue low stock email",
				slog.String("to", to),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func lowStockBody(payload ports.StockChangedPayload, low []ports.StockMovementSummary, threshold int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Approval of %s order %s by %s at %s left %d batch(es) at or below %d units:\n\n",
		payload.OrderKind, payload.OrderID, payload.ApprovedBy,
		payload.ApprovedAt.Format(time.RFC3339), len(low), threshold)
	for _, m := range low {
		fmt.Fprintf(&b, "- medicine %s batch %s: %d left\n", m.MedicineID, m.BatchNumber, m.QuantityAfter)
	}
	return b.String()
}
