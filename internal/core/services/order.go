// internal/core/services/order.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// OrderService handles order business logic. It owns the approval transaction:
// the status write and the stock effects of an approval commit together.
type OrderService struct {
	tx        ports.Transactor
	orders    ports.OrderRepository
	inventory ports.InventoryRepository
	engine    *StockEngine
	authz     ports.Authorizer
	clock     ports.Clock
	cache     ports.CacheRepository
	queue     ports.TaskQueue
	logger    *slog.Logger
}

// Statically assert that *OrderService implements the OrderService interface.
var _ ports.OrderService = (*OrderService)(nil)

// NewOrderService creates a new order service. cache and queue may be nil.
func NewOrderService(
	tx ports.Transactor,
	orders ports.OrderRepository,
	inventory ports.InventoryRepository,
	engine *StockEngine,
	authz ports.Authorizer,
	clock ports.Clock,
	cache ports.CacheRepository,
	queue ports.TaskQueue,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		tx:        tx,
		orders:    orders,
		inventory: inventory,
		engine:    engine,
		authz:     authz,
		clock:     clock,
		cache:     cache,
		queue:     queue,
		logger:    logger.With(slog.String("service", "order")),
	}
}

// CreateOrderHeader creates a pending order with a zero total
func (s *OrderService) CreateOrderHeader(ctx context.Context, p domain.Principal, in ports.CreateOrderInput) (uuid.UUID, error) {
	if _, err := domain.ParseOrderKind(string(in.Kind)); err != nil {
		return uuid.Nil, err
	}
	if err := authorize(ctx, s.authz, p, ports.ActionOrderEdit, in.Kind); err != nil {
		return uuid.Nil, err
	}

	order := &domain.Order{
		Kind:           in.Kind,
		CounterpartyID: in.CounterpartyID,
		EmployeeID:     in.EmployeeID,
		Status:         domain.StatusPending,
	}
	if order.EmployeeID == nil && p.EmployeeID != uuid.Nil {
		id := p.EmployeeID
		order.EmployeeID = &id
	}
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}

	if err := order.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("validation failed: %w", err)
	}
	order.PrepareForStorage(s.clock.Now())

	if err := s.orders.CreateHeader(ctx, order); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create %s order: %w", order.Kind, err)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_kind", string(order.Kind)),
		slog.String("order_id", order.ID.String()),
		slog.String("created_by", p.Username))

	return order.ID, nil
}

// AddLineItem adds a line to an order and recomputes the order total in the
// same transaction.
func (s *OrderService) AddLineItem(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID uuid.UUID, line domain.Line) (uuid.UUID, error) {
	if err := s.checkLine(ctx, p, kind, line); err != nil {
		return uuid.Nil, err
	}

	b := line.Base()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.OrderID = orderID

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.lockHeader(ctx, kind, orderID); err != nil {
			return err
		}
		if err := s.prepareLine(ctx, line); err != nil {
			return err
		}
		if err := s.orders.InsertLine(ctx, line); err != nil {
			return fmt.Errorf("failed to insert %s line: %w", kind, err)
		}
		_, err := s.recompute(ctx, kind, orderID)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.DebugContext(ctx, "line added",
		slog.String("order_kind", string(kind)),
		slog.String("order_id", orderID.String()),
		slog.String("line_id", b.ID.String()))

	return b.ID, nil
}

// UpdateLineItem replaces an existing line of line.OrderID and recomputes the
// order total. A line of another order is reported as not found.
func (s *OrderService) UpdateLineItem(ctx context.Context, p domain.Principal, kind domain.OrderKind, line domain.Line) error {
	if err := s.checkLine(ctx, p, kind, line); err != nil {
		return err
	}

	b := line.Base()
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.orders.GetLine(ctx, kind, b.ID)
		if err != nil {
			return fmt.Errorf("failed to get %s line: %w", kind, err)
		}
		if existing == nil || existing.Base().OrderID != b.OrderID {
			return notFound(string(kind)+" line", b.ID)
		}

		if _, err := s.lockHeader(ctx, kind, b.OrderID); err != nil {
			return err
		}
		if err := s.prepareLine(ctx, line); err != nil {
			return err
		}
		if err := s.orders.UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("failed to update %s line: %w", kind, err)
		}
		_, err = s.recompute(ctx, kind, b.OrderID)
		return err
	})
}

// RemoveLineItem deletes a line of orderID and recomputes the order total
func (s *OrderService) RemoveLineItem(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID, lineID uuid.UUID) error {
	if _, err := domain.ParseOrderKind(string(kind)); err != nil {
		return err
	}
	if err := authorize(ctx, s.authz, p, ports.ActionOrderEdit, kind); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.orders.GetLine(ctx, kind, lineID)
		if err != nil {
			return fmt.Errorf("failed to get %s line: %w", kind, err)
		}
		if existing == nil || existing.Base().OrderID != orderID {
			return notFound(string(kind)+" line", lineID)
		}

		if _, err := s.lockHeader(ctx, kind, orderID); err != nil {
			return err
		}
		if err := s.orders.DeleteLine(ctx, kind, lineID); err != nil {
			return fmt.Errorf("failed to delete %s line: %w", kind, err)
		}
		_, err = s.recompute(ctx, kind, orderID)
		return err
	})
}

// SetOrderStatus moves an order to status. When the move is into approved,
// every line is applied to the ledger inside the same transaction as the
// status write; any stock failure leaves both the status and the ledger as
// they were.
func (s *OrderService) SetOrderStatus(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID uuid.UUID, status domain.OrderStatus) error {
	if _, err := domain.ParseOrderKind(string(kind)); err != nil {
		return err
	}
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return err
	}

	action := ports.ActionOrderEdit
	if status == domain.StatusApproved {
		action = ports.ActionOrderApprove
	}
	if err := authorize(ctx, s.authz, p, action, kind); err != nil {
		return err
	}

	var (
		header  *domain.Order
		prev    domain.OrderStatus
		applied []AppliedEffect
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		header, err = s.lockHeader(ctx, kind, orderID)
		if err != nil {
			return err
		}

		prev = header.Status
		if prev == status {
			return nil
		}
		newlyApproved := domain.IsNewlyApproved(&prev, status)

		if err := s.orders.UpdateStatus(ctx, kind, orderID, status); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		header.Status = status

		if !newlyApproved {
			return nil
		}

		lines, err := s.orders.ListLines(ctx, kind, orderID)
		if err != nil {
			return fmt.Errorf("failed to list %s lines: %w", kind, err)
		}
		applied, err = s.engine.Apply(ctx, header, lines)
		return err
	})
	if err != nil {
		if shortage, ok := domain.IsInsufficientStock(err); ok {
			s.logger.WarnContext(ctx, "approval rejected: insufficient stock",
				slog.String("order_kind", string(kind)),
				slog.String("order_id", orderID.String()),
				slog.String("inventory_id", shortage.InventoryID.String()),
				slog.Int("requested", shortage.Requested),
				slog.Int("available", shortage.Available))
		}
		return err
	}

	if prev == status {
		s.logger.DebugContext(ctx, "order status unchanged",
			slog.String("order_id", orderID.String()),
			slog.String("status", string(status)))
		return nil
	}

	if prev == domain.StatusApproved {
		s.logger.InfoContext(ctx, "order left approved; stock effects are not reversed",
			slog.String("order_kind", string(kind)),
			slog.String("order_id", orderID.String()),
			slog.String("status", string(status)))
	}

	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_kind", string(kind)),
		slog.String("order_id", orderID.String()),
		slog.String("from", string(prev)),
		slog.String("to", string(status)),
		slog.String("changed_by", p.Username))

	if len(applied) > 0 {
		s.afterApproval(ctx, p, header, applied)
	}

	return nil
}

// RecomputeTotal sets the order total to the sum of its line subtotals
func (s *OrderService) RecomputeTotal(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) (decimal.Decimal, error) {
	if _, err := domain.ParseOrderKind(string(kind)); err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.lockHeader(ctx, kind, orderID); err != nil {
			return err
		}
		var err error
		total, err = s.recompute(ctx, kind, orderID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// GetOrder returns an order header with its lines
func (s *OrderService) GetOrder(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID uuid.UUID) (*domain.OrderDetail, error) {
	if _, err := domain.ParseOrderKind(string(kind)); err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.authz, p, ports.ActionOrderView, kind); err != nil {
		return nil, err
	}

	header, err := s.orders.GetHeader(ctx, kind, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s order: %w", kind, err)
	}
	if header == nil {
		return nil, notFound(string(kind)+" order", orderID)
	}

	lines, err := s.orders.ListLines(ctx, kind, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s lines: %w", kind, err)
	}
	if lines == nil {
		lines = []domain.Line{}
	}

	return &domain.OrderDetail{Order: *header, Lines: lines}, nil
}

// ListOrders lists order headers of one kind, newest first
func (s *OrderService) ListOrders(ctx context.Context, p domain.Principal, params ports.OrderListParams) (*ports.ListResult[*domain.Order], error) {
	if _, err := domain.ParseOrderKind(string(params.Kind)); err != nil {
		return nil, err
	}
	if params.Status != "" {
		if _, err := domain.ParseOrderStatus(string(params.Status)); err != nil {
			return nil, err
		}
	}
	if err := authorize(ctx, s.authz, p, ports.ActionOrderView, params.Kind); err != nil {
		return nil, err
	}

	params.Limit, params.Offset = normalizePage(params.Limit, params.Offset)

	orders, total, err := s.orders.ListHeaders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders: %w", params.Kind, err)
	}

	return ports.NewListResult(orders, total, params.Limit, params.Offset), nil
}

func (s *OrderService) checkLine(ctx context.Context, p domain.Principal, kind domain.OrderKind, line domain.Line) error {
	if _, err := domain.ParseOrderKind(string(kind)); err != nil {
		return err
	}
	if err := authorize(ctx, s.authz, p, ports.ActionOrderEdit, kind); err != nil {
		return err
	}
	if line == nil || line.Kind() != kind {
		return &domain.ValidationError{Message: "line does not belong to a " + string(kind) + " order"}
	}
	if err := line.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func (s *OrderService) lockHeader(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) (*domain.Order, error) {
	header, err := s.orders.LockHeader(ctx, kind, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s order: %w", kind, err)
	}
	if header == nil {
		return nil, notFound(string(kind)+" order", orderID)
	}
	return header, nil
}

// prepareLine checks the inventory record the line points at, copies its
// batch identity onto the line and computes the subtotal.
func (s *OrderService) prepareLine(ctx context.Context, line domain.Line) error {
	if ref, ok := domain.InventoryRef(line); ok {
		rec, err := s.inventory.FindByID(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to get inventory record: %w", err)
		}
		if rec == nil {
			return notFound("inventory record", ref)
		}
		domain.CaptureSnapshot(line, rec)
	}
	domain.ComputeSubtotal(line)
	return nil
}

func (s *OrderService) recompute(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.orders.SumSubtotals(ctx, kind, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s line subtotals: %w", kind, err)
	}
	total = domain.RoundMoney(total)
	if err := s.orders.UpdateTotal(ctx, kind, orderID, total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update order total: %w", err)
	}
	return total, nil
}

// afterApproval runs once the approval has committed. Failures here are
// logged and never undo the approval.
func (s *OrderService) afterApproval(ctx context.Context, p domain.Principal, order *domain.Order, applied []AppliedEffect) {
	payload := ports.StockChangedPayload{
		OrderKind:  order.Kind,
		OrderID:    order.ID,
		ApprovedBy: p.Username,
		ApprovedAt: s.clock.Now(),
		Movements:  make([]ports.StockMovementSummary, 0, len(applied)),
	}
	keys := make([]string, 0, len(applied))
	for _, a := range applied {
		keys = append(keys, InventoryLevelKey(a.Effect.Key))
		payload.Movements = append(payload.Movements, ports.StockMovementSummary{
			InventoryID:   a.Effect.InventoryID,
			MedicineID:    a.Effect.Key.MedicineID,
			BatchNumber:   a.Effect.Key.BatchNumber,
			Delta:         a.Effect.Delta(),
			QuantityAfter: a.QuantityAfter,
		})
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate inventory levels",
				slog.String("order_id", order.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	if s.queue == nil {
		return
	}
	task, err := ports.NewTask(ports.TypeStockChanged, payload)
	if err == nil {
		_, err = s.queue.EnqueueContext(ctx, task, asynq.Queue(ports.QueueDefault), asynq.MaxRetry(3))
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue stock changed task",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}
}
