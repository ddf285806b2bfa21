// internal/adapters/db/order_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// orderTables names the header and line tables of one order kind
type orderTables struct {
	header       string
	lines        string
	counterparty string
}

var tablesByKind = map[domain.OrderKind]orderTables{
	domain.KindPurchase:       {header: "purchase_orders", lines: "purchase_lines", counterparty: "supplier_id"},
	domain.KindSale:           {header: "sales_orders", lines: "sales_lines", counterparty: "customer_id"},
	domain.KindPurchaseReturn: {header: "purchase_return_orders", lines: "purchase_return_lines", counterparty: "supplier_id"},
	domain.KindSaleReturn:     {header: "sales_return_orders", lines: "sales_return_lines", counterparty: "customer_id"},
}

func tablesFor(kind domain.OrderKind) (orderTables, error) {
	t, ok := tablesByKind[kind]
	if !ok {
		return orderTables{}, &domain.ValidationError{Message: fmt.Sprintf("order kind %q is not supported", kind)}
	}
	return t, nil
}

type orderRow struct {
	ID             uuid.UUID       `db:"id"`
	CounterpartyID uuid.UUID       `db:"counterparty_id"`
	EmployeeID     *uuid.UUID      `db:"employee_id"`
	OrderDate      time.Time       `db:"order_date"`
	Status         string          `db:"status"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r *orderRow) toDomain(kind domain.OrderKind) *domain.Order {
	return &domain.Order{
		ID:             r.ID,
		Kind:           kind,
		CounterpartyID: r.CounterpartyID,
		EmployeeID:     r.EmployeeID,
		OrderDate:      r.OrderDate,
		Status:         domain.OrderStatus(r.Status),
		TotalAmount:    r.TotalAmount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// OrderRepository implements ports.OrderRepository. Each order kind has its
// own header and line tables.
type OrderRepository struct {
	db      *Database
	builder squirrel.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *Database, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:  logger.With(slog.String("repository", "order")),
	}
}

// CreateHeader inserts a new order header
func (r *OrderRepository) CreateHeader(ctx context.Context, o *domain.Order) error {
	t, err := tablesFor(o.Kind)
	if err != nil {
		return err
	}

	query, args, err := r.builder.Insert(t.header).
		Columns("id", t.counterparty, "employee_id", "order_date", "status", "total_amount", "created_at", "updated_at").
		Values(o.ID, o.CounterpartyID, o.EmployeeID, o.OrderDate, string(o.Status), o.TotalAmount, o.CreatedAt, o.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.querier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %s order: %w", o.Kind, translateError(err))
	}

	r.logger.DebugContext(ctx, "order header saved",
		slog.String("kind", string(o.Kind)),
		slog.String("order_id", o.ID.String()))
	return nil
}

// GetHeader reads a header without locking it
func (r *OrderRepository) GetHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID) (*domain.Order, error) {
	return r.getHeader(ctx, kind, id, false)
}

// LockHeader reads a header with FOR UPDATE
func (r *OrderRepository) LockHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID) (*domain.Order, error) {
	if !inTransaction(ctx) {
		return nil, errLockOutsideTx
	}
	return r.getHeader(ctx, kind, id, true)
}

func (r *OrderRepository) getHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID, lock bool) (*domain.Order, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	qb := r.selectHeaders(t).Where(squirrel.Eq{"id": id})
	if lock {
		qb = qb.Suffix("FOR UPDATE")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row orderRow
	if err := pgxscan.Get(ctx, r.db.querier(ctx), &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find %s order: %w", kind, err)
	}
	return row.toDomain(kind), nil
}

// UpdateStatus writes the header status
func (r *OrderRepository) UpdateStatus(ctx context.Context, kind domain.OrderKind, id uuid.UUID, status domain.OrderStatus) error {
	return r.updateHeader(ctx, kind, id, "status", string(status))
}

// UpdateTotal writes the header total
func (r *OrderRepository) UpdateTotal(ctx context.Context, kind domain.OrderKind, id uuid.UUID, total decimal.Decimal) error {
	return r.updateHeader(ctx, kind, id, "total_amount", domain.RoundMoney(total))
}

func (r *OrderRepository) updateHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID, column string, value any) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	query, args, err := r.builder.Update(t.header).
		Set(column, value).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	tag, err := r.db.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s order %s: %w", kind, column, translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s order %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

// SumSubtotals adds up the stored line subtotals of an order
func (r *OrderRepository) SumSubtotals(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) (decimal.Decimal, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return decimal.Zero, err
	}

	query, args, err := r.builder.Select("COALESCE(SUM(subtotal), 0)").
		From(t.lines).
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build query: %w", err)
	}

	var total decimal.Decimal
	if err := pgxscan.Get(ctx, r.db.querier(ctx), &total, query, args...); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum subtotals: %w", err)
	}
	return domain.RoundMoney(total), nil
}

// ListHeaders lists headers of one kind, newest order_date first
func (r *OrderRepository) ListHeaders(ctx context.Context, params ports.OrderListParams) ([]*domain.Order, int64, error) {
	t, err := tablesFor(params.Kind)
	if err != nil {
		return nil, 0, err
	}

	filter := squirrel.And{}
	if params.Status != "" {
		filter = append(filter, squirrel.Eq{"status": string(params.Status)})
	}
	if params.CounterpartyID != nil {
		filter = append(filter, squirrel.Eq{t.counterparty: *params.CounterpartyID})
	}
	if params.EmployeeID != nil {
		filter = append(filter, squirrel.Eq{"employee_id": *params.EmployeeID})
	}
	if params.From != nil {
		filter = append(filter, squirrel.GtOrEq{"order_date": *params.From})
	}
	if params.To != nil {
		filter = append(filter, squirrel.Lt{"order_date": *params.To})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(t.header).Where(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.db.querier(ctx), &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s orders: %w", params.Kind, err)
	}

	qb := r.selectHeaders(t).Where(filter).OrderBy("order_date DESC", "id")
	if params.Limit > 0 {
		qb = qb.Limit(uint64(params.Limit))
	}
	if params.Offset > 0 {
		qb = qb.Offset(uint64(params.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []*orderRow
	if err := pgxscan.Select(ctx, r.db.querier(ctx), &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query %s orders: %w", params.Kind, err)
	}

	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain(params.Kind))
	}
	return orders, total, nil
}

// InsertLine inserts a line into its kind's table
func (r *OrderRepository) InsertLine(ctx context.Context, line domain.Line) error {
	t, err := tablesFor(line.Kind())
	if err != nil {
		return err
	}

	columns, values, err := lineValues(line)
	if err != nil {
		return err
	}

	query, args, err := r.builder.Insert(t.lines).Columns(columns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.querier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %s line: %w", line.Kind(), translateError(err))
	}
	return nil
}

// UpdateLine overwrites every column of a line except its id and order
func (r *OrderRepository) UpdateLine(ctx context.Context, line domain.Line) error {
	t, err := tablesFor(line.Kind())
	if err != nil {
		return err
	}

	columns, values, err := lineValues(line)
	if err != nil {
		return err
	}

	set := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		if c == "id" || c == "order_id" {
			continue
		}
		set[c] = values[i]
	}

	query, args, err := r.builder.Update(t.lines).
		SetMap(set).
		Where(squirrel.Eq{"id": line.Base().ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	tag, err := r.db.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s line: %w", line.Kind(), translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s line %s: %w", line.Kind(), line.Base().ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteLine removes a line
func (r *OrderRepository) DeleteLine(ctx context.Context, kind domain.OrderKind, lineID uuid.UUID) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	query, args, err := r.builder.Delete(t.lines).Where(squirrel.Eq{"id": lineID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	tag, err := r.db.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete %s line: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s line %s: %w", kind, lineID, domain.ErrNotFound)
	}
	return nil
}

// GetLine reads one line, or nil when it does not exist
func (r *OrderRepository) GetLine(ctx context.Context, kind domain.OrderKind, lineID uuid.UUID) (domain.Line, error) {
	lines, err := r.queryLines(ctx, kind, squirrel.Eq{"id": lineID})
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}
	return lines[0], nil
}

// ListLines reads every line of an order
func (r *OrderRepository) ListLines(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) ([]domain.Line, error) {
	return r.queryLines(ctx, kind, squirrel.Eq{"order_id": orderID})
}

func (r *OrderRepository) queryLines(ctx context.Context, kind domain.OrderKind, where squirrel.Sqlizer) ([]domain.Line, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	query, args, err := r.builder.Select(lineColumns[kind]...).
		From(t.lines).
		Where(where).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	q := r.db.querier(ctx)
	var lines []domain.Line

	switch kind {
	case domain.KindPurchase:
		var rows []*purchaseLineRow
		err = pgxscan.Select(ctx, q, &rows, query, args...)
		for _, row := range rows {
			lines = append(lines, row.toDomain())
		}
	case domain.KindSale:
		var rows []*salesLineRow
		err = pgxscan.Select(ctx, q, &rows, query, args...)
		for _, row := range rows {
			lines = append(lines, row.toDomain())
		}
	case domain.KindPurchaseReturn:
		var rows []*purchaseReturnLineRow
		err = pgxscan.Select(ctx, q, &rows, query, args...)
		for _, row := range rows {
			lines = append(lines, row.toDomain())
		}
	case domain.KindSaleReturn:
		var rows []*salesReturnLineRow
		err = pgxscan.Select(ctx, q, &rows, query, args...)
		for _, row := range rows {
			lines = append(lines, row.toDomain())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s lines: %w", kind, err)
	}

	if lines == nil {
		lines = []domain.Line{}
	}
	return lines, nil
}

func (r *OrderRepository) selectHeaders(t orderTables) squirrel.SelectBuilder {
	return r.builder.Select(
		"id", t.counterparty+" AS counterparty_id", "employee_id", "order_date",
		"status", "total_amount", "created_at", "updated_at",
	).From(t.header)
}
