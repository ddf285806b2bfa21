// internal/adapters/db/inventory_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

const (
	inventoryTable = "inventory"
	movementsTable = "stock_movements"
)

var inventoryColumns = []string{
	"id", "medicine_id", "batch_number", "expiry_date", "quantity", "created_at", "updated_at",
}

var movementColumns = []string{
	"id", "inventory_id", "order_kind", "order_id", "line_id", "delta", "quantity_after", "created_at",
}

type inventoryRow struct {
	ID          uuid.UUID `db:"id"`
	MedicineID  uuid.UUID `db:"medicine_id"`
	BatchNumber string    `db:"batch_number"`
	ExpiryDate  time.Time `db:"expiry_date"`
	Quantity    int       `db:"quantity"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *inventoryRow) toDomain() *domain.InventoryRecord {
	return &domain.InventoryRecord{
		ID:          r.ID,
		MedicineID:  r.MedicineID,
		BatchNumber: r.BatchNumber,
		ExpiryDate:  r.ExpiryDate,
		Quantity:    r.Quantity,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type movementRow struct {
	ID            uuid.UUID `db:"id"`
	InventoryID   uuid.UUID `db:"inventory_id"`
	OrderKind     string    `db:"order_kind"`
	OrderID       uuid.UUID `db:"order_id"`
	LineID        uuid.UUID `db:"line_id"`
	Delta         int       `db:"delta"`
	QuantityAfter int       `db:"quantity_after"`
	CreatedAt     time.Time `db:"created_at"`
}

// InventoryRepository implements ports.InventoryRepository on Postgres.
// Locking reads use SELECT ... FOR UPDATE and must run inside a transaction.
type InventoryRepository struct {
	db      *Database
	builder squirrel.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.InventoryRepository = (*InventoryRepository)(nil)

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *Database, logger *slog.Logger) *InventoryRepository {
	return &InventoryRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:  logger.With(slog.String("repository", "inventory")),
	}
}

// Create inserts an administratively created batch
func (r *InventoryRepository) Create(ctx context.Context, rec *domain.InventoryRecord) error {
	query, args, err := r.builder.Insert(inventoryTable).
		Columns(inventoryColumns...).
		Values(rec.ID, rec.MedicineID, rec.BatchNumber, rec.ExpiryDate, rec.Quantity, rec.CreatedAt, rec.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.querier(ctx).Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err, inventoryKeyConstraint) {
			return &domain.DuplicateBatchError{MedicineID: rec.MedicineID, BatchNumber: rec.BatchNumber}
		}
		return fmt.Errorf("failed to insert inventory record: %w", translateError(err))
	}

	r.logger.DebugContext(ctx, "inventory record saved",
		slog.String("inventory_id", rec.ID.String()),
		slog.String("batch_number", rec.BatchNumber))
	return nil
}

// FindByID retrieves an inventory record without locking it
func (r *InventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryRecord, error) {
	return r.getOne(ctx, r.selectRecords().Where(squirrel.Eq{"id": id}))
}

// FindByKey retrieves an inventory record by (medicine, batch) without locking it
func (r *InventoryRepository) FindByKey(ctx context.Context, key domain.StockKey) (*domain.InventoryRecord, error) {
	return r.getOne(ctx, r.selectRecords().Where(squirrel.Eq{
		"medicine_id":  key.MedicineID,
		"batch_number": key.BatchNumber,
	}))
}

// LockByID reads the record with FOR UPDATE
func (r *InventoryRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.InventoryRecord, error) {
	if !inTransaction(ctx) {
		return nil, errLockOutsideTx
	}
	return r.getOne(ctx, r.selectRecords().Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

// LockByKey reads the record for key with FOR UPDATE
func (r *InventoryRepository) LockByKey(ctx context.Context, key domain.StockKey) (*domain.InventoryRecord, error) {
	if !inTransaction(ctx) {
		return nil, errLockOutsideTx
	}
	return r.getOne(ctx, r.selectRecords().Where(squirrel.Eq{
		"medicine_id":  key.MedicineID,
		"batch_number": key.BatchNumber,
	}).Suffix("FOR UPDATE"))
}

// EnsureExists inserts the batch at quantity zero. A concurrent insert of the
// same key blocks on the unique index until the other transaction finishes,
// then does nothing.
func (r *InventoryRepository) EnsureExists(ctx context.Context, key domain.StockKey, expiry, now time.Time) error {
	now = now.UTC()
	query, args, err := r.builder.Insert(inventoryTable).
		Columns(inventoryColumns...).
		Values(uuid.New(), key.MedicineID, key.BatchNumber, expiry, 0, now, now).
		Suffix("ON CONFLICT (medicine_id, batch_number) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.querier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to ensure inventory record: %w", translateError(err))
	}
	return nil
}

// AddQuantity applies a relative update and returns the new quantity
func (r *InventoryRepository) AddQuantity(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	query, args, err := r.builder.Update(inventoryTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING quantity").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build update: %w", err)
	}

	var quantity int
	if err := pgxscan.Get(ctx, r.db.querier(ctx), &quantity, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return 0, &domain.DataIntegrityError{Entity: "inventory", ID: id.String(), Reason: "record no longer exists"}
		}
		if isCheckViolation(err) {
			// the row was not locked by the caller, so the available quantity is unknown
			return 0, &domain.InsufficientStockError{InventoryID: id, Requested: -delta}
		}
		return 0, fmt.Errorf("failed to update quantity: %w", err)
	}

	return quantity, nil
}

// Delete removes a batch. Line references are cleared by ON DELETE SET NULL.
func (r *InventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.builder.Delete(inventoryTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	tag, err := r.db.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete inventory record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventory record %s: %w", id, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "inventory record deleted", slog.String("inventory_id", id.String()))
	return nil
}

// List retrieves inventory records with filtering and pagination
func (r *InventoryRepository) List(ctx context.Context, params ports.InventoryListParams) ([]*domain.InventoryRecord, int64, error) {
	filter := squirrel.And{}
	if params.MedicineID != nil {
		filter = append(filter, squirrel.Eq{"medicine_id": *params.MedicineID})
	}
	if params.BatchNumber != "" {
		filter = append(filter, squirrel.Eq{"batch_number": params.BatchNumber})
	}
	if params.MaxQuantity != nil {
		filter = append(filter, squirrel.LtOrEq{"quantity": *params.MaxQuantity})
	}
	if params.ExpiresBefore != nil {
		filter = append(filter, squirrel.Lt{"expiry_date": *params.ExpiresBefore})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(inventoryTable).Where(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.db.querier(ctx), &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory records: %w", err)
	}

	qb := r.selectRecords().Where(filter).OrderBy(inventoryOrderBy(params.SortBy, params.SortOrder))
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

	var rows []*inventoryRow
	if err := pgxscan.Select(ctx, r.db.querier(ctx), &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query inventory records: %w", err)
	}

	records := make([]*domain.InventoryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	return records, total, nil
}

// inventoryOrderBy whitelists the sortable columns
func inventoryOrderBy(sortBy, sortOrder string) string {
	direction := "ASC"
	if sortOrder == "desc" {
		direction = "DESC"
	}

	switch sortBy {
	case "expiry_date":
		return "expiry_date " + direction + ", id"
	case "quantity":
		return "quantity " + direction + ", id"
	case "batch_number":
		return "batch_number " + direction + ", id"
	case "updated":
		return "updated_at " + direction + ", id"
	default:
		return "medicine_id " + direction + ", batch_number " + direction
	}
}

// RecordMovement appends to the stock movement journal
func (r *InventoryRepository) RecordMovement(ctx context.Context, m *domain.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(m.ID, m.InventoryID, string(m.OrderKind), m.OrderID, m.LineID, m.Delta, m.QuantityAfter, m.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.querier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", translateError(err))
	}
	return nil
}

// ListMovements returns the newest movements of one record first
func (r *InventoryRepository) ListMovements(ctx context.Context, inventoryID uuid.UUID, limit int) ([]*domain.StockMovement, error) {
	query, args, err := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"inventory_id": inventoryID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []*movementRow
	if err := pgxscan.Select(ctx, r.db.querier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}

	movements := make([]*domain.StockMovement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, &domain.StockMovement{
			ID:            row.ID,
			InventoryID:   row.InventoryID,
			OrderKind:     domain.OrderKind(row.OrderKind),
			OrderID:       row.OrderID,
			LineID:        row.LineID,
			Delta:         row.Delta,
			QuantityAfter: row.QuantityAfter,
			CreatedAt:     row.CreatedAt,
		})
	}
	return movements, nil
}

// DeleteMovementsBefore prunes the journal and returns the number of rows removed
func (r *InventoryRepository) DeleteMovementsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.builder.Delete(movementsTable).Where(squirrel.Lt{"created_at": cutoff}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	tag, err := r.db.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stock movements: %w", err)
	}

	r.logger.InfoContext(ctx, "stock movements pruned",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", tag.RowsAffected()))
	return tag.RowsAffected(), nil
}

func (r *InventoryRepository) selectRecords() squirrel.SelectBuilder {
	return r.builder.Select(inventoryColumns...).From(inventoryTable)
}

func (r *InventoryRepository) getOne(ctx context.Context, qb squirrel.SelectBuilder) (*domain.InventoryRecord, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row inventoryRow
	if err := pgxscan.Get(ctx, r.db.querier(ctx), &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}
	return row.toDomain(), nil
}
