// internal/core/ports/inventory_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// InventoryRepository defines the persistence port for the inventory ledger.
// The Lock* methods take a row lock that is held until the transaction in ctx
// ends; they must be called inside Transactor.WithinTransaction.
// Find and Lock methods return nil, nil when the row does not exist.
type InventoryRepository interface {
	Create(ctx context.Context, rec *domain.InventoryRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryRecord, error)
	FindByKey(ctx context.Context, key domain.StockKey) (*domain.InventoryRecord, error)
	LockByID(ctx context.Context, id uuid.UUID) (*domain.InventoryRecord, error)
	LockByKey(ctx context.Context, key domain.StockKey) (*domain.InventoryRecord, error)
	// EnsureExists inserts the batch at quantity zero unless it is already there,
	// stamping it with now.
	EnsureExists(ctx context.Context, key domain.StockKey, expiry, now time.Time) error
	// AddQuantity applies quantity = quantity + delta and returns the new quantity.
	AddQuantity(ctx context.Context, id uuid.UUID, delta int) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params InventoryListParams) ([]*domain.InventoryRecord, int64, error)

	RecordMovement(ctx context.Context, m *domain.StockMovement) error
	ListMovements(ctx context.Context, inventoryID uuid.UUID, limit int) ([]*domain.StockMovement, error)
	DeleteMovementsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InventoryListParams holds parameters for listing inventory records
type InventoryListParams struct {
	MedicineID    *uuid.UUID
	BatchNumber   string
	MaxQuantity   *int
	ExpiresBefore *time.Time
	SortBy        string
	SortOrder     string
	Limit         int
	Offset        int
}
