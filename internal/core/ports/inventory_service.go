// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// InventoryService defines the application service port for reading and
// administering the inventory ledger. Quantities are never changed here.
type InventoryService interface {
	GetInventoryLevel(ctx context.Context, p domain.Principal, key domain.StockKey) (int, error)
	GetInventoryRecord(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.InventoryRecord, error)
	CreateInventoryRecord(ctx context.Context, p domain.Principal, rec *domain.InventoryRecord) error
	DeleteInventoryRecord(ctx context.Context, p domain.Principal, id uuid.UUID) error
	ListInventory(ctx context.Context, p domain.Principal, params InventoryListParams) (*ListResult[*domain.InventoryRecord], error)
	ListMovements(ctx context.Context, p domain.Principal, inventoryID uuid.UUID, limit int) ([]*domain.StockMovement, error)
}
