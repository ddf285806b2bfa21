// internal/core/domain/inventory.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StockKey identifies one batch of one medicine. It is unique across the ledger.
type StockKey struct {
	MedicineID  uuid.UUID `json:"medicine_id"`
	BatchNumber string    `json:"batch_number"`
}

// Less orders keys by medicine then batch. Locks are always taken in this order.
func (k StockKey) Less(other StockKey) bool {
	if c := strings.Compare(k.MedicineID.String(), other.MedicineID.String()); c != 0 {
		return c < 0
	}
	return k.BatchNumber < other.BatchNumber
}

func (k StockKey) String() string {
	return k.MedicineID.String() + "/" + k.BatchNumber
}

// Validate checks the key has both parts
func (k StockKey) Validate() error {
	if k.MedicineID == uuid.Nil {
		return validationErrorf("medicine_id is required")
	}
	if strings.TrimSpace(k.BatchNumber) == "" {
		return validationErrorf("batch_number is required")
	}
	return nil
}

// InventoryRecord is the on-hand quantity of a single batch.
// Quantity never goes below zero; only the stock engine changes it.
type InventoryRecord struct {
	ID          uuid.UUID `json:"id"`
	MedicineID  uuid.UUID `json:"medicine_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Key returns the record's (medicine, batch) key
func (r *InventoryRecord) Key() StockKey {
	return StockKey{MedicineID: r.MedicineID, BatchNumber: r.BatchNumber}
}

// Validate performs domain validation on the inventory record
func (r *InventoryRecord) Validate() error {
	r.BatchNumber = strings.TrimSpace(r.BatchNumber)
	if err := r.Key().Validate(); err != nil {
		return err
	}
	if r.ExpiryDate.IsZero() {
		return validationErrorf("expiry_date is required")
	}
	if r.Quantity < 0 {
		return validationErrorf("quantity cannot be negative")
	}
	return nil
}

// PrepareForStorage assigns an ID and timestamps
func (r *InventoryRecord) PrepareForStorage(now time.Time) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// StockMovement is one applied stock effect, kept as an audit trail.
type StockMovement struct {
	ID            uuid.UUID `json:"id"`
	InventoryID   uuid.UUID `json:"inventory_id"`
	OrderKind     OrderKind `json:"order_kind"`
	OrderID       uuid.UUID `json:"order_id"`
	LineID        uuid.UUID `json:"line_id"`
	Delta         int       `json:"delta"`
	QuantityAfter int       `json:"quantity_after"`
	CreatedAt     time.Time `json:"created_at"`
}
