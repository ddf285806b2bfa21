// internal/core/ports/tasks.go
package ports

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// Task types
const (
	TypePurchaseImport   = "purchase:import"
	TypeStockChanged     = "stock:changed"
	TypeSendEmail        = "email:send"
	TypeCleanupMovements = "cleanup:movements"
	TypeCleanupUploads   = "cleanup:uploads"
)

// Queue names
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ImportFormat is the file format of a purchase import upload
type ImportFormat string

const (
	ImportXLSX ImportFormat = "xlsx"
	ImportPDF  ImportFormat = "pdf"
)

// PurchaseImportPayload asks the worker to turn an uploaded file into purchase lines
type PurchaseImportPayload struct {
	JobID      string       `json:"job_id"`
	OrderID    uuid.UUID    `json:"order_id"`
	StorageKey string       `json:"storage_key"`
	Format     ImportFormat `json:"format"`
	EmployeeID uuid.UUID    `json:"employee_id"`
	Username   string       `json:"username"`
	Position   string       `json:"position"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// Principal rebuilds the caller the import runs as
func (p PurchaseImportPayload) Principal() domain.Principal {
	return domain.Principal{
		EmployeeID: p.EmployeeID,
		Username:   p.Username,
		Position:   domain.Position(p.Position),
	}
}

// StockMovementSummary is one applied stock effect reported after commit
type StockMovementSummary struct {
	InventoryID   uuid.UUID `json:"inventory_id"`
	MedicineID    uuid.UUID `json:"medicine_id"`
	BatchNumber   string    `json:"batch_number"`
	Delta         int       `json:"delta"`
	QuantityAfter int       `json:"quantity_after"`
}

// StockChangedPayload is published once per approved order
type StockChangedPayload struct {
	OrderKind  domain.OrderKind       `json:"order_kind"`
	OrderID    uuid.UUID              `json:"order_id"`
	ApprovedBy string                 `json:"approved_by"`
	ApprovedAt time.Time              `json:"approved_at"`
	Movements  []StockMovementSummary `json:"movements"`
}

// EmailPayload is a plain text notification
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewTask marshals payload into an asynq task of the given type
func NewTask(typename string, payload any) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, b), nil
}
