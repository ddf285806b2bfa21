// internal/core/ports/order_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// OrderRepository persists order headers and lines. Every method takes the
// order kind because each kind lives in its own pair of tables.
// Get and Lock methods return nil, nil when the row does not exist.
type OrderRepository interface {
	CreateHeader(ctx context.Context, o *domain.Order) error
	GetHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID) (*domain.Order, error)
	// LockHeader reads the header with a row lock held until the transaction in ctx ends.
	LockHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, kind domain.OrderKind, id uuid.UUID, status domain.OrderStatus) error
	UpdateTotal(ctx context.Context, kind domain.OrderKind, id uuid.UUID, total decimal.Decimal) error
	SumSubtotals(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) (decimal.Decimal, error)
	ListHeaders(ctx context.Context, params OrderListParams) ([]*domain.Order, int64, error)

	InsertLine(ctx context.Context, line domain.Line) error
	UpdateLine(ctx context.Context, line domain.Line) error
	DeleteLine(ctx context.Context, kind domain.OrderKind, lineID uuid.UUID) error
	GetLine(ctx context.Context, kind domain.OrderKind, lineID uuid.UUID) (domain.Line, error)
	ListLines(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) ([]domain.Line, error)
}

// OrderListParams holds parameters for listing order headers
type OrderListParams struct {
	Kind           domain.OrderKind
	Status         domain.OrderStatus
	CounterpartyID *uuid.UUID
	EmployeeID     *uuid.UUID
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}
