// internal/core/ports/order_service.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// OrderService defines the application service port for orders.
// It is the only entry point that changes stock: approving an order through
// SetOrderStatus applies every line to the inventory ledger.
type OrderService interface {
	CreateOrderHeader(ctx context.Context, p domain.Principal, in CreateOrderInput) (uuid.UUID, error)
	AddLineItem(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID uuid.UUID, line domain.Line) (uuid.UUID, error)
	UpdateLineItem(ctx context.Context, p domain.Principal, kind domain.OrderKind, line domain.Line) error
	// Line operations only see lines of the order they name.
	RemoveLineItem(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID, lineID uuid.UUID) error
	SetOrderStatus(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID uuid.UUID, status domain.OrderStatus) error
	RecomputeTotal(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) (decimal.Decimal, error)
	GetOrder(ctx context.Context, p domain.Principal, kind domain.OrderKind, orderID uuid.UUID) (*domain.OrderDetail, error)
	ListOrders(ctx context.Context, p domain.Principal, params OrderListParams) (*ListResult[*domain.Order], error)
}

// CreateOrderInput holds the caller-supplied header fields
type CreateOrderInput struct {
	Kind           domain.OrderKind
	CounterpartyID uuid.UUID
	EmployeeID     *uuid.UUID
	OrderDate      *time.Time
}

// ListResult holds one page of results
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewListResult computes paging metadata for a page of items
func NewListResult[T any](items []T, total int64, limit, offset int) *ListResult[T] {
	if items == nil {
		items = []T{}
	}
	res := &ListResult[T]{Items: items, PageSize: limit, TotalCount: total, Page: 1}
	if limit > 0 {
		res.Page = offset/limit + 1
		res.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return res
}
