// internal/core/domain/order.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderKind selects one of the four order variants
type OrderKind string

const (
	KindPurchase       OrderKind = "purchase"
	KindSale           OrderKind = "sale"
	KindPurchaseReturn OrderKind = "purchase_return"
	KindSaleReturn     OrderKind = "sale_return"
)

// OrderKinds lists every kind, in a stable order
var OrderKinds = []OrderKind{KindPurchase, KindSale, KindPurchaseReturn, KindSaleReturn}

// ParseOrderKind validates a kind coming from the outside world
func ParseOrderKind(s string) (OrderKind, error) {
	k := OrderKind(s)
	if !k.Valid() {
		return "", validationErrorf("order kind %q is not supported", s)
	}
	return k, nil
}

// Valid reports whether k is a known kind
func (k OrderKind) Valid() bool {
	switch k {
	case KindPurchase, KindSale, KindPurchaseReturn, KindSaleReturn:
		return true
	}
	return false
}

// CounterpartyIsSupplier reports whether orders of this kind are placed with a
// supplier rather than a customer.
func (k OrderKind) CounterpartyIsSupplier() bool {
	return k == KindPurchase || k == KindPurchaseReturn
}

// OrderStatus is the lifecycle state of an order header
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus validates a status coming from the outside world
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	switch st {
	case StatusPending, StatusApproved, StatusCancelled:
		return st, nil
	}
	return "", &ValidationError{Message: ErrInvalidStatus.Error() + ": " + s}
}

// IsNewlyApproved is the approval transition detector. prev is nil for a record
// that has never been persisted. Only a move into approved from any other state
// counts, so re-saving an approved order never re-applies stock effects.
func IsNewlyApproved(prev *OrderStatus, next OrderStatus) bool {
	if next != StatusApproved {
		return false
	}
	return prev == nil || *prev != StatusApproved
}

// Order is the header shared by all four order kinds.
// TotalAmount is derived from the lines and is recomputed on every line change.
type Order struct {
	ID             uuid.UUID       `json:"id"`
	Kind           OrderKind       `json:"kind"`
	CounterpartyID uuid.UUID       `json:"counterparty_id"`
	EmployeeID     *uuid.UUID      `json:"employee_id,omitempty"`
	OrderDate      time.Time       `json:"order_date"`
	Status         OrderStatus     `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the order header
func (o *Order) Validate() error {
	if !o.Kind.Valid() {
		return validationErrorf("order kind %q is not supported", o.Kind)
	}
	if o.CounterpartyID == uuid.Nil {
		if o.Kind.CounterpartyIsSupplier() {
			return validationErrorf("supplier_id is required")
		}
		return validationErrorf("customer_id is required")
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if _, err := ParseOrderStatus(string(o.Status)); err != nil {
		return err
	}
	return nil
}

// PrepareForStorage fills defaults for a new header: pending, zero total, dated now.
func (o *Order) PrepareForStorage(now time.Time) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	o.TotalAmount = RoundMoney(o.TotalAmount)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

// OrderDetail is a header together with its lines
type OrderDetail struct {
	Order
	Lines []Line `json:"lines"`
}
