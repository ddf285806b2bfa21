// internal/adapters/db/order_lines.go
package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

var lineColumns = map[domain.OrderKind][]string{
	domain.KindPurchase: {
		"id", "order_id", "medicine_id", "batch_number", "produce_date", "expiry_date",
		"quantity", "unit_price", "subtotal",
	},
	domain.KindSale: {
		"id", "order_id", "inventory_id", "batch_number_snapshot", "quantity", "actual_price", "subtotal",
	},
	domain.KindPurchaseReturn: {
		"id", "order_id", "inventory_id", "quantity", "unit_price", "reason", "subtotal",
	},
	domain.KindSaleReturn: {
		"id", "order_id", "inventory_id", "medicine_id", "batch_number", "expiry_date",
		"quantity", "refund_price", "reason", "subtotal",
	},
}

// lineValues returns the column list of the line's table and the matching values
func lineValues(line domain.Line) ([]string, []interface{}, error) {
	b := line.Base()

	switch l := line.(type) {
	case *domain.PurchaseLine:
		return lineColumns[domain.KindPurchase], []interface{}{
			b.ID, b.OrderID, l.MedicineID, l.BatchNumber, l.ProduceDate, l.ExpiryDate,
			b.Quantity, l.UnitPrice, b.Subtotal,
		}, nil
	case *domain.SalesLine:
		return lineColumns[domain.KindSale], []interface{}{
			b.ID, b.OrderID, l.InventoryID, l.BatchNumberSnapshot, b.Quantity, l.ActualPrice, b.Subtotal,
		}, nil
	case *domain.PurchaseReturnLine:
		return lineColumns[domain.KindPurchaseReturn], []interface{}{
			b.ID, b.OrderID, l.InventoryID, b.Quantity, l.UnitPrice, l.Reason, b.Subtotal,
		}, nil
	case *domain.SalesReturnLine:
		var expiry *time.Time
		if !l.ExpiryDate.IsZero() {
			expiry = &l.ExpiryDate
		}
		return lineColumns[domain.KindSaleReturn], []interface{}{
			b.ID, b.OrderID, l.InventoryID, l.MedicineID, l.BatchNumber, expiry,
			b.Quantity, l.RefundPrice, l.Reason, b.Subtotal,
		}, nil
	}
	return nil, nil, fmt.Errorf("unsupported line type %T", line)
}

type purchaseLineRow struct {
	ID          uuid.UUID       `db:"id"`
	OrderID     uuid.UUID       `db:"order_id"`
	MedicineID  uuid.UUID       `db:"medicine_id"`
	BatchNumber string          `db:"batch_number"`
	ProduceDate time.Time       `db:"produce_date"`
	ExpiryDate  time.Time       `db:"expiry_date"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}

func (r *purchaseLineRow) toDomain() domain.Line {
	return &domain.PurchaseLine{
		LineBase:    domain.LineBase{ID: r.ID, OrderID: r.OrderID, Quantity: r.Quantity, Subtotal: r.Subtotal},
		MedicineID:  r.MedicineID,
		BatchNumber: r.BatchNumber,
		ProduceDate: r.ProduceDate,
		ExpiryDate:  r.ExpiryDate,
		UnitPrice:   r.UnitPrice,
	}
}

type salesLineRow struct {
	ID                  uuid.UUID       `db:"id"`
	OrderID             uuid.UUID       `db:"order_id"`
	InventoryID         *uuid.UUID      `db:"inventory_id"`
	BatchNumberSnapshot string          `db:"batch_number_snapshot"`
	Quantity            int             `db:"quantity"`
	ActualPrice         decimal.Decimal `db:"actual_price"`
	Subtotal            decimal.Decimal `db:"subtotal"`
}

func (r *salesLineRow) toDomain() domain.Line {
	return &domain.SalesLine{
		LineBase:            domain.LineBase{ID: r.ID, OrderID: r.OrderID, Quantity: r.Quantity, Subtotal: r.Subtotal},
		InventoryID:         r.InventoryID,
		BatchNumberSnapshot: r.BatchNumberSnapshot,
		ActualPrice:         r.ActualPrice,
	}
}

type purchaseReturnLineRow struct {
	ID          uuid.UUID       `db:"id"`
	OrderID     uuid.UUID       `db:"order_id"`
	InventoryID *uuid.UUID      `db:"inventory_id"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Reason      string          `db:"reason"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}

func (r *purchaseReturnLineRow) toDomain() domain.Line {
	return &domain.PurchaseReturnLine{
		LineBase:    domain.LineBase{ID: r.ID, OrderID: r.OrderID, Quantity: r.Quantity, Subtotal: r.Subtotal},
		InventoryID: r.InventoryID,
		UnitPrice:   r.UnitPrice,
		Reason:      r.Reason,
	}
}

type salesReturnLineRow struct {
	ID          uuid.UUID       `db:"id"`
	OrderID     uuid.UUID       `db:"order_id"`
	InventoryID *uuid.UUID      `db:"inventory_id"`
	MedicineID  uuid.UUID       `db:"medicine_id"`
	BatchNumber string          `db:"batch_number"`
	ExpiryDate  *time.Time      `db:"expiry_date"`
	Quantity    int             `db:"quantity"`
	RefundPrice decimal.Decimal `db:"refund_price"`
	Reason      string          `db:"reason"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}

func (r *salesReturnLineRow) toDomain() domain.Line {
	l := &domain.SalesReturnLine{
		LineBase:    domain.LineBase{ID: r.ID, OrderID: r.OrderID, Quantity: r.Quantity, Subtotal: r.Subtotal},
		InventoryID: r.InventoryID,
		MedicineID:  r.MedicineID,
		BatchNumber: r.BatchNumber,
		RefundPrice: r.RefundPrice,
		Reason:      r.Reason,
	}
	if r.ExpiryDate != nil {
		l.ExpiryDate = *r.ExpiryDate
	}
	return l
}
