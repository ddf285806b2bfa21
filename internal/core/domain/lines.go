// internal/core/domain/lines.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is an order line item. The set of implementations is closed:
// PurchaseLine, SalesLine, PurchaseReturnLine and SalesReturnLine.
type Line interface {
	Kind() OrderKind
	Base() *LineBase
	Price() decimal.Decimal
	Validate() error
	isLine()
}

// LineBase carries the fields every line kind has
type LineBase struct {
	ID       uuid.UUID       `json:"id"`
	OrderID  uuid.UUID       `json:"order_id"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Base gives access to the shared fields of any line
func (b *LineBase) Base() *LineBase { return b }

func (b *LineBase) isLine() {}

func (b *LineBase) validateQuantity() error {
	if b.Quantity <= 0 {
		return validationErrorf("quantity must be positive")
	}
	return nil
}

// PurchaseLine buys a batch from a supplier. The batch may not exist in
// inventory yet.
type PurchaseLine struct {
	LineBase
	MedicineID  uuid.UUID       `json:"medicine_id"`
	BatchNumber string          `json:"batch_number"`
	ProduceDate time.Time       `json:"produce_date"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (l *PurchaseLine) Kind() OrderKind        { return KindPurchase }
func (l *PurchaseLine) Price() decimal.Decimal { return l.UnitPrice }

// Validate checks the purchase line. Expiry must fall strictly after production.
func (l *PurchaseLine) Validate() error {
	l.BatchNumber = strings.TrimSpace(l.BatchNumber)
	if l.MedicineID == uuid.Nil {
		return validationErrorf("medicine_id is required")
	}
	if l.BatchNumber == "" {
		return validationErrorf("batch_number is required")
	}
	if err := l.validateQuantity(); err != nil {
		return err
	}
	if l.UnitPrice.IsNegative() {
		return validationErrorf("unit_price cannot be negative")
	}
	if l.ProduceDate.IsZero() || l.ExpiryDate.IsZero() {
		return validationErrorf("produce_date and expiry_date are required")
	}
	if !l.ExpiryDate.After(l.ProduceDate) {
		return validationErrorf("expiry_date must be after produce_date")
	}
	return nil
}

// SalesLine sells from an existing batch. BatchNumberSnapshot survives the
// inventory record being deleted later.
type SalesLine struct {
	LineBase
	InventoryID         *uuid.UUID      `json:"inventory_id"`
	BatchNumberSnapshot string          `json:"batch_number_snapshot"`
	ActualPrice         decimal.Decimal `json:"actual_price"`
}

func (l *SalesLine) Kind() OrderKind        { return KindSale }
func (l *SalesLine) Price() decimal.Decimal { return l.ActualPrice }

// Validate performs domain validation on the sales line
func (l *SalesLine) Validate() error {
	if l.InventoryID == nil || *l.InventoryID == uuid.Nil {
		return validationErrorf("inventory_id is required")
	}
	if err := l.validateQuantity(); err != nil {
		return err
	}
	if l.ActualPrice.IsNegative() {
		return validationErrorf("actual_price cannot be negative")
	}
	return nil
}

// PurchaseReturnLine sends part of a batch back to the supplier
type PurchaseReturnLine struct {
	LineBase
	InventoryID *uuid.UUID      `json:"inventory_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Reason      string          `json:"reason,omitempty"`
}

func (l *PurchaseReturnLine) Kind() OrderKind        { return KindPurchaseReturn }
func (l *PurchaseReturnLine) Price() decimal.Decimal { return l.UnitPrice }

// Validate performs domain validation on the purchase return line
func (l *PurchaseReturnLine) Validate() error {
	if l.InventoryID == nil || *l.InventoryID == uuid.Nil {
		return validationErrorf("inventory_id is required")
	}
	if err := l.validateQuantity(); err != nil {
		return err
	}
	if l.UnitPrice.IsNegative() {
		return validationErrorf("unit_price cannot be negative")
	}
	return nil
}

// SalesReturnLine takes goods back from a customer. While InventoryID is set
// the batch identity is always the record's; the copy kept here only decides
// where stock goes once that record has been deleted. A line without a record
// must name the batch in full.
type SalesReturnLine struct {
	LineBase
	InventoryID *uuid.UUID      `json:"inventory_id"`
	MedicineID  uuid.UUID       `json:"medicine_id"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	RefundPrice decimal.Decimal `json:"refund_price"`
	Reason      string          `json:"reason,omitempty"`
}

func (l *SalesReturnLine) Kind() OrderKind        { return KindSaleReturn }
func (l *SalesReturnLine) Price() decimal.Decimal { return l.RefundPrice }

// Validate performs domain validation on the sales return line
func (l *SalesReturnLine) Validate() error {
	l.BatchNumber = strings.TrimSpace(l.BatchNumber)
	if l.InventoryID == nil || *l.InventoryID == uuid.Nil {
		if l.MedicineID == uuid.Nil {
			return validationErrorf("inventory_id is required")
		}
		if l.BatchNumber == "" || l.ExpiryDate.IsZero() {
			return validationErrorf("batch_number and expiry_date are required without inventory_id")
		}
	}
	if err := l.validateQuantity(); err != nil {
		return err
	}
	if l.RefundPrice.IsNegative() {
		return validationErrorf("refund_price cannot be negative")
	}
	return nil
}

// ComputeSubtotal sets the line's subtotal to quantity × price, in cents.
func ComputeSubtotal(l Line) decimal.Decimal {
	b := l.Base()
	b.Subtotal = RoundMoney(decimal.NewFromInt(int64(b.Quantity)).Mul(l.Price()))
	return b.Subtotal
}

// SumSubtotals is the in-memory form of the total recalculator
func SumSubtotals(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Base().Subtotal)
	}
	return RoundMoney(total)
}

// NewLine returns an empty line of the given kind
func NewLine(kind OrderKind) (Line, error) {
	switch kind {
	case KindPurchase:
		return &PurchaseLine{}, nil
	case KindSale:
		return &SalesLine{}, nil
	case KindPurchaseReturn:
		return &PurchaseReturnLine{}, nil
	case KindSaleReturn:
		return &SalesReturnLine{}, nil
	}
	return nil, validationErrorf("order kind %q is not supported", kind)
}

// InventoryRef returns the inventory record a line points at, if its kind has one.
func InventoryRef(l Line) (uuid.UUID, bool) {
	var ref *uuid.UUID
	switch v := l.(type) {
	case *SalesLine:
		ref = v.InventoryID
	case *PurchaseReturnLine:
		ref = v.InventoryID
	case *SalesReturnLine:
		ref = v.InventoryID
	}
	if ref == nil || *ref == uuid.Nil {
		return uuid.Nil, false
	}
	return *ref, true
}

// CaptureSnapshot copies the batch identity of rec onto lines that keep one,
// replacing whatever the caller supplied.
func CaptureSnapshot(l Line, rec *InventoryRecord) {
	switch v := l.(type) {
	case *SalesLine:
		v.BatchNumberSnapshot = rec.BatchNumber
	case *SalesReturnLine:
		v.MedicineID = rec.MedicineID
		v.BatchNumber = rec.BatchNumber
		v.ExpiryDate = rec.ExpiryDate
	}
}

// StockDirection says whether an approved line adds to or takes from stock
type StockDirection int

const (
	StockIncrease StockDirection = iota + 1
	StockDecrease
)

func (d StockDirection) String() string {
	switch d {
	case StockIncrease:
		return "increase"
	case StockDecrease:
		return "decrease"
	}
	return "unknown"
}

// StockEffect is what one line does to the ledger when its order is approved.
// Increases target Key (creating the batch if needed); decreases target
// InventoryID and require the record to exist. A sales return carries both:
// the live record wins and Key is the fallback.
type StockEffect struct {
	Direction   StockDirection
	LineID      uuid.UUID
	InventoryID uuid.UUID
	Key         StockKey
	Expiry      time.Time
	Quantity    int
}

// Delta is the signed change applied to the record's quantity
func (e StockEffect) Delta() int {
	if e.Direction == StockDecrease {
		return -e.Quantity
	}
	return e.Quantity
}

// ResolveStockEffect maps a line to its stock effect.
func ResolveStockEffect(l Line) (StockEffect, error) {
	b := l.Base()
	eff := StockEffect{LineID: b.ID, Quantity: b.Quantity}

	switch v := l.(type) {
	case *PurchaseLine:
		eff.Direction = StockIncrease
		eff.Key = StockKey{MedicineID: v.MedicineID, BatchNumber: v.BatchNumber}
		eff.Expiry = v.ExpiryDate
	case *SalesReturnLine:
		id, ok := InventoryRef(l)
		if !ok && (v.MedicineID == uuid.Nil || v.BatchNumber == "") {
			return StockEffect{}, &DataIntegrityError{
				Entity: "sales return line", ID: b.ID.String(),
				Reason: "batch snapshot is missing",
			}
		}
		eff.Direction = StockIncrease
		eff.InventoryID = id
		eff.Key = StockKey{MedicineID: v.MedicineID, BatchNumber: v.BatchNumber}
		eff.Expiry = v.ExpiryDate
	case *SalesLine, *PurchaseReturnLine:
		id, ok := InventoryRef(l)
		if !ok {
			return StockEffect{}, &DataIntegrityError{
				Entity: string(l.Kind()) + " line", ID: b.ID.String(),
				Reason: "inventory record no longer exists",
			}
		}
		eff.Direction = StockDecrease
		eff.InventoryID = id
	default:
		return StockEffect{}, fmt.Errorf("unsupported line type %T", l)
	}

	if eff.Quantity <= 0 {
		return StockEffect{}, validationErrorf("line %s quantity must be positive", b.ID)
	}
	return eff, nil
}
