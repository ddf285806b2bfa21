// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors shared across layers. Handlers map them to HTTP status codes.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidStatus = errors.New("invalid order status")
)

// ValidationError describes a rejected input. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is returned when a decrement would take an inventory
// record below zero. The approval that caused it is rolled back.
type InsufficientStockError struct {
	InventoryID uuid.UUID
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for inventory %s: requested %d, available %d",
		e.InventoryID, e.Requested, e.Available)
}

// DataIntegrityError signals that a row expected to exist is gone, usually
// because it was deleted out from under an order. It is never retried.
type DataIntegrityError struct {
	Entity string
	ID     string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("data integrity violation on %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("data integrity violation on %s %s: %s", e.Entity, e.ID, e.Reason)
}

// DuplicateBatchError is returned when an inventory record already exists for
// the (medicine, batch) pair being created.
type DuplicateBatchError struct {
	MedicineID  uuid.UUID
	BatchNumber string
}

func (e *DuplicateBatchError) Error() string {
	return fmt.Sprintf("inventory record for medicine %s batch %q already exists",
		e.MedicineID, e.BatchNumber)
}

// IsInsufficientStock unwraps err looking for an InsufficientStockError.
func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
