// internal/core/domain/medicine.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Medicine is a catalog entry. Its identity never changes once inventory or
// order lines point at it.
type Medicine struct {
	ID             uuid.UUID       `json:"id"`
	CommonName     string          `json:"common_name"`
	Specification  string          `json:"specification"`
	Manufacturer   string          `json:"manufacturer"`
	ApprovalNumber string          `json:"approval_number"`
	BuyPrice       decimal.Decimal `json:"buy_price"`
	SellPrice      decimal.Decimal `json:"sell_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the medicine
func (m *Medicine) Validate() error {
	m.CommonName = strings.TrimSpace(m.CommonName)
	m.ApprovalNumber = strings.TrimSpace(m.ApprovalNumber)

	if m.CommonName == "" {
		return validationErrorf("common_name is required")
	}
	if m.ApprovalNumber == "" {
		return validationErrorf("approval_number is required")
	}
	if m.BuyPrice.IsNegative() {
		return validationErrorf("buy_price cannot be negative")
	}
	if m.SellPrice.IsNegative() {
		return validationErrorf("sell_price cannot be negative")
	}
	return nil
}

// PrepareForStorage assigns an ID and timestamps and rounds prices to cents.
func (m *Medicine) PrepareForStorage(now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.BuyPrice = RoundMoney(m.BuyPrice)
	m.SellPrice = RoundMoney(m.SellPrice)
}

// RoundMoney rounds an amount to the two decimal places stored in NUMERIC(12,2).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
