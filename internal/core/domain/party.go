// internal/core/domain/party.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhoneType classifies supplier phone numbers
type PhoneType string

const (
	PhoneMobile PhoneType = "mobile"
	PhoneOffice PhoneType = "office"
	PhoneFax    PhoneType = "fax"
	PhoneOther  PhoneType = "other"
)

// CustomerType distinguishes wholesale from retail buyers
type CustomerType string

const (
	CustomerWholesale CustomerType = "wholesale"
	CustomerRetail    CustomerType = "retail"
)

// Position is an employee's job, which drives authorization policies.
type Position string

const (
	PositionManager   Position = "manager"
	PositionPurchaser Position = "purchaser"
	PositionWarehouse Position = "warehouse"
	PositionSales     Position = "sales"
	PositionFinance   Position = "finance"
)

// Valid reports whether p is a known position
func (p Position) Valid() bool {
	switch p {
	case PositionManager, PositionPurchaser, PositionWarehouse, PositionSales, PositionFinance:
		return true
	}
	return false
}

// Address holds the postal address parts shared by suppliers and customers.
type Address struct {
	Province      string `json:"province,omitempty"`
	City          string `json:"city,omitempty"`
	District      string `json:"district,omitempty"`
	Street        string `json:"street,omitempty"`
	DetailAddress string `json:"detail_address,omitempty"`
	ZipCode       string `json:"zip_code,omitempty"`
}

// FullAddress joins the non-empty parts from the widest region inwards.
func (a Address) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Province, a.City, a.District, a.Street, a.DetailAddress} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "")
}

// SupplierPhone is one contact number owned by a supplier
type SupplierPhone struct {
	ID         uuid.UUID `json:"id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Number     string    `json:"number"`
	Type       PhoneType `json:"type"`
	Note       string    `json:"note,omitempty"`
}

// Supplier is the counterparty of purchase and purchase-return orders
type Supplier struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	ContactPerson string          `json:"contact_person,omitempty"`
	LicenseNo     string          `json:"license_no,omitempty"`
	Address       Address         `json:"address"`
	Phones        []SupplierPhone `json:"phones,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the supplier
func (s *Supplier) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return validationErrorf("name is required")
	}
	for i := range s.Phones {
		if strings.TrimSpace(s.Phones[i].Number) == "" {
			return validationErrorf("phones[%d].number is required", i)
		}
		switch s.Phones[i].Type {
		case "":
			s.Phones[i].Type = PhoneMobile
		case PhoneMobile, PhoneOffice, PhoneFax, PhoneOther:
		default:
			return validationErrorf("phones[%d].type %q is not supported", i, s.Phones[i].Type)
		}
	}
	return nil
}

// Customer is the counterparty of sales and sales-return orders
type Customer struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Type      CustomerType `json:"type"`
	Phone     string       `json:"phone,omitempty"`
	Address   Address      `json:"address"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Validate performs domain validation on the customer
func (c *Customer) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return validationErrorf("name is required")
	}
	switch c.Type {
	case "":
		c.Type = CustomerRetail
	case CustomerWholesale, CustomerRetail:
	default:
		return validationErrorf("type %q is not supported", c.Type)
	}
	return nil
}

// Employee is the person responsible for an order
type Employee struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	RealName  string    `json:"real_name,omitempty"`
	Mobile    string    `json:"mobile,omitempty"`
	Position  Position  `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate performs domain validation on the employee
func (e *Employee) Validate() error {
	e.Username = strings.TrimSpace(e.Username)
	if e.Username == "" {
		return validationErrorf("username is required")
	}
	if e.Position == "" {
		e.Position = PositionSales
	}
	if !e.Position.Valid() {
		return validationErrorf("position %q is not supported", e.Position)
	}
	return nil
}

// Principal is the authenticated caller of a core operation.
type Principal struct {
	EmployeeID uuid.UUID
	Username   string
	Position   Position
}

// SystemPrincipal is used by background jobs acting on behalf of the service itself.
var SystemPrincipal = Principal{Username: "system", Position: PositionManager}
