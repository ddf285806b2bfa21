// internal/core/ports/catalog_service.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// CatalogService defines the application service port for reference data
type CatalogService interface {
	CreateMedicine(ctx context.Context, p domain.Principal, m *domain.Medicine) error
	GetMedicine(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Medicine, error)
	ListMedicines(ctx context.Context, p domain.Principal, search string, limit, offset int) (*ListResult[*domain.Medicine], error)
	CreateSupplier(ctx context.Context, p domain.Principal, s *domain.Supplier) error
	GetSupplier(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context, p domain.Principal, search string, limit, offset int) (*ListResult[*domain.Supplier], error)
	CreateCustomer(ctx context.Context, p domain.Principal, c *domain.Customer) error
	GetCustomer(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context, p domain.Principal, search string, limit, offset int) (*ListResult[*domain.Customer], error)
	CreateEmployee(ctx context.Context, p domain.Principal, e *domain.Employee) error
	GetEmployee(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Employee, error)
	ListEmployees(ctx context.Context, p domain.Principal, limit, offset int) (*ListResult[*domain.Employee], error)
	DeleteEmployee(ctx context.Context, p domain.Principal, id uuid.UUID) error
}
