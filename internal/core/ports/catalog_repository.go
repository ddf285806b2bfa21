// internal/core/ports/catalog_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// CatalogRepository persists the reference data orders point at.
// Find methods return nil, nil when the row does not exist.
type CatalogRepository interface {
	CreateMedicine(ctx context.Context, m *domain.Medicine) error
	FindMedicine(ctx context.Context, id uuid.UUID) (*domain.Medicine, error)
	FindMedicineByApprovalNumber(ctx context.Context, approvalNumber string) (*domain.Medicine, error)
	ListMedicines(ctx context.Context, search string, limit, offset int) ([]*domain.Medicine, int64, error)

	CreateSupplier(ctx context.Context, s *domain.Supplier) error
	FindSupplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context, search string, limit, offset int) ([]*domain.Supplier, int64, error)

	CreateCustomer(ctx context.Context, c *domain.Customer) error
	FindCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context, search string, limit, offset int) ([]*domain.Customer, int64, error)

	CreateEmployee(ctx context.Context, e *domain.Employee) error
	FindEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	ListEmployees(ctx context.Context, limit, offset int) ([]*domain.Employee, int64, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
}
