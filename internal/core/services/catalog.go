// internal/core/services/catalog.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// CatalogService manages medicines, suppliers, customers and employees
type CatalogService struct {
	repo   ports.CatalogRepository
	authz  ports.Authorizer
	clock  ports.Clock
	logger *slog.Logger
}

// Statically assert that *CatalogService implements the CatalogService interface.
var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service
func NewCatalogService(repo ports.CatalogRepository, authz ports.Authorizer, clock ports.Clock, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		authz:  authz,
		clock:  clock,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

func (s *CatalogService) CreateMedicine(ctx context.Context, p domain.Principal, m *domain.Medicine) error {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogManage, ""); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	m.PrepareForStorage(s.clock.Now())

	if err := s.repo.CreateMedicine(ctx, m); err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}

	s.logger.InfoContext(ctx, "medicine created",
		slog.String("medicine_id", m.ID.String()),
		slog.String("approval_number", m.ApprovalNumber))
	return nil
}

func (s *CatalogService) GetMedicine(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Medicine, error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	m, err := s.repo.FindMedicine(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}
	if m == nil {
		return nil, notFound("medicine", id)
	}
	return m, nil
}

func (s *CatalogService) ListMedicines(ctx context.Context, p domain.Principal, search string, limit, offset int) (*ports.ListResult[*domain.Medicine], error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	items, total, err := s.repo.ListMedicines(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return ports.NewListResult(items, total, limit, offset), nil
}

func (s *CatalogService) CreateSupplier(ctx context.Context, p domain.Principal, sup *domain.Supplier) error {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogManage, ""); err != nil {
		return err
	}
	if err := sup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := s.clock.Now()
	if sup.ID == uuid.Nil {
		sup.ID = uuid.New()
	}
	sup.CreatedAt, sup.UpdatedAt = now, now
	for i := range sup.Phones {
		if sup.Phones[i].ID == uuid.Nil {
			sup.Phones[i].ID = uuid.New()
		}
		sup.Phones[i].SupplierID = sup.ID
	}

	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}

	s.logger.InfoContext(ctx, "supplier created",
		slog.String("supplier_id", sup.ID.String()),
		slog.Int("phones", len(sup.Phones)))
	return nil
}

func (s *CatalogService) GetSupplier(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Supplier, error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	sup, err := s.repo.FindSupplier(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if sup == nil {
		return nil, notFound("supplier", id)
	}
	return sup, nil
}

func (s *CatalogService) ListSuppliers(ctx context.Context, p domain.Principal, search string, limit, offset int) (*ports.ListResult[*domain.Supplier], error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	items, total, err := s.repo.ListSuppliers(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return ports.NewListResult(items, total, limit, offset), nil
}

func (s *CatalogService) CreateCustomer(ctx context.Context, p domain.Principal, c *domain.Customer) error {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogManage, ""); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := s.clock.Now()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.InfoContext(ctx, "customer created", slog.String("customer_id", c.ID.String()))
	return nil
}

func (s *CatalogService) GetCustomer(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Customer, error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	c, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, notFound("customer", id)
	}
	return c, nil
}

func (s *CatalogService) ListCustomers(ctx context.Context, p domain.Principal, search string, limit, offset int) (*ports.ListResult[*domain.Customer], error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	items, total, err := s.repo.ListCustomers(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return ports.NewListResult(items, total, limit, offset), nil
}

func (s *CatalogService) CreateEmployee(ctx context.Context, p domain.Principal, e *domain.Employee) error {
	if err := authorize(ctx, s.authz, p, ports.ActionEmployeeManage, ""); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = s.clock.Now()

	if err := s.repo.CreateEmployee(ctx, e); err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	s.logger.InfoContext(ctx, "employee created",
		slog.String("employee_id", e.ID.String()),
		slog.String("position", string(e.Position)))
	return nil
}

func (s *CatalogService) GetEmployee(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Employee, error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	e, err := s.repo.FindEmployee(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if e == nil {
		return nil, notFound("employee", id)
	}
	return e, nil
}

func (s *CatalogService) ListEmployees(ctx context.Context, p domain.Principal, limit, offset int) (*ports.ListResult[*domain.Employee], error) {
	if err := authorize(ctx, s.authz, p, ports.ActionCatalogView, ""); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	items, total, err := s.repo.ListEmployees(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return ports.NewListResult(items, total, limit, offset), nil
}

// DeleteEmployee removes an employee. Orders they handled keep existing with
// no employee recorded.
func (s *CatalogService) DeleteEmployee(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := authorize(ctx, s.authz, p, ports.ActionEmployeeManage, ""); err != nil {
		return err
	}
	e, err := s.repo.FindEmployee(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if e == nil {
		return notFound("employee", id)
	}
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	s.logger.InfoContext(ctx, "employee deleted", slog.String("employee_id", id.String()))
	return nil
}
