// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// InventoryService handles reads and administration of the inventory ledger.
// Quantities only change through order approval.
type InventoryService struct {
	repo     ports.InventoryRepository
	authz    ports.Authorizer
	clock    ports.Clock
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service. cache may be nil.
func NewInventoryService(repo ports.InventoryRepository, authz ports.Authorizer, clock ports.Clock,
	cache ports.CacheRepository, cacheTTL time.Duration, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		repo:     repo,
		authz:    authz,
		clock:    clock,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("service", "inventory")),
	}
}

// GetInventoryLevel returns the on-hand quantity of one batch. Levels are read
// through the cache; approvals invalidate the keys they touch.
func (s *InventoryService) GetInventoryLevel(ctx context.Context, p domain.Principal, key domain.StockKey) (int, error) {
	if err := authorize(ctx, s.authz, p, ports.ActionInventoryView, ""); err != nil {
		return 0, err
	}
	if err := key.Validate(); err != nil {
		return 0, err
	}

	if s.cache == nil {
		return s.readLevel(ctx, key)
	}

	var (
		qty      int
		fetchErr error
	)
	err := s.cache.GetOrSet(ctx, InventoryLevelKey(key), &qty, func() (interface{}, error) {
		q, err := s.readLevel(ctx, key)
		fetchErr = err
		return q, err
	}, s.cacheTTL)
	if err != nil {
		if fetchErr != nil {
			return 0, fetchErr
		}
		s.logger.WarnContext(ctx, "inventory level cache unavailable, reading ledger",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
		return s.readLevel(ctx, key)
	}

	return qty, nil
}

func (s *InventoryService) readLevel(ctx context.Context, key domain.StockKey) (int, error) {
	rec, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to get inventory record: %w", err)
	}
	if rec == nil {
		return 0, notFound("inventory record", key)
	}
	return rec.Quantity, nil
}

// GetInventoryRecord retrieves an inventory record by ID
func (s *InventoryService) GetInventoryRecord(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.InventoryRecord, error) {
	if err := authorize(ctx, s.authz, p, ports.ActionInventoryView, ""); err != nil {
		return nil, err
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}
	if rec == nil {
		return nil, notFound("inventory record", id)
	}
	return rec, nil
}

// CreateInventoryRecord registers a batch administratively, typically opening
// stock. An existing (medicine, batch) pair fails with DuplicateBatchError.
func (s *InventoryService) CreateInventoryRecord(ctx context.Context, p domain.Principal, rec *domain.InventoryRecord) error {
	if err := authorize(ctx, s.authz, p, ports.ActionInventoryManage, ""); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	rec.PrepareForStorage(s.clock.Now())

	if err := s.repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to create inventory record: %w", err)
	}
	s.invalidate(ctx, rec.Key())

	s.logger.InfoContext(ctx, "inventory record created",
		slog.String("inventory_id", rec.ID.String()),
		slog.String("medicine_id", rec.MedicineID.String()),
		slog.String("batch_number", rec.BatchNumber),
		slog.Int("quantity", rec.Quantity))

	return nil
}

// DeleteInventoryRecord removes a batch. Lines pointing at it keep their
// snapshots; their inventory reference becomes empty.
func (s *InventoryService) DeleteInventoryRecord(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := authorize(ctx, s.authz, p, ports.ActionInventoryManage, ""); err != nil {
		return err
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get inventory record: %w", err)
	}
	if rec == nil {
		return notFound("inventory record", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory record: %w", err)
	}
	s.invalidate(ctx, rec.Key())

	s.logger.InfoContext(ctx, "inventory record deleted",
		slog.String("inventory_id", id.String()),
		slog.String("batch_number", rec.BatchNumber),
		slog.Int("quantity", rec.Quantity))

	return nil
}

// ListInventory retrieves inventory records with filtering and pagination
func (s *InventoryService) ListInventory(ctx context.Context, p domain.Principal, params ports.InventoryListParams) (*ports.ListResult[*domain.InventoryRecord], error) {
	if err := authorize(ctx, s.authz, p, ports.ActionInventoryView, ""); err != nil {
		return nil, err
	}

	params.Limit, params.Offset = normalizePage(params.Limit, params.Offset)

	records, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}

	return ports.NewListResult(records, total, params.Limit, params.Offset), nil
}

// ListMovements returns the most recent stock movements of a record
func (s *InventoryService) ListMovements(ctx context.Context, p domain.Principal, inventoryID uuid.UUID, limit int) ([]*domain.StockMovement, error) {
	if err := authorize(ctx, s.authz, p, ports.ActionInventoryView, ""); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}

	movements, err := s.repo.ListMovements(ctx, inventoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	if movements == nil {
		movements = []*domain.StockMovement{}
	}
	return movements, nil
}

func (s *InventoryService) invalidate(ctx context.Context, key domain.StockKey) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, InventoryLevelKey(key)); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate inventory level",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
	}
}
