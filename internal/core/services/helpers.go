// internal/core/services/helpers.go
package services

import (
	"context"
	"fmt"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// authorize is the gate in front of every core operation
func authorize(ctx context.Context, authz ports.Authorizer, p domain.Principal, action ports.Action, kind domain.OrderKind) error {
	if authz.IsAuthorized(ctx, p, action, kind) {
		return nil
	}
	if kind != "" {
		return fmt.Errorf("%w: %s may not %s %s orders", domain.ErrForbidden, p.Position, action, kind)
	}
	return fmt.Errorf("%w: %s may not %s", domain.ErrForbidden, p.Position, action)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// InventoryLevelKey is the cache key holding the quantity of one batch
func InventoryLevelKey(key domain.StockKey) string {
	return "inv:level:" + key.MedicineID.String() + ":" + key.BatchNumber
}

func notFound(entity string, id fmt.Stringer) error {
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
}
