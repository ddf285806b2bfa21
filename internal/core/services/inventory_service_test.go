// internal/core/services/inventory_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/core/services"
	"github.com/ammerola/pharmacy-be/test/helpers"
	"github.com/ammerola/pharmacy-be/test/mocks"
)

func newInventoryService(t *testing.T, authz ports.Authorizer, withCache bool) (*services.InventoryService, *mocks.MockInventoryRepository, *mocks.MockCacheRepository) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockInventoryRepository(ctrl)

	var (
		cache     *mocks.MockCacheRepository
		cachePort ports.CacheRepository
	)
	if withCache {
		cache = mocks.NewMockCacheRepository(ctrl)
		cachePort = cache
	}

	svc := services.NewInventoryService(repo, authz, helpers.FixedClock{T: helpers.DefaultNow},
		cachePort, time.Minute, helpers.TestLogger())
	return svc, repo, cache
}

func TestInventoryService_CreateInventoryRecord(t *testing.T) {
	tests := []struct {
		name          string
		record        *domain.InventoryRecord
		setupMocks    func(*mocks.MockInventoryRepository, *mocks.MockCacheRepository)
		expectedError bool
		errorIs       error
		errorContains string
	}{
		{
			name:   "successful_create_invalidates_level",
			record: helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) { r.ID = uuid.Nil }),
			setupMocks: func(repo *mocks.MockInventoryRepository, cache *mocks.MockCacheRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, rec *domain.InventoryRecord) error {
						assert.NotEqual(t, uuid.Nil, rec.ID)
						assert.Equal(t, helpers.DefaultNow, rec.UpdatedAt)
						return nil
					})
				cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "validation_fails_for_missing_batch",
			record: helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) {
				r.BatchNumber = " "
			}),
			setupMocks:    func(*mocks.MockInventoryRepository, *mocks.MockCacheRepository) {},
			expectedError: true,
			errorIs:       domain.ErrValidation,
			errorContains: "batch_number is required",
		},
		{
			name: "validation_fails_for_negative_quantity",
			record: helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) {
				r.Quantity = -1
			}),
			setupMocks:    func(*mocks.MockInventoryRepository, *mocks.MockCacheRepository) {},
			expectedError: true,
			errorIs:       domain.ErrValidation,
		},
		{
			name:   "duplicate_batch_is_reported",
			record: helpers.CreateTestInventoryRecord(),
			setupMocks: func(repo *mocks.MockInventoryRepository, cache *mocks.MockCacheRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, rec *domain.InventoryRecord) error {
						return &domain.DuplicateBatchError{MedicineID: rec.MedicineID, BatchNumber: rec.BatchNumber}
					})
			},
			expectedError: true,
			errorContains: "already exists",
		},
		{
			name:   "cache_failure_does_not_fail_create",
			record: helpers.CreateTestInventoryRecord(),
			setupMocks: func(repo *mocks.MockInventoryRepository, cache *mocks.MockCacheRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, cache := newInventoryService(t, helpers.AllowAll{}, true)
			tt.setupMocks(repo, cache)

			err := svc.CreateInventoryRecord(context.Background(), helpers.Principal(domain.PositionWarehouse), tt.record)

			if tt.expectedError {
				require.Error(t, err)
				if tt.errorIs != nil {
					assert.ErrorIs(t, err, tt.errorIs)
				}
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInventoryService_CreateInventoryRecord_DuplicateBatchUnwraps(t *testing.T) {
	svc, repo, _ := newInventoryService(t, helpers.AllowAll{}, true)
	rec := helpers.CreateTestInventoryRecord()

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.DuplicateBatchError{MedicineID: rec.MedicineID, BatchNumber: rec.BatchNumber})

	err := svc.CreateInventoryRecord(context.Background(), helpers.Principal(domain.PositionManager), rec)

	var dup *domain.DuplicateBatchError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, rec.BatchNumber, dup.BatchNumber)
}

func TestInventoryService_GetInventoryLevel(t *testing.T) {
	rec := helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) { r.Quantity = 42 })
	key := rec.Key()

	t.Run("reads_through_cache", func(t *testing.T) {
		svc, repo, cache := newInventoryService(t, helpers.AllowAll{}, true)

		repo.EXPECT().FindByKey(gomock.Any(), key).Return(rec, nil)
		cache.EXPECT().GetOrSet(gomock.Any(), services.InventoryLevelKey(key), gomock.Any(), gomock.Any(), time.Minute).
			DoAndReturn(func(_ context.Context, _ string, dest interface{}, fetch func() (interface{}, error), _ time.Duration) error {
				v, err := fetch()
				if err != nil {
					return err
				}
				*(dest.(*int)) = v.(int)
				return nil
			})

		qty, err := svc.GetInventoryLevel(context.Background(), helpers.Principal(domain.PositionSales), key)
		require.NoError(t, err)
		assert.Equal(t, 42, qty)
	})

	t.Run("missing_batch_is_not_found", func(t *testing.T) {
		svc, repo, cache := newInventoryService(t, helpers.AllowAll{}, true)

		repo.EXPECT().FindByKey(gomock.Any(), key).Return(nil, nil)
		cache.EXPECT().GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ interface{}, fetch func() (interface{}, error), _ time.Duration) error {
				_, err := fetch()
				return err
			})

		_, err := svc.GetInventoryLevel(context.Background(), helpers.Principal(domain.PositionSales), key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("cache_outage_falls_back_to_ledger", func(t *testing.T) {
		svc, repo, cache := newInventoryService(t, helpers.AllowAll{}, true)

		cache.EXPECT().GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("dial tcp: connection refused"))
		repo.EXPECT().FindByKey(gomock.Any(), key).Return(rec, nil)

		qty, err := svc.GetInventoryLevel(context.Background(), helpers.Principal(domain.PositionSales), key)
		require.NoError(t, err)
		assert.Equal(t, 42, qty)
	})

	t.Run("without_cache_reads_ledger", func(t *testing.T) {
		svc, repo, _ := newInventoryService(t, helpers.AllowAll{}, false)
		repo.EXPECT().FindByKey(gomock.Any(), key).Return(rec, nil)

		qty, err := svc.GetInventoryLevel(context.Background(), helpers.Principal(domain.PositionSales), key)
		require.NoError(t, err)
		assert.Equal(t, 42, qty)
	})

	t.Run("denied_caller_is_forbidden", func(t *testing.T) {
		svc, _, _ := newInventoryService(t, helpers.DenyAll{}, true)

		_, err := svc.GetInventoryLevel(context.Background(), helpers.Principal(domain.PositionFinance), key)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestInventoryService_DeleteInventoryRecord(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*mocks.MockInventoryRepository, *mocks.MockCacheRepository, *domain.InventoryRecord)
		errorIs    error
	}{
		{
			name: "deletes_and_invalidates",
			setupMocks: func(repo *mocks.MockInventoryRepository, cache *mocks.MockCacheRepository, rec *domain.InventoryRecord) {
				repo.EXPECT().FindByID(gomock.Any(), rec.ID).Return(rec, nil)
				repo.EXPECT().Delete(gomock.Any(), rec.ID).Return(nil)
				cache.EXPECT().Delete(gomock.Any(), services.InventoryLevelKey(rec.Key())).Return(nil)
			},
		},
		{
			name: "missing_record_is_not_found",
			setupMocks: func(repo *mocks.MockInventoryRepository, _ *mocks.MockCacheRepository, rec *domain.InventoryRecord) {
				repo.EXPECT().FindByID(gomock.Any(), rec.ID).Return(nil, nil)
			},
			errorIs: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, cache := newInventoryService(t, helpers.AllowAll{}, true)
			rec := helpers.CreateTestInventoryRecord()
			tt.setupMocks(repo, cache, rec)

			err := svc.DeleteInventoryRecord(context.Background(), helpers.Principal(domain.PositionManager), rec.ID)
			if tt.errorIs != nil {
				assert.ErrorIs(t, err, tt.errorIs)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInventoryService_ListInventory(t *testing.T) {
	svc, repo, _ := newInventoryService(t, helpers.AllowAll{}, false)
	maxQty := 5

	repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p ports.InventoryListParams) ([]*domain.InventoryRecord, int64, error) {
			assert.Equal(t, 20, p.Limit)
			require.NotNil(t, p.MaxQuantity)
			assert.Equal(t, 5, *p.MaxQuantity)
			return []*domain.InventoryRecord{helpers.CreateTestInventoryRecord()}, 1, nil
		})

	res, err := svc.ListInventory(context.Background(), helpers.Principal(domain.PositionWarehouse),
		ports.InventoryListParams{MaxQuantity: &maxQty})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)
}

func TestInventoryService_ListMovements(t *testing.T) {
	svc, repo, _ := newInventoryService(t, helpers.AllowAll{}, false)
	id := uuid.New()

	repo.EXPECT().ListMovements(gomock.Any(), id, 500).Return(nil, nil)

	movements, err := svc.ListMovements(context.Background(), helpers.Principal(domain.PositionFinance), id, 10000)
	require.NoError(t, err)
	assert.NotNil(t, movements)
	assert.Empty(t, movements)
}
