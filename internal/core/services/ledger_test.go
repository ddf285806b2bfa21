package services_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/services"
	"github.com/ammerola/pharmacy-be/test/fakes"
	"github.com/ammerola/pharmacy-be/test/helpers"
	"github.com/ammerola/pharmacy-be/test/mocks"
)

func TestLedger_GetOrCreate(t *testing.T) {
	key := domain.StockKey{MedicineID: uuid.New(), BatchNumber: "B1"}
	expiry := helpers.DefaultNow.AddDate(1, 0, 0)

	tests := []struct {
		name          string
		key           domain.StockKey
		setupMocks    func(*mocks.MockInventoryRepository)
		expectedQty   int
		errorIs       error
		errorContains string
	}{
		{
			name: "existing_record_is_locked_and_returned",
			key:  key,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				gomock.InOrder(
					m.EXPECT().EnsureExists(gomock.Any(), key, expiry, helpers.DefaultNow).Return(nil),
					m.EXPECT().LockByKey(gomock.Any(), key).
						Return(helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) {
							r.MedicineID, r.BatchNumber, r.Quantity = key.MedicineID, key.BatchNumber, 7
						}), nil),
				)
			},
			expectedQty: 7,
		},
		{
			name: "new_record_starts_at_zero",
			key:  key,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().EnsureExists(gomock.Any(), key, expiry, helpers.DefaultNow).Return(nil)
				m.EXPECT().LockByKey(gomock.Any(), key).
					Return(&domain.InventoryRecord{ID: uuid.New(), MedicineID: key.MedicineID, BatchNumber: key.BatchNumber}, nil)
			},
			expectedQty: 0,
		},
		{
			name:          "invalid_key_is_rejected_before_storage",
			key:           domain.StockKey{MedicineID: key.MedicineID},
			setupMocks:    func(m *mocks.MockInventoryRepository) {},
			errorIs:       domain.ErrValidation,
			errorContains: "batch_number",
		},
		{
			name: "insert_failure_is_wrapped",
			key:  key,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().EnsureExists(gomock.Any(), key, expiry, helpers.DefaultNow).Return(errors.New("connection reset"))
			},
			errorContains: "failed to ensure inventory record",
		},
		{
			name: "record_missing_after_insert_is_integrity_error",
			key:  key,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().EnsureExists(gomock.Any(), key, expiry, helpers.DefaultNow).Return(nil)
				m.EXPECT().LockByKey(gomock.Any(), key).Return(nil, nil)
			},
			errorContains: "data integrity violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockInventoryRepository(ctrl)
			tt.setupMocks(repo)

			ledger := services.NewLedger(repo, passthroughTx(ctrl), helpers.FixedClock{T: helpers.DefaultNow}, helpers.TestLogger())
			rec, err := ledger.GetOrCreate(context.Background(), tt.key, expiry)

			if tt.errorContains != "" || tt.errorIs != nil {
				require.Error(t, err)
				if tt.errorIs != nil {
					assert.ErrorIs(t, err, tt.errorIs)
				}
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedQty, rec.Quantity)
			assert.Equal(t, tt.key, rec.Key())
		})
	}
}

func TestLedger_ApplyDelta(t *testing.T) {
	id := uuid.New()
	withQty := func(q int) *domain.InventoryRecord {
		return helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) {
			r.ID, r.Quantity = id, q
		})
	}

	tests := []struct {
		name        string
		delta       int
		setupMocks  func(*mocks.MockInventoryRepository)
		expectedQty int
		checkErr    func(t *testing.T, err error)
	}{
		{
			name:  "increment_adds_quantity",
			delta: 20,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().LockByID(gomock.Any(), id).Return(withQty(5), nil)
				m.EXPECT().AddQuantity(gomock.Any(), id, 20).Return(25, nil)
			},
			expectedQty: 25,
		},
		{
			name:  "decrement_to_exactly_zero_is_allowed",
			delta: -5,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().LockByID(gomock.Any(), id).Return(withQty(5), nil)
				m.EXPECT().AddQuantity(gomock.Any(), id, -5).Return(0, nil)
			},
			expectedQty: 0,
		},
		{
			name:  "decrement_below_zero_writes_nothing",
			delta: -6,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().LockByID(gomock.Any(), id).Return(withQty(5), nil)
			},
			checkErr: func(t *testing.T, err error) {
				shortage, ok := domain.IsInsufficientStock(err)
				require.True(t, ok, "expected InsufficientStockError, got %v", err)
				assert.Equal(t, id, shortage.InventoryID)
				assert.Equal(t, 6, shortage.Requested)
				assert.Equal(t, 5, shortage.Available)
			},
		},
		{
			name:  "missing_record_is_integrity_error",
			delta: -1,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().LockByID(gomock.Any(), id).Return(nil, nil)
			},
			checkErr: func(t *testing.T, err error) {
				var integrity *domain.DataIntegrityError
				assert.ErrorAs(t, err, &integrity)
			},
		},
		{
			name:  "lock_failure_is_wrapped",
			delta: 1,
			setupMocks: func(m *mocks.MockInventoryRepository) {
				m.EXPECT().LockByID(gomock.Any(), id).Return(nil, errors.New("lock timeout"))
			},
			checkErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "failed to lock inventory record")
				assert.ErrorContains(t, err, "lock timeout")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockInventoryRepository(ctrl)
			tt.setupMocks(repo)

			ledger := services.NewLedger(repo, passthroughTx(ctrl), helpers.FixedClock{T: helpers.DefaultNow}, helpers.TestLogger())
			after, err := ledger.ApplyDelta(context.Background(), id, tt.delta)

			if tt.checkErr != nil {
				require.Error(t, err)
				tt.checkErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedQty, after)
		})
	}
}

// randomDeltas returns n deltas in [-span, span], skipping zero
func randomDeltas(seed uint64, n, span int) []int {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	deltas := make([]int, 0, n)
	for len(deltas) < n {
		if d := r.IntN(2*span+1) - span; d != 0 {
			deltas = append(deltas, d)
		}
	}
	return deltas
}

func TestLedger_ApplyDelta_SequencesConserveStock(t *testing.T) {
	tests := []struct {
		name    string
		initial int
		deltas  []int
	}{
		{name: "increments_only", initial: 0, deltas: []int{5, 1, 20, 3}},
		{name: "drain_to_exactly_zero", initial: 10, deltas: []int{-4, -6, 3, -3}},
		{name: "oversell_in_the_middle_is_refused", initial: 2, deltas: []int{-1, -5, 4, -5, -1}},
		{name: "refused_from_empty", initial: 0, deltas: []int{-1, 1, -2, -1}},
		{name: "seeded_mix_small_stock", initial: 3, deltas: randomDeltas(1, 200, 6)},
		{name: "seeded_mix_large_stock", initial: 500, deltas: randomDeltas(42, 500, 40)},
		{name: "seeded_mix_decrement_heavy", initial: 50, deltas: randomDeltas(7, 300, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := fakes.NewStore()
			ledger := services.NewLedger(store, store, helpers.FixedClock{T: helpers.DefaultNow}, helpers.TestLogger())
			rec := store.Seed(helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) { r.Quantity = tt.initial }))
			ctx := context.Background()

			var increments, decrements int
			for i, d := range tt.deltas {
				before := store.Quantity(rec.ID)
				after, err := ledger.ApplyDelta(ctx, rec.ID, d)

				if before+d < 0 {
					shortage, ok := domain.IsInsufficientStock(err)
					require.True(t, ok, "step %d (%+d from %d): expected InsufficientStockError, got %v", i, d, before, err)
					assert.Equal(t, -d, shortage.Requested)
					assert.Equal(t, before, shortage.Available)
					assert.Equal(t, before, store.Quantity(rec.ID), "step %d: refused decrement changed stock", i)
					continue
				}

				require.NoError(t, err, "step %d (%+d from %d)", i, d, before)
				if d > 0 {
					increments += d
				} else {
					decrements -= d
				}
				assert.Equal(t, before+d, after, "step %d", i)
				assert.GreaterOrEqual(t, store.Quantity(rec.ID), 0, "step %d", i)
				assert.Equal(t, tt.initial+increments-decrements, store.Quantity(rec.ID), "step %d", i)
			}

			assert.Equal(t, tt.initial+increments-decrements, store.Quantity(rec.ID))
		})
	}
}
