//go:build integration
// +build integration

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/pharmacy-be/internal/adapters/db"
	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/test/helpers"
)

type InventoryRepositorySuite struct {
	suite.Suite
	testDB   *helpers.TestDB
	repo     *db.InventoryRepository
	catalog  *db.CatalogRepository
	ctx      context.Context
	medicine *domain.Medicine
}

func (s *InventoryRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewInventoryRepository(s.testDB.Database, helpers.TestLogger())
	s.catalog = db.NewCatalogRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *InventoryRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)

	s.medicine = helpers.CreateTestMedicine()
	s.Require().NoError(s.catalog.CreateMedicine(s.ctx, s.medicine))
}

func (s *InventoryRepositorySuite) seed(batch string, qty int) *domain.InventoryRecord {
	rec := helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) {
		r.MedicineID, r.BatchNumber, r.Quantity = s.medicine.ID, batch, qty
	})
	s.Require().NoError(s.repo.Create(s.ctx, rec))
	return rec
}

func (s *InventoryRepositorySuite) TestCreateAndFind() {
	rec := s.seed("B2024-001", 40)

	byID, err := s.repo.FindByID(s.ctx, rec.ID)
	s.NoError(err)
	s.Require().NotNil(byID)
	s.Equal(40, byID.Quantity)
	s.Equal(rec.ExpiryDate.Format(time.DateOnly), byID.ExpiryDate.Format(time.DateOnly))

	byKey, err := s.repo.FindByKey(s.ctx, rec.Key())
	s.NoError(err)
	s.Require().NotNil(byKey)
	s.Equal(rec.ID, byKey.ID)

	missing, err := s.repo.FindByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(missing)
}

func (s *InventoryRepositorySuite) TestCreate_DuplicateBatch() {
	s.seed("B-DUP", 1)

	dup := helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) {
		r.MedicineID, r.BatchNumber = s.medicine.ID, "B-DUP"
	})
	err := s.repo.Create(s.ctx, dup)

	var dupErr *domain.DuplicateBatchError
	s.Require().ErrorAs(err, &dupErr)
	s.Equal("B-DUP", dupErr.BatchNumber)
}

func (s *InventoryRepositorySuite) TestCreate_UnknownMedicine() {
	rec := helpers.CreateTestInventoryRecord()
	err := s.repo.Create(s.ctx, rec)
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *InventoryRepositorySuite) TestLockOutsideTransaction() {
	rec := s.seed("B-LOCK", 1)

	_, err := s.repo.LockByID(s.ctx, rec.ID)
	s.Error(err)
	_, err = s.repo.LockByKey(s.ctx, rec.Key())
	s.Error(err)
}

func (s *InventoryRepositorySuite) TestAddQuantity() {
	rec := s.seed("B-ADD", 5)

	after, err := s.repo.AddQuantity(s.ctx, rec.ID, 7)
	s.NoError(err)
	s.Equal(12, after)

	after, err = s.repo.AddQuantity(s.ctx, rec.ID, -12)
	s.NoError(err)
	s.Equal(0, after)

	_, err = s.repo.AddQuantity(s.ctx, rec.ID, -1)
	_, short := domain.IsInsufficientStock(err)
	s.True(short, "check constraint must surface as insufficient stock, got %v", err)

	_, err = s.repo.AddQuantity(s.ctx, uuid.New(), 1)
	var integrity *domain.DataIntegrityError
	s.ErrorAs(err, &integrity)
}

func (s *InventoryRepositorySuite) TestEnsureExists_IsIdempotent() {
	key := domain.StockKey{MedicineID: s.medicine.ID, BatchNumber: "B-NEW"}
	expiry := helpers.DefaultNow.AddDate(1, 0, 0).Truncate(24 * time.Hour)

	err := s.testDB.Database.WithinTransaction(s.ctx, func(ctx context.Context) error {
		if err := s.repo.EnsureExists(ctx, key, expiry, helpers.DefaultNow); err != nil {
			return err
		}
		return s.repo.EnsureExists(ctx, key, expiry.AddDate(1, 0, 0), helpers.DefaultNow.Add(time.Hour))
	})
	s.Require().NoError(err)

	rec, err := s.repo.FindByKey(s.ctx, key)
	s.NoError(err)
	s.Require().NotNil(rec)
	s.Equal(0, rec.Quantity)
	s.Equal(expiry.Format(time.DateOnly), rec.ExpiryDate.Format(time.DateOnly))
	s.True(helpers.DefaultNow.Equal(rec.CreatedAt), "created_at %s should come from the caller", rec.CreatedAt)
}

func (s *InventoryRepositorySuite) TestWithinTransaction_RollsBackOnError() {
	rec := s.seed("B-TX", 10)
	boom := errors.New("boom")

	err := s.testDB.Database.WithinTransaction(s.ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockByID(ctx, rec.ID)
		if err != nil {
			return err
		}
		s.Equal(10, locked.Quantity)
		if _, err := s.repo.AddQuantity(ctx, rec.ID, -4); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	after, err := s.repo.FindByID(s.ctx, rec.ID)
	s.NoError(err)
	s.Equal(10, after.Quantity)
}

func (s *InventoryRepositorySuite) TestWithinTransaction_NestedCallsJoin() {
	rec := s.seed("B-NEST", 10)

	err := s.testDB.Database.WithinTransaction(s.ctx, func(ctx context.Context) error {
		return s.testDB.Database.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := s.repo.LockByID(ctx, rec.ID)
			return err
		})
	})
	s.NoError(err)
}

func (s *InventoryRepositorySuite) TestList_FilteringAndSorting() {
	s.seed("B-001", 3)
	s.seed("B-002", 50)
	s.seed("B-003", 8)

	maxQty := 10
	records, total, err := s.repo.List(s.ctx, ports.InventoryListParams{
		MedicineID:  &s.medicine.ID,
		MaxQuantity: &maxQty,
		SortBy:      "quantity",
		SortOrder:   "desc",
		Limit:       10,
	})
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Require().Len(records, 2)
	s.Equal("B-003", records[0].BatchNumber)
	s.Equal("B-001", records[1].BatchNumber)

	records, total, err = s.repo.List(s.ctx, ports.InventoryListParams{Limit: 1, Offset: 1})
	s.NoError(err)
	s.Equal(int64(3), total)
	s.Len(records, 1)
}

func (s *InventoryRepositorySuite) TestMovements() {
	rec := s.seed("B-MOV", 10)
	old := helpers.DefaultNow.AddDate(0, -6, 0)

	for i, at := range []time.Time{old, helpers.DefaultNow} {
		s.Require().NoError(s.repo.RecordMovement(s.ctx, &domain.StockMovement{
			InventoryID:   rec.ID,
			OrderKind:     domain.KindSale,
			OrderID:       uuid.New(),
			LineID:        uuid.New(),
			Delta:         -1,
			QuantityAfter: 9 - i,
			CreatedAt:     at,
		}))
	}

	movements, err := s.repo.ListMovements(s.ctx, rec.ID, 10)
	s.NoError(err)
	s.Require().Len(movements, 2)
	s.Equal(8, movements[0].QuantityAfter, "newest first")

	deleted, err := s.repo.DeleteMovementsBefore(s.ctx, helpers.DefaultNow.AddDate(0, -1, 0))
	s.NoError(err)
	s.Equal(int64(1), deleted)
}

func (s *InventoryRepositorySuite) TestDelete() {
	rec := s.seed("B-DEL", 0)

	s.NoError(s.repo.Delete(s.ctx, rec.ID))
	s.ErrorIs(s.repo.Delete(s.ctx, rec.ID), domain.ErrNotFound)

	gone, err := s.repo.FindByID(s.ctx, rec.ID)
	s.NoError(err)
	s.Nil(gone)
}

func TestInventoryRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(InventoryRepositorySuite))
}
