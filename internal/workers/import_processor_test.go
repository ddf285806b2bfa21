package workers_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/workers"
	"github.com/ammerola/pharmacy-be/test/helpers"
	"github.com/ammerola/pharmacy-be/test/mocks"
)

type importFixture struct {
	processor *workers.PurchaseImportProcessor
	orders    *mocks.MockOrderService
	catalog   *mocks.MockCatalogRepository
	storage   *mocks.MockFileStorage
}

func newImportFixture(t *testing.T) importFixture {
	ctrl := gomock.NewController(t)
	f := importFixture{
		orders:  mocks.NewMockOrderService(ctrl),
		catalog: mocks.NewMockCatalogRepository(ctrl),
		storage: mocks.NewMockFileStorage(ctrl),
	}
	f.processor = workers.NewPurchaseImportProcessor(f.orders, f.catalog, f.storage, helpers.TestLogger())
	return f
}

func importTask(t *testing.T, payload ports.PurchaseImportPayload) *asynq.Task {
	t.Helper()
	task, err := ports.NewTask(ports.TypePurchaseImport, payload)
	require.NoError(t, err)
	return task
}

func purchaseSheet(t *testing.T, rows ...[]string) []byte {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Lines")
	require.NoError(t, err)
	header := []string{"approval_number", "batch_number", "produce_date", "expiry_date", "quantity", "unit_price"}
	for _, values := range append([][]string{header}, rows...) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

func TestPurchaseImportProcessor_ProcessImport(t *testing.T) {
	purchaser := helpers.Principal(domain.PositionPurchaser)
	orderID := uuid.New()
	payload := ports.PurchaseImportPayload{
		JobID:      "job-1",
		OrderID:    orderID,
		StorageKey: "imports/2024/03/15/" + orderID.String() + "/lines.xlsx",
		Format:     ports.ImportXLSX,
		EmployeeID: purchaser.EmployeeID,
		Username:   purchaser.Username,
		Position:   string(purchaser.Position),
		UploadedAt: helpers.DefaultNow,
	}
	pending := &domain.OrderDetail{Order: *helpers.CreateTestOrder(domain.KindPurchase, func(o *domain.Order) {
		o.ID = orderID
	})}

	t.Run("adds_resolved_rows_and_skips_the_rest", func(t *testing.T) {
		f := newImportFixture(t)
		medicine := helpers.CreateTestMedicine(func(m *domain.Medicine) { m.ApprovalNumber = "H20051234" })

		f.orders.EXPECT().GetOrder(gomock.Any(), purchaser, domain.KindPurchase, orderID).Return(pending, nil)
		f.storage.EXPECT().Download(gomock.Any(), payload.StorageKey).Return(purchaseSheet(t,
			[]string{"H20051234", "B2024-07", "2024-01-10", "2026-01-09", "40", "12.50"},
			[]string{"Z00000000", "L1", "2024-01-10", "2026-01-09", "5", "1.00"},
			[]string{"H20051234", "B2024-08", "2024-01-10", "2026-01-09", "many", "12.50"},
		), nil)

		f.catalog.EXPECT().FindMedicineByApprovalNumber(gomock.Any(), "H20051234").Return(medicine, nil)
		f.catalog.EXPECT().FindMedicineByApprovalNumber(gomock.Any(), "Z00000000").Return(nil, nil)

		f.orders.EXPECT().
			AddLineItem(gomock.Any(), purchaser, domain.KindPurchase, orderID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Principal, _ domain.OrderKind, _ uuid.UUID, line domain.Line) (uuid.UUID, error) {
				pl, ok := line.(*domain.PurchaseLine)
				require.True(t, ok)
				assert.Equal(t, medicine.ID, pl.MedicineID)
				assert.Equal(t, "B2024-07", pl.BatchNumber)
				assert.Equal(t, 40, pl.Quantity)
				assert.Equal(t, "12.5", pl.UnitPrice.String())
				return uuid.New(), nil
			})
		f.storage.EXPECT().Delete(gomock.Any(), payload.StorageKey).Return(nil)

		err := f.processor.ProcessImport(context.Background(), importTask(t, payload))
		assert.NoError(t, err)
	})

	t.Run("rejected_line_does_not_stop_import", func(t *testing.T) {
		f := newImportFixture(t)
		medicine := helpers.CreateTestMedicine()

		f.orders.EXPECT().GetOrder(gomock.Any(), gomock.Any(), gomock.Any(), orderID).Return(pending, nil)
		f.storage.EXPECT().Download(gomock.Any(), gomock.Any()).Return(purchaseSheet(t,
			[]string{medicine.ApprovalNumber, "B1", "2024-01-10", "2023-01-09", "1", "1.00"},
			[]string{medicine.ApprovalNumber, "B2", "2024-01-10", "2026-01-09", "1", "1.00"},
		), nil)
		f.catalog.EXPECT().FindMedicineByApprovalNumber(gomock.Any(), medicine.ApprovalNumber).Return(medicine, nil).Times(2)
		gomock.InOrder(
			f.orders.EXPECT().AddLineItem(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(uuid.Nil, &domain.ValidationError{Message: "expiry_date must be after produce_date"}),
			f.orders.EXPECT().AddLineItem(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(uuid.New(), nil),
		)
		f.storage.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("gone"))

		assert.NoError(t, f.processor.ProcessImport(context.Background(), importTask(t, payload)))
	})

	t.Run("approved_order_is_not_retried", func(t *testing.T) {
		f := newImportFixture(t)
		approved := &domain.OrderDetail{Order: *helpers.CreateTestOrder(domain.KindPurchase, func(o *domain.Order) {
			o.ID = orderID
			o.Status = domain.StatusApproved
		})}
		f.orders.EXPECT().GetOrder(gomock.Any(), gomock.Any(), gomock.Any(), orderID).Return(approved, nil)

		err := f.processor.ProcessImport(context.Background(), importTask(t, payload))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("unreadable_file_is_not_retried", func(t *testing.T) {
		f := newImportFixture(t)
		f.orders.EXPECT().GetOrder(gomock.Any(), gomock.Any(), gomock.Any(), orderID).Return(pending, nil)
		f.storage.EXPECT().Download(gomock.Any(), gomock.Any()).Return([]byte("not a workbook"), nil)

		err := f.processor.ProcessImport(context.Background(), importTask(t, payload))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("download_failure_is_retried", func(t *testing.T) {
		f := newImportFixture(t)
		f.orders.EXPECT().GetOrder(gomock.Any(), gomock.Any(), gomock.Any(), orderID).Return(pending, nil)
		f.storage.EXPECT().Download(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		err := f.processor.ProcessImport(context.Background(), importTask(t, payload))
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("malformed_payload", func(t *testing.T) {
		f := newImportFixture(t)

		err := f.processor.ProcessImport(context.Background(), asynq.NewTask(ports.TypePurchaseImport, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}
