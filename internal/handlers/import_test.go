// internal/handlers/import_test.go
package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/handlers"
	"github.com/ammerola/pharmacy-be/test/helpers"
	"github.com/ammerola/pharmacy-be/test/mocks"
)

type stubInspector struct {
	info *asynq.TaskInfo
	err  error
}

func (s stubInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	return s.info, s.err
}

type importFixture struct {
	router  http.Handler
	orders  *mocks.MockOrderService
	storage *mocks.MockFileStorage
	queue   *mocks.MockTaskQueue
}

func newImportFixture(t *testing.T, authz ports.Authorizer, inspector handlers.TaskInspector) importFixture {
	ctrl := gomock.NewController(t)
	f := importFixture{
		orders:  mocks.NewMockOrderService(ctrl),
		storage: mocks.NewMockFileStorage(ctrl),
		queue:   mocks.NewMockTaskQueue(ctrl),
	}
	logger := helpers.TestLogger()
	f.router = newTestRouter(handlers.Handlers{
		Orders:    handlers.NewOrderHandler(f.orders, logger),
		Inventory: handlers.NewInventoryHandler(mocks.NewMockInventoryService(ctrl), logger),
		Catalog:   handlers.NewCatalogHandler(mocks.NewMockCatalogService(ctrl), logger),
		Import: handlers.NewImportHandler(f.orders, authz, f.storage, f.queue, inspector,
			helpers.FixedClock{T: helpers.DefaultNow},
			handlers.ImportConfig{MaxFileSize: 1 << 20, ProcessingTimeout: time.Minute}, logger),
	})
	return f
}

func uploadRequest(t *testing.T, orderID uuid.UUID, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/purchase/"+orderID.String()+"/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func pendingPurchase(id uuid.UUID, status domain.OrderStatus) *domain.OrderDetail {
	order := helpers.CreateTestOrder(domain.KindPurchase, func(o *domain.Order) {
		o.ID = id
		o.Status = status
	})
	return &domain.OrderDetail{Order: *order}
}

func TestImportHandler_ImportPurchaseLines(t *testing.T) {
	orderID := uuid.New()

	t.Run("queues_xlsx_import", func(t *testing.T) {
		f := newImportFixture(t, helpers.AllowAll{}, nil)

		f.orders.EXPECT().
			GetOrder(gomock.Any(), testCaller, domain.KindPurchase, orderID).
			Return(pendingPurchase(orderID, domain.StatusPending), nil)

		var storedKey string
		f.storage.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, key string, data io.Reader, contentType string) (string, error) {
				storedKey = key
				content, err := io.ReadAll(data)
				require.NoError(t, err)
				assert.Equal(t, "sheet-bytes", string(content))
				assert.True(t, strings.HasPrefix(key, "imports/2024/03/15/"+orderID.String()+"/"))
				assert.True(t, strings.HasSuffix(key, ".xlsx"))
				assert.Contains(t, contentType, "spreadsheetml")
				return "file://" + key, nil
			})

		f.queue.EXPECT().
			EnqueueContext(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
				assert.Equal(t, ports.TypePurchaseImport, task.Type())
				payload := string(task.Payload())
				assert.Contains(t, payload, orderID.String())
				assert.Contains(t, payload, storedKey)
				assert.Contains(t, payload, testCaller.Username)

				var queue string
				for _, o := range opts {
					if o.Type() == asynq.QueueOpt {
						queue, _ = o.Value().(string)
					}
				}
				assert.Equal(t, ports.QueueCritical, queue)
				return &asynq.TaskInfo{ID: "job", Queue: queue}, nil
			})

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, uploadRequest(t, orderID, "lines.xlsx", []byte("sheet-bytes")))

		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Equal(t, "queued", body["status"])
		assert.Equal(t, "xlsx", body["format"])
		assert.NotEmpty(t, body["job_id"])
	})

	t.Run("removes_upload_when_enqueue_fails", func(t *testing.T) {
		f := newImportFixture(t, helpers.AllowAll{}, nil)

		f.orders.EXPECT().GetOrder(gomock.Any(), gomock.Any(), gomock.Any(), orderID).
			Return(pendingPurchase(orderID, domain.StatusPending), nil)
		f.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "application/pdf").Return("loc", nil)
		f.queue.EXPECT().EnqueueContext(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("redis down"))
		f.storage.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, uploadRequest(t, orderID, "invoice.PDF", []byte("%PDF-1.4")))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("rejects_approved_order", func(t *testing.T) {
		f := newImportFixture(t, helpers.AllowAll{}, nil)

		f.orders.EXPECT().GetOrder(gomock.Any(), gomock.Any(), gomock.Any(), orderID).
			Return(pendingPurchase(orderID, domain.StatusApproved), nil)

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, uploadRequest(t, orderID, "lines.xlsx", []byte("x")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects_unsupported_file", func(t *testing.T) {
		f := newImportFixture(t, helpers.AllowAll{}, nil)

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, uploadRequest(t, orderID, "lines.csv", []byte("a,b")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requires_file", func(t *testing.T) {
		f := newImportFixture(t, helpers.AllowAll{}, nil)

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, uploadRequest(t, orderID, "", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("forbidden_before_reading_upload", func(t *testing.T) {
		f := newImportFixture(t, helpers.DenyAll{}, nil)

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, uploadRequest(t, orderID, "lines.xlsx", []byte("x")))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("order_not_found", func(t *testing.T) {
		f := newImportFixture(t, helpers.AllowAll{}, nil)

		f.orders.EXPECT().GetOrder(gomock.Any(), gomock.Any(), gomock.Any(), orderID).
			Return(nil, domain.ErrNotFound)

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, uploadRequest(t, orderID, "lines.xlsx", []byte("x")))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestImportHandler_GetImportStatus(t *testing.T) {
	completed := helpers.DefaultNow

	tests := []struct {
		name           string
		inspector      stubInspector
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name: "completed_with_report",
			inspector: stubInspector{info: &asynq.TaskInfo{
				ID:          "job-1",
				State:       asynq.TaskStateCompleted,
				CompletedAt: completed,
				Result:      []byte(`{"imported":2,"failed":[{"row":3,"error":"unknown approval number"}]}`),
			}},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "completed", body["state"])
				result, ok := body["result"].(map[string]interface{})
				require.True(t, ok)
				assert.EqualValues(t, 2, result["imported"])
			},
		},
		{
			name:           "unknown_job",
			inspector:      stubInspector{err: asynq.ErrTaskNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "inspector_failure",
			inspector:      stubInspector{err: errors.New("redis down")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture(t, helpers.AllowAll{}, tt.inspector)

			rec := serve(t, f.router, http.MethodGet, "/api/v1/imports/job-1", nil)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.validateBody != nil {
				tt.validateBody(t, decodeBody(t, rec))
			}
		})
	}
}
