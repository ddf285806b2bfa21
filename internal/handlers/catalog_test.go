// internal/handlers/catalog_test.go
package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/handlers"
	"github.com/ammerola/pharmacy-be/test/helpers"
	"github.com/ammerola/pharmacy-be/test/mocks"
)

func catalogRouter(t *testing.T) (http.Handler, *mocks.MockCatalogService) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCatalogService(ctrl)
	return newTestRouter(handlers.Handlers{
		Orders:    handlers.NewOrderHandler(mocks.NewMockOrderService(ctrl), helpers.TestLogger()),
		Inventory: handlers.NewInventoryHandler(mocks.NewMockInventoryService(ctrl), helpers.TestLogger()),
		Catalog:   handlers.NewCatalogHandler(svc, helpers.TestLogger()),
	}), svc
}

func TestCatalogHandler_CreateMedicine(t *testing.T) {
	t.Run("creates_medicine_ignoring_client_id", func(t *testing.T) {
		router, svc := catalogRouter(t)
		clientID := uuid.New()
		assigned := uuid.New()
		svc.EXPECT().
			CreateMedicine(gomock.Any(), testCaller, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Principal, m *domain.Medicine) error {
				assert.Equal(t, uuid.Nil, m.ID)
				assert.Equal(t, "Ibuprofen", m.CommonName)
				m.ID = assigned
				return nil
			})

		rec := serve(t, router, http.MethodPost, "/api/v1/medicines", map[string]interface{}{
			"id": clientID, "common_name": "Ibuprofen", "approval_number": "H1001", "buy_price": "1.20", "sell_price": "2.00",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "/api/v1/medicines/"+assigned.String(), rec.Header().Get("Location"))
		assert.Equal(t, assigned.String(), decodeBody(t, rec)["id"])
	})

	t.Run("validation_error", func(t *testing.T) {
		router, svc := catalogRouter(t)
		svc.EXPECT().
			CreateMedicine(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&domain.ValidationError{Message: "approval_number is required"})

		rec := serve(t, router, http.MethodPost, "/api/v1/medicines", map[string]interface{}{"common_name": "Ibuprofen"})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "approval_number is required", decodeBody(t, rec)["error"])
	})
}

func TestCatalogHandler_GetAndList(t *testing.T) {
	medicine := helpers.CreateTestMedicine()

	tests := []struct {
		name           string
		target         string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
	}{
		{
			name:   "get_medicine",
			target: "/api/v1/medicines/" + medicine.ID.String(),
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().GetMedicine(gomock.Any(), testCaller, medicine.ID).Return(medicine, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "missing_supplier",
			target: "/api/v1/suppliers/" + medicine.ID.String(),
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					GetSupplier(gomock.Any(), gomock.Any(), medicine.ID).
					Return(nil, fmt.Errorf("supplier %s: %w", medicine.ID, domain.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "list_customers_with_search",
			target: "/api/v1/customers?search=li&limit=5",
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					ListCustomers(gomock.Any(), testCaller, "li", 5, 0).
					Return(ports.NewListResult[*domain.Customer](nil, 0, 5, 0), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "list_employees",
			target: "/api/v1/employees?page=3&limit=10",
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					ListEmployees(gomock.Any(), testCaller, 10, 20).
					Return(ports.NewListResult[*domain.Employee](nil, 0, 10, 20), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "get_customer_bad_id",
			target:         "/api/v1/customers/123",
			setupMocks:     func(m *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := catalogRouter(t)
			tt.setupMocks(svc)

			rec := serve(t, router, http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestCatalogHandler_DeleteEmployee(t *testing.T) {
	id := uuid.New()

	t.Run("deletes", func(t *testing.T) {
		router, svc := catalogRouter(t)
		svc.EXPECT().DeleteEmployee(gomock.Any(), testCaller, id).Return(nil)

		rec := serve(t, router, http.MethodDelete, "/api/v1/employees/"+id.String(), nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		router, svc := catalogRouter(t)
		svc.EXPECT().DeleteEmployee(gomock.Any(), gomock.Any(), id).Return(domain.ErrForbidden)

		rec := serve(t, router, http.MethodDelete, "/api/v1/employees/"+id.String(), nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
