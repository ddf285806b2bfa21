// internal/handlers/orders_test.go
package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/handlers"
	"github.com/ammerola/pharmacy-be/test/helpers"
	"github.com/ammerola/pharmacy-be/test/mocks"
)

func orderRouter(t *testing.T) (http.Handler, *mocks.MockOrderService) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockOrderService(ctrl)
	return newTestRouter(handlers.Handlers{
		Orders:    handlers.NewOrderHandler(svc, helpers.TestLogger()),
		Inventory: handlers.NewInventoryHandler(mocks.NewMockInventoryService(ctrl), helpers.TestLogger()),
		Catalog:   handlers.NewCatalogHandler(mocks.NewMockCatalogService(ctrl), helpers.TestLogger()),
	}), svc
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	orderID := uuid.New()
	supplierID := uuid.New()
	customerID := uuid.New()

	tests := []struct {
		name           string
		kind           string
		body           interface{}
		setupMocks     func(*mocks.MockOrderService)
		expectedStatus int
	}{
		{
			name: "creates_purchase_order_for_supplier",
			kind: "purchase",
			body: map[string]interface{}{"supplier_id": supplierID},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					CreateOrderHeader(gomock.Any(), testCaller, ports.CreateOrderInput{
						Kind:           domain.KindPurchase,
						CounterpartyID: supplierID,
					}).
					Return(orderID, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "creates_sale_order_with_counterparty_id",
			kind: "sale",
			body: map[string]interface{}{"counterparty_id": customerID},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					CreateOrderHeader(gomock.Any(), testCaller, ports.CreateOrderInput{
						Kind:           domain.KindSale,
						CounterpartyID: customerID,
					}).
					Return(orderID, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "rejects_customer_on_purchase_order",
			kind:           "purchase",
			body:           map[string]interface{}{"customer_id": customerID},
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_unknown_kind",
			kind:           "transfer",
			body:           map[string]interface{}{"counterparty_id": customerID},
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_unknown_fields",
			kind:           "sale",
			body:           `{"counterparty_id":"` + customerID.String() + `","total_amount":"5"}`,
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "forbidden_caller",
			kind: "sale_return",
			body: map[string]interface{}{"customer_id": customerID},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					CreateOrderHeader(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(uuid.Nil, fmt.Errorf("create sale_return order: %w", domain.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := orderRouter(t)
			tt.setupMocks(svc)

			rec := serve(t, router, http.MethodPost, "/api/v1/orders/"+tt.kind, tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedStatus == http.StatusCreated {
				body := decodeBody(t, rec)
				assert.Equal(t, orderID.String(), body["id"])
				assert.Equal(t, "pending", body["status"])
				assert.Equal(t, "/api/v1/orders/"+tt.kind+"/"+orderID.String(), rec.Header().Get("Location"))
			}
		})
	}
}

func TestOrderHandler_SetStatus(t *testing.T) {
	orderID := uuid.New()
	inventoryID := uuid.New()

	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(*mocks.MockOrderService)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name: "approves_order",
			body: map[string]string{"status": "approved"},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					SetOrderStatus(gomock.Any(), testCaller, domain.KindSale, orderID, domain.StatusApproved).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "approved", body["status"])
			},
		},
		{
			name: "insufficient_stock_reports_shortage",
			body: map[string]string{"status": "approved"},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					SetOrderStatus(gomock.Any(), gomock.Any(), domain.KindSale, orderID, domain.StatusApproved).
					Return(fmt.Errorf("approve sale order: %w", &domain.InsufficientStockError{
						InventoryID: inventoryID, Requested: 3, Available: 1,
					}))
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "insufficient_stock", body["code"])
				assert.Equal(t, inventoryID.String(), body["inventory_id"])
				assert.EqualValues(t, 3, body["requested"])
				assert.EqualValues(t, 1, body["available"])
			},
		},
		{
			name: "deleted_inventory_is_data_integrity",
			body: map[string]string{"status": "approved"},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					SetOrderStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&domain.DataIntegrityError{Entity: "inventory", Reason: "line has no inventory reference"})
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "data_integrity", body["code"])
			},
		},
		{
			name:           "unknown_status",
			body:           map[string]string{"status": "shipped"},
			setupMocks:     func(m *mocks.MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "order_not_found",
			body: map[string]string{"status": "cancelled"},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					SetOrderStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), domain.StatusCancelled).
					Return(fmt.Errorf("sale order %s: %w", orderID, domain.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "unexpected_error_is_hidden",
			body: map[string]string{"status": "approved"},
			setupMocks: func(m *mocks.MockOrderService) {
				m.EXPECT().
					SetOrderStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "internal server error", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := orderRouter(t)
			tt.setupMocks(svc)

			rec := serve(t, router, http.MethodPut, "/api/v1/orders/sale/"+orderID.String()+"/status", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.validateBody != nil {
				tt.validateBody(t, decodeBody(t, rec))
			}
		})
	}
}

func TestOrderHandler_AddLine(t *testing.T) {
	orderID := uuid.New()
	inventoryID := uuid.New()
	lineID := uuid.New()

	t.Run("adds_sales_line", func(t *testing.T) {
		router, svc := orderRouter(t)
		svc.EXPECT().
			AddLineItem(gomock.Any(), testCaller, domain.KindSale, orderID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Principal, _ domain.OrderKind, _ uuid.UUID, line domain.Line) (uuid.UUID, error) {
				sl, ok := line.(*domain.SalesLine)
				require.True(t, ok)
				require.NotNil(t, sl.InventoryID)
				assert.Equal(t, inventoryID, *sl.InventoryID)
				assert.Equal(t, 3, sl.Quantity)
				assert.True(t, decimal.RequireFromString("18.50").Equal(sl.ActualPrice))
				sl.ID = lineID
				return lineID, nil
			})

		rec := serve(t, router, http.MethodPost, "/api/v1/orders/sale/"+orderID.String()+"/lines",
			`{"inventory_id":"`+inventoryID.String()+`","quantity":3,"actual_price":"18.50"}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "/api/v1/orders/sale/"+orderID.String()+"/lines/"+lineID.String(), rec.Header().Get("Location"))
		assert.Equal(t, lineID.String(), decodeBody(t, rec)["id"])
	})

	t.Run("rejects_fields_of_another_kind", func(t *testing.T) {
		router, _ := orderRouter(t)

		rec := serve(t, router, http.MethodPost, "/api/v1/orders/sale/"+orderID.String()+"/lines",
			`{"medicine_id":"`+uuid.NewString()+`","quantity":3}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid_order_id", func(t *testing.T) {
		router, _ := orderRouter(t)

		rec := serve(t, router, http.MethodPost, "/api/v1/orders/sale/not-a-uuid/lines", `{"quantity":1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation", decodeBody(t, rec)["code"])
	})
}

func TestOrderHandler_UpdateAndRemoveLine(t *testing.T) {
	orderID := uuid.New()
	lineID := uuid.New()
	medicineID := uuid.New()

	t.Run("update_takes_ids_from_path", func(t *testing.T) {
		router, svc := orderRouter(t)
		svc.EXPECT().
			UpdateLineItem(gomock.Any(), testCaller, domain.KindPurchase, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Principal, _ domain.OrderKind, line domain.Line) error {
				assert.Equal(t, lineID, line.Base().ID)
				assert.Equal(t, orderID, line.Base().OrderID)
				return nil
			})

		rec := serve(t, router, http.MethodPut,
			"/api/v1/orders/purchase/"+orderID.String()+"/lines/"+lineID.String(),
			`{"medicine_id":"`+medicineID.String()+`","batch_number":"B2","quantity":20,"unit_price":"5.00",`+
				`"produce_date":"2024-01-01T00:00:00Z","expiry_date":"2026-01-01T00:00:00Z"}`)

		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("remove_answers_no_content", func(t *testing.T) {
		router, svc := orderRouter(t)
		svc.EXPECT().
			RemoveLineItem(gomock.Any(), testCaller, domain.KindPurchase, orderID, lineID).
			Return(nil)

		rec := serve(t, router, http.MethodDelete,
			"/api/v1/orders/purchase/"+orderID.String()+"/lines/"+lineID.String(), nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("line_of_another_order_is_not_found", func(t *testing.T) {
		otherOrder := uuid.New()
		router, svc := orderRouter(t)
		missing := fmt.Errorf("purchase line %s: %w", lineID, domain.ErrNotFound)
		svc.EXPECT().
			UpdateLineItem(gomock.Any(), testCaller, domain.KindPurchase, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Principal, _ domain.OrderKind, line domain.Line) error {
				assert.Equal(t, otherOrder, line.Base().OrderID)
				return missing
			})
		svc.EXPECT().
			RemoveLineItem(gomock.Any(), testCaller, domain.KindPurchase, otherOrder, lineID).
			Return(missing)

		path := "/api/v1/orders/purchase/" + otherOrder.String() + "/lines/" + lineID.String()
		rec := serve(t, router, http.MethodPut, path,
			`{"medicine_id":"`+medicineID.String()+`","batch_number":"B2","quantity":20,"unit_price":"5.00",`+
				`"produce_date":"2024-01-01T00:00:00Z","expiry_date":"2026-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

		rec = serve(t, router, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOrderHandler_GetAndList(t *testing.T) {
	order := helpers.CreateTestOrder(domain.KindPurchase, func(o *domain.Order) {
		o.TotalAmount = decimal.RequireFromString("100.00")
	})

	t.Run("get_returns_lines", func(t *testing.T) {
		router, svc := orderRouter(t)
		line := helpers.NewPurchaseLine(uuid.New(), "B2", 20, "5.00")
		svc.EXPECT().
			GetOrder(gomock.Any(), testCaller, domain.KindPurchase, order.ID).
			Return(&domain.OrderDetail{Order: *order, Lines: []domain.Line{line}}, nil)

		rec := serve(t, router, http.MethodGet, "/api/v1/orders/purchase/"+order.ID.String(), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "100", body["total_amount"])
		assert.Len(t, body["lines"], 1)
	})

	t.Run("list_parses_filters", func(t *testing.T) {
		router, svc := orderRouter(t)
		svc.EXPECT().
			ListOrders(gomock.Any(), testCaller, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Principal, params ports.OrderListParams) (*ports.ListResult[*domain.Order], error) {
				assert.Equal(t, domain.KindPurchase, params.Kind)
				assert.Equal(t, domain.StatusPending, params.Status)
				require.NotNil(t, params.From)
				assert.Equal(t, "2024-03-01", params.From.Format("2006-01-02"))
				assert.Equal(t, 10, params.Limit)
				assert.Equal(t, 10, params.Offset)
				return ports.NewListResult([]*domain.Order{order}, 11, params.Limit, params.Offset), nil
			})

		rec := serve(t, router, http.MethodGet, "/api/v1/orders/purchase?status=pending&from=2024-03-01&limit=10&page=2", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.EqualValues(t, 2, body["page"])
		assert.EqualValues(t, 11, body["total_count"])
	})

	t.Run("list_rejects_bad_date", func(t *testing.T) {
		router, _ := orderRouter(t)

		rec := serve(t, router, http.MethodGet, "/api/v1/orders/purchase?from=yesterday", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_RequiresToken(t *testing.T) {
	router, _ := orderRouter(t)

	req := func(auth string) int {
		r, _ := http.NewRequest(http.MethodGet, "/api/v1/orders/sale", nil)
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, req(""))
	assert.Equal(t, http.StatusUnauthorized, req("Bearer wrong"))
}
