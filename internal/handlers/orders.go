// internal/handlers/orders.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// OrderHandler handles order HTTP requests for all four order kinds.
// The kind is the {kind} path segment.
type OrderHandler struct {
	responder
	service ports.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service ports.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		responder: responder{logger: logger.With(slog.String("handler", "order"))},
		service:   service,
	}
}

// CreateOrderRequest is the body of POST /orders/{kind}. Purchase-family orders
// name a supplier, sales-family orders a customer; counterparty_id works for both.
type CreateOrderRequest struct {
	CounterpartyID *uuid.UUID `json:"counterparty_id,omitempty"`
	SupplierID     *uuid.UUID `json:"supplier_id,omitempty"`
	CustomerID     *uuid.UUID `json:"customer_id,omitempty"`
	EmployeeID     *uuid.UUID `json:"employee_id,omitempty"`
	OrderDate      *time.Time `json:"order_date,omitempty"`
}

// ToInput resolves the counterparty for kind
func (req *CreateOrderRequest) ToInput(kind domain.OrderKind) (ports.CreateOrderInput, error) {
	in := ports.CreateOrderInput{Kind: kind, EmployeeID: req.EmployeeID, OrderDate: req.OrderDate}

	counterparty := req.CounterpartyID
	if kind.CounterpartyIsSupplier() {
		if req.CustomerID != nil {
			return in, invalid("%s orders are placed with a supplier, not a customer", kind)
		}
		if counterparty == nil {
			counterparty = req.SupplierID
		}
	} else {
		if req.SupplierID != nil {
			return in, invalid("%s orders are placed with a customer, not a supplier", kind)
		}
		if counterparty == nil {
			counterparty = req.CustomerID
		}
	}
	if counterparty != nil {
		in.CounterpartyID = *counterparty
	}
	return in, nil
}

// SetStatusRequest is the body of PUT /orders/{kind}/{id}/status
type SetStatusRequest struct {
	Status string `json:"status"`
}

// CreateOrder handles POST /api/v1/orders/{kind}
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	kind, err := pathKind(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	in, err := req.ToInput(kind)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := h.service.CreateOrderHeader(ctx, p, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/orders/"+string(kind)+"/"+id.String())
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     id,
		"kind":   kind,
		"status": domain.StatusPending,
	})
}

// ListOrders handles GET /api/v1/orders/{kind}
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	params, err := h.parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.ListOrders(r.Context(), p, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetOrder handles GET /api/v1/orders/{kind}/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, kind, orderID, ok := h.orderRoute(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetOrder(r.Context(), p, kind, orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, detail)
}

// AddLine handles POST /api/v1/orders/{kind}/{id}/lines
func (h *OrderHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	p, kind, orderID, ok := h.orderRoute(w, r)
	if !ok {
		return
	}

	line, err := decodeLine(w, r, kind)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	lineID, err := h.service.AddLineItem(r.Context(), p, kind, orderID, line)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+lineID.String())
	h.respondJSON(w, http.StatusCreated, line)
}

// UpdateLine handles PUT /api/v1/orders/{kind}/{id}/lines/{lineId}. A line
// that belongs to another order answers 404.
func (h *OrderHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	p, kind, orderID, ok := h.orderRoute(w, r)
	if !ok {
		return
	}
	lineID, err := pathUUID(r, "lineId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	line, err := decodeLine(w, r, kind)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	b := line.Base()
	b.ID, b.OrderID = lineID, orderID

	if err := h.service.UpdateLineItem(r.Context(), p, kind, line); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, line)
}

// RemoveLine handles DELETE /api/v1/orders/{kind}/{id}/lines/{lineId}
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	p, kind, orderID, ok := h.orderRoute(w, r)
	if !ok {
		return
	}
	lineID, err := pathUUID(r, "lineId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.RemoveLineItem(r.Context(), p, kind, orderID, lineID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PUT /api/v1/orders/{kind}/{id}/status. Moving an order to
// approved applies its stock effects; a shortage answers 409.
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, kind, orderID, ok := h.orderRoute(w, r)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.SetOrderStatus(ctx, p, kind, orderID, status); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     orderID,
		"kind":   kind,
		"status": status,
	})
}

// orderRoute reads the caller, {kind} and {id}; on failure it has already responded
func (h *OrderHandler) orderRoute(w http.ResponseWriter, r *http.Request) (domain.Principal, domain.OrderKind, uuid.UUID, bool) {
	p, err := principal(r)
	if err == nil {
		var kind domain.OrderKind
		if kind, err = pathKind(r); err == nil {
			var id uuid.UUID
			if id, err = pathUUID(r, "id"); err == nil {
				return p, kind, id, true
			}
		}
	}
	h.respondError(w, r, err)
	return domain.Principal{}, "", uuid.Nil, false
}

func (h *OrderHandler) parseListParams(r *http.Request) (ports.OrderListParams, error) {
	var params ports.OrderListParams
	var err error

	if params.Kind, err = pathKind(r); err != nil {
		return params, err
	}
	params.Status = domain.OrderStatus(r.URL.Query().Get("status"))
	if params.CounterpartyID, err = queryUUID(r, "counterparty_id"); err != nil {
		return params, err
	}
	if params.EmployeeID, err = queryUUID(r, "employee_id"); err != nil {
		return params, err
	}
	if params.From, err = queryDate(r, "from"); err != nil {
		return params, err
	}
	if params.To, err = queryDate(r, "to"); err != nil {
		return params, err
	}
	params.Limit, params.Offset = pagination(r)
	return params, nil
}

// decodeLine decodes the body into the line type of kind
func decodeLine(w http.ResponseWriter, r *http.Request, kind domain.OrderKind) (domain.Line, error) {
	line, err := domain.NewLine(kind)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(w, r, line); err != nil {
		return nil, err
	}
	return line, nil
}
