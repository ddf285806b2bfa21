// internal/handlers/inventory.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

const defaultMovementLimit = 50

// InventoryHandler handles inventory-related HTTP requests. Quantities are
// read here but only ever changed by approving orders.
type InventoryHandler struct {
	responder
	service ports.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		responder: responder{logger: logger.With(slog.String("handler", "inventory"))},
		service:   service,
	}
}

// CreateInventoryRequest represents the request body for creating an inventory record
type CreateInventoryRequest struct {
	MedicineID  uuid.UUID `json:"medicine_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  string    `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
}

// Validate validates the create inventory request
func (r *CreateInventoryRequest) Validate() error {
	if r.MedicineID == uuid.Nil {
		return invalid("medicine_id is required")
	}
	if r.BatchNumber == "" {
		return invalid("batch_number is required")
	}
	if r.ExpiryDate == "" {
		return invalid("expiry_date is required")
	}
	if _, err := parseDate(r.ExpiryDate); err != nil {
		return invalid("expiry_date must be a date (YYYY-MM-DD)")
	}
	if r.Quantity < 0 {
		return invalid("quantity cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *CreateInventoryRequest) ToDomain() *domain.InventoryRecord {
	expiry, _ := parseDate(r.ExpiryDate)
	return &domain.InventoryRecord{
		MedicineID:  r.MedicineID,
		BatchNumber: r.BatchNumber,
		ExpiryDate:  expiry,
		Quantity:    r.Quantity,
	}
}

// LevelResponse is the body of GET /inventory/level
type LevelResponse struct {
	MedicineID  uuid.UUID `json:"medicine_id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
}

// GetLevel handles GET /api/v1/inventory/level?medicine_id=&batch_number=
func (h *InventoryHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	medicineID, err := queryUUID(r, "medicine_id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if medicineID == nil {
		h.respondError(w, r, invalid("medicine_id is required"))
		return
	}
	key := domain.StockKey{MedicineID: *medicineID, BatchNumber: r.URL.Query().Get("batch_number")}

	qty, err := h.service.GetInventoryLevel(r.Context(), p, key)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, LevelResponse{
		MedicineID:  key.MedicineID,
		BatchNumber: key.BatchNumber,
		Quantity:    qty,
	})
}

// GetInventory handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.recordRoute(w, r)
	if !ok {
		return
	}

	rec, err := h.service.GetInventoryRecord(r.Context(), p, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, rec)
}

// ListInventory handles GET /api/v1/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	params, err := parseInventoryListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.ListInventory(r.Context(), p, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// CreateInventory handles POST /api/v1/inventory
func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req CreateInventoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	rec := req.ToDomain()
	if err := h.service.CreateInventoryRecord(ctx, p, rec); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "inventory record created",
		slog.String("inventory_id", rec.ID.String()),
		slog.String("batch_number", rec.BatchNumber))

	w.Header().Set("Location", "/api/v1/inventory/"+rec.ID.String())
	h.respondJSON(w, http.StatusCreated, rec)
}

// DeleteInventory handles DELETE /api/v1/inventory/{id}. Order lines that
// pointed at the record keep their snapshot and lose the reference.
func (h *InventoryHandler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.recordRoute(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteInventoryRecord(r.Context(), p, id); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMovements handles GET /api/v1/inventory/{id}/movements
func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.recordRoute(w, r)
	if !ok {
		return
	}

	limit := defaultMovementLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxPageSize)
	}

	movements, err := h.service.ListMovements(r.Context(), p, id, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if movements == nil {
		movements = []*domain.StockMovement{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"inventory_id": id,
		"movements":    movements,
	})
}

func (h *InventoryHandler) recordRoute(w http.ResponseWriter, r *http.Request) (domain.Principal, uuid.UUID, bool) {
	p, err := principal(r)
	if err == nil {
		var id uuid.UUID
		if id, err = pathUUID(r, "id"); err == nil {
			return p, id, true
		}
	}
	h.respondError(w, r, err)
	return domain.Principal{}, uuid.Nil, false
}

// parseInventoryListParams parses query parameters for listing inventory
func parseInventoryListParams(r *http.Request) (ports.InventoryListParams, error) {
	params := ports.InventoryListParams{
		BatchNumber: r.URL.Query().Get("batch_number"),
		SortBy:      r.URL.Query().Get("sort"),
		SortOrder:   r.URL.Query().Get("order"),
	}

	var err error
	if params.MedicineID, err = queryUUID(r, "medicine_id"); err != nil {
		return params, err
	}
	if params.MaxQuantity, err = queryInt(r, "max_quantity"); err != nil {
		return params, err
	}
	if params.ExpiresBefore, err = queryDate(r, "expires_before"); err != nil {
		return params, err
	}
	params.Limit, params.Offset = pagination(r)
	return params, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
