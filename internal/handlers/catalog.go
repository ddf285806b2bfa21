// internal/handlers/catalog.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// CatalogHandler serves the reference data orders point at: medicines,
// suppliers, customers and employees.
type CatalogHandler struct {
	responder
	service ports.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service ports.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		responder: responder{logger: logger.With(slog.String("handler", "catalog"))},
		service:   service,
	}
}

// CreateMedicine handles POST /api/v1/medicines
func (h *CatalogHandler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var m domain.Medicine
	createEntity(h, w, r, &m, func(p domain.Principal) error {
		m.ID, m.CreatedAt, m.UpdatedAt = uuid.Nil, time.Time{}, time.Time{}
		return h.service.CreateMedicine(r.Context(), p, &m)
	}, "/api/v1/medicines/", func() uuid.UUID { return m.ID })
}

// GetMedicine handles GET /api/v1/medicines/{id}
func (h *CatalogHandler) GetMedicine(w http.ResponseWriter, r *http.Request) {
	getEntity(h, w, r, h.service.GetMedicine)
}

// ListMedicines handles GET /api/v1/medicines?search=
func (h *CatalogHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	listEntities(h, w, r, h.service.ListMedicines)
}

// CreateSupplier handles POST /api/v1/suppliers
func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var s domain.Supplier
	createEntity(h, w, r, &s, func(p domain.Principal) error {
		s.ID, s.CreatedAt, s.UpdatedAt = uuid.Nil, time.Time{}, time.Time{}
		for i := range s.Phones {
			s.Phones[i].ID, s.Phones[i].SupplierID = uuid.Nil, uuid.Nil
		}
		return h.service.CreateSupplier(r.Context(), p, &s)
	}, "/api/v1/suppliers/", func() uuid.UUID { return s.ID })
}

// GetSupplier handles GET /api/v1/suppliers/{id}
func (h *CatalogHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	getEntity(h, w, r, h.service.GetSupplier)
}

// ListSuppliers handles GET /api/v1/suppliers?search=
func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	listEntities(h, w, r, h.service.ListSuppliers)
}

// CreateCustomer handles POST /api/v1/customers
func (h *CatalogHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c domain.Customer
	createEntity(h, w, r, &c, func(p domain.Principal) error {
		c.ID, c.CreatedAt, c.UpdatedAt = uuid.Nil, time.Time{}, time.Time{}
		return h.service.CreateCustomer(r.Context(), p, &c)
	}, "/api/v1/customers/", func() uuid.UUID { return c.ID })
}

// GetCustomer handles GET /api/v1/customers/{id}
func (h *CatalogHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	getEntity(h, w, r, h.service.GetCustomer)
}

// ListCustomers handles GET /api/v1/customers?search=
func (h *CatalogHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	listEntities(h, w, r, h.service.ListCustomers)
}

// CreateEmployee handles POST /api/v1/employees
func (h *CatalogHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e domain.Employee
	createEntity(h, w, r, &e, func(p domain.Principal) error {
		e.ID, e.CreatedAt = uuid.Nil, time.Time{}
		return h.service.CreateEmployee(r.Context(), p, &e)
	}, "/api/v1/employees/", func() uuid.UUID { return e.ID })
}

// GetEmployee handles GET /api/v1/employees/{id}
func (h *CatalogHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	getEntity(h, w, r, h.service.GetEmployee)
}

// ListEmployees handles GET /api/v1/employees
func (h *CatalogHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, offset := pagination(r)

	result, err := h.service.ListEmployees(r.Context(), p, limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// DeleteEmployee handles DELETE /api/v1/employees/{id}. Orders the employee was
// responsible for are kept with no employee.
func (h *CatalogHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.DeleteEmployee(r.Context(), p, id); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "employee deleted",
		slog.String("employee_id", id.String()),
		slog.String("deleted_by", p.Username))

	w.WriteHeader(http.StatusNoContent)
}

// createEntity decodes the body into dst, runs save and answers 201 with dst
func createEntity[T any](h *CatalogHandler, w http.ResponseWriter, r *http.Request, dst *T,
	save func(domain.Principal) error, location string, id func() uuid.UUID) {

	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := decodeJSON(w, r, dst); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := save(p); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", location+id().String())
	h.respondJSON(w, http.StatusCreated, dst)
}

func getEntity[T any](h *CatalogHandler, w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, p domain.Principal, id uuid.UUID) (T, error)) {

	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	v, err := fetch(r.Context(), p, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, v)
}

func listEntities[T any](h *CatalogHandler, w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, p domain.Principal, search string, limit, offset int) (*ports.ListResult[T], error)) {

	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, offset := pagination(r)

	result, err := fetch(r.Context(), p, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
