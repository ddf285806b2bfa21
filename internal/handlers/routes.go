// internal/handlers/routes.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/pharmacy-be/internal/handlers/middleware"
)

const apiV1 = "/api/v1"

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Orders    *OrderHandler
	Inventory *InventoryHandler
	Catalog   *CatalogHandler
	Import    *ImportHandler
	Export    *ExportHandler
	Health    *HealthHandler
}

// NewRouter registers all routes. Health endpoints are public; everything
// else under /api/v1 requires a bearer token.
func NewRouter(h Handlers, tokens middleware.TokenValidator, logger *slog.Logger) *http.ServeMux {
	root := http.NewServeMux()

	if h.Health != nil {
		root.HandleFunc("GET /health", h.Health.Health)
		root.HandleFunc("GET /health/live", h.Health.Liveness)
		root.HandleFunc("GET /health/ready", h.Health.Readiness)
		root.HandleFunc("GET "+apiV1+"/health", h.Health.Health)
	}

	api := http.NewServeMux()
	registerOrderRoutes(api, h)
	registerInventoryRoutes(api, h)
	registerCatalogRoutes(api, h)

	root.Handle(apiV1+"/", middleware.Authenticate(tokens, logger)(api))
	return root
}

func registerOrderRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("POST "+apiV1+"/orders/{kind}", h.Orders.CreateOrder)
	mux.HandleFunc("GET "+apiV1+"/orders/{kind}", h.Orders.ListOrders)
	mux.HandleFunc("GET "+apiV1+"/orders/{kind}/{id}", h.Orders.GetOrder)
	mux.HandleFunc("POST "+apiV1+"/orders/{kind}/{id}/lines", h.Orders.AddLine)
	mux.HandleFunc("PUT "+apiV1+"/orders/{kind}/{id}/lines/{lineId}", h.Orders.UpdateLine)
	mux.HandleFunc("DELETE "+apiV1+"/orders/{kind}/{id}/lines/{lineId}", h.Orders.RemoveLine)
	mux.HandleFunc("PUT "+apiV1+"/orders/{kind}/{id}/status", h.Orders.SetStatus)

	if h.Import != nil {
		mux.HandleFunc("POST "+apiV1+"/orders/purchase/{id}/import", h.Import.ImportPurchaseLines)
		mux.HandleFunc("GET "+apiV1+"/imports/{jobId}", h.Import.GetImportStatus)
	}
}

func registerInventoryRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET "+apiV1+"/inventory/level", h.Inventory.GetLevel)
	mux.HandleFunc("GET "+apiV1+"/inventory", h.Inventory.ListInventory)
	mux.HandleFunc("POST "+apiV1+"/inventory", h.Inventory.CreateInventory)
	mux.HandleFunc("GET "+apiV1+"/inventory/{id}", h.Inventory.GetInventory)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{id}", h.Inventory.DeleteInventory)
	mux.HandleFunc("GET "+apiV1+"/inventory/{id}/movements", h.Inventory.ListMovements)

	if h.Export != nil {
		mux.HandleFunc("GET "+apiV1+"/inventory/export", h.Export.ExportInventory)
	}
}

func registerCatalogRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("POST "+apiV1+"/medicines", h.Catalog.CreateMedicine)
	mux.HandleFunc("GET "+apiV1+"/medicines", h.Catalog.ListMedicines)
	mux.HandleFunc("GET "+apiV1+"/medicines/{id}", h.Catalog.GetMedicine)

	mux.HandleFunc("POST "+apiV1+"/suppliers", h.Catalog.CreateSupplier)
	mux.HandleFunc("GET "+apiV1+"/suppliers", h.Catalog.ListSuppliers)
	mux.HandleFunc("GET "+apiV1+"/suppliers/{id}", h.Catalog.GetSupplier)

	mux.HandleFunc("POST "+apiV1+"/customers", h.Catalog.CreateCustomer)
	mux.HandleFunc("GET "+apiV1+"/customers", h.Catalog.ListCustomers)
	mux.HandleFunc("GET "+apiV1+"/customers/{id}", h.Catalog.GetCustomer)

	mux.HandleFunc("POST "+apiV1+"/employees", h.Catalog.CreateEmployee)
	mux.HandleFunc("GET "+apiV1+"/employees", h.Catalog.ListEmployees)
	mux.HandleFunc("GET "+apiV1+"/employees/{id}", h.Catalog.GetEmployee)
	mux.HandleFunc("DELETE "+apiV1+"/employees/{id}", h.Catalog.DeleteEmployee)
}
