// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// exportPageSize is how many records one ListInventory call fetches
const exportPageSize = 100

var exportHeaders = []string{
	"Inventory ID", "Medicine ID", "Common Name", "Specification", "Manufacturer",
	"Approval Number", "Batch Number", "Expiry Date", "Quantity", "Updated At",
}

// ExportHandler writes the inventory ledger out as a spreadsheet
type ExportHandler struct {
	responder
	inventory ports.InventoryService
	catalog   ports.CatalogService
	clock     ports.Clock
}

// NewExportHandler creates a new export handler
func NewExportHandler(inventory ports.InventoryService, catalog ports.CatalogService, clock ports.Clock, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		responder: responder{logger: logger.With(slog.String("handler", "export"))},
		inventory: inventory,
		catalog:   catalog,
		clock:     clock,
	}
}

// ExportInventory handles GET /api/v1/inventory/export. It accepts the same
// filters as the inventory list and ignores paging.
func (h *ExportHandler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	records, err := h.collectRecords(ctx, p, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	medicines := h.lookupMedicines(ctx, p, records)

	data, err := h.generateExcelFile(records, medicines)
	if err != nil {
		h.respondError(w, r, fmt.Errorf("generate inventory workbook: %w", err))
		return
	}

	filename := fmt.Sprintf("inventory_export_%s.xlsx", h.clock.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write export response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "inventory export completed",
		slog.Int("total_rows", len(records)),
		slog.String("filename", filename))
}

// collectRecords pages through ListInventory until every match is read
func (h *ExportHandler) collectRecords(ctx context.Context, p domain.Principal, params ports.InventoryListParams) ([]*domain.InventoryRecord, error) {
	params.Limit, params.Offset = exportPageSize, 0

	var records []*domain.InventoryRecord
	for {
		page, err := h.inventory.ListInventory(ctx, p, params)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Items...)
		if len(page.Items) < exportPageSize || int64(len(records)) >= page.TotalCount {
			return records, nil
		}
		params.Offset += exportPageSize
	}
}

// lookupMedicines resolves each distinct medicine once. A medicine the caller
// cannot see or that has gone missing leaves its columns blank.
func (h *ExportHandler) lookupMedicines(ctx context.Context, p domain.Principal, records []*domain.InventoryRecord) map[uuid.UUID]*domain.Medicine {
	medicines := make(map[uuid.UUID]*domain.Medicine)
	for _, rec := range records {
		if _, seen := medicines[rec.MedicineID]; seen {
			continue
		}
		m, err := h.catalog.GetMedicine(ctx, p, rec.MedicineID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrForbidden) {
			h.logger.WarnContext(ctx, "failed to load medicine for export",
				slog.String("medicine_id", rec.MedicineID.String()),
				slog.String("error", err.Error()))
		}
		medicines[rec.MedicineID] = m
	}
	return medicines
}

// generateExcelFile creates an Excel file in memory from the records
func (h *ExportHandler) generateExcelFile(records []*domain.InventoryRecord, medicines map[uuid.UUID]*domain.Medicine) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range exportHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, rec := range records {
		row := sheet.AddRow()
		for _, value := range recordToExcelRow(rec, medicines[rec.MedicineID]) {
			row.AddCell().Value = value
		}
		row.GetCell(8).SetInt(rec.Quantity)
	}

	for i := 1; i <= len(exportHeaders); i++ {
		sheet.SetColWidth(i, i, 18)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}

func recordToExcelRow(rec *domain.InventoryRecord, m *domain.Medicine) []string {
	var name, spec, manufacturer, approval string
	if m != nil {
		name, spec, manufacturer, approval = m.CommonName, m.Specification, m.Manufacturer, m.ApprovalNumber
	}
	return []string{
		rec.ID.String(),
		rec.MedicineID.String(),
		name,
		spec,
		manufacturer,
		approval,
		rec.BatchNumber,
		rec.ExpiryDate.Format(time.DateOnly),
		strconv.Itoa(rec.Quantity),
		rec.UpdatedAt.Format(time.DateTime),
	}
}
