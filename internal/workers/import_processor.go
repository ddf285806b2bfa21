// internal/workers/import_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// MedicineFinder resolves the medicine an imported row names.
// *db.CatalogRepository satisfies it; a nil medicine means no match.
type MedicineFinder interface {
	FindMedicineByApprovalNumber(ctx context.Context, approvalNumber string) (*domain.Medicine, error)
}

// RowFailure is one imported row that did not become an order line
type RowFailure struct {
	Row            int    `json:"row"`
	ApprovalNumber string `json:"approval_number,omitempty"`
	BatchNumber    string `json:"batch_number,omitempty"`
	Error          string `json:"error"`
}

// ImportReport is written as the task result of a purchase import
type ImportReport struct {
	JobID          string       `json:"job_id"`
	OrderID        string       `json:"order_id"`
	RowsRead       int          `json:"rows_read"`
	Imported       int          `json:"imported"`
	Failed         []RowFailure `json:"failed"`
	ProcessingTime string       `json:"processing_time"`
}

// PurchaseImportProcessor turns an uploaded sheet or invoice into lines of a
// pending purchase order.
type PurchaseImportProcessor struct {
	orders    ports.OrderService
	medicines MedicineFinder
	storage   ports.FileStorage
	logger    *slog.Logger
}

// NewPurchaseImportProcessor creates a new purchase import processor
func NewPurchaseImportProcessor(orders ports.OrderService, medicines MedicineFinder, storage ports.FileStorage, logger *slog.Logger) *PurchaseImportProcessor {
	return &PurchaseImportProcessor{
		orders:    orders,
		medicines: medicines,
		storage:   storage,
		logger:    logger.With(slog.String("processor", "purchase_import")),
	}
}

// ProcessImport handles purchase:import tasks. Every parsed row is added
// through the order service as the uploading employee, so authorization and
// total recalculation apply per line. Failed rows are reported, not retried;
// the order is never approved here.
func (p *PurchaseImportProcessor) ProcessImport(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ports.PurchaseImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	principal := payload.Principal()

	p.logger.InfoContext(ctx, "processing purchase import",
		slog.String("job_id", payload.JobID),
		slog.String("order_id", payload.OrderID.String()),
		slog.String("format", string(payload.Format)))

	order, err := p.orders.GetOrder(ctx, principal, domain.KindPurchase, payload.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load purchase order %s: %w", payload.OrderID, err)
	}
	if order.Status != domain.StatusPending {
		return fmt.Errorf("purchase order %s is %s: %w", payload.OrderID, order.Status, asynq.SkipRetry)
	}

	data, err := p.storage.Download(ctx, payload.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", payload.StorageKey, err)
	}

	rows, err := parseUpload(payload.Format, data)
	if err != nil {
		return fmt.Errorf("failed to parse %s upload: %v: %w", payload.Format, err, asynq.SkipRetry)
	}

	report := ImportReport{
		JobID:    payload.JobID,
		OrderID:  payload.OrderID.String(),
		RowsRead: len(rows),
		Failed:   []RowFailure{},
	}
	for _, row := range rows {
		if err := p.importRow(ctx, principal, payload, row); err != nil {
			report.Failed = append(report.Failed, RowFailure{
				Row:            row.Row,
				ApprovalNumber: row.ApprovalNumber,
				BatchNumber:    row.BatchNumber,
				Error:          err.Error(),
			})
			continue
		}
		report.Imported++
	}
	report.ProcessingTime = time.Since(start).String()

	if err := p.writeResult(t, report); err != nil {
		p.logger.WarnContext(ctx, "failed to write import report",
			slog.String("job_id", payload.JobID),
			slog.String("error", err.Error()))
	}

	if err := p.storage.Delete(ctx, payload.StorageKey); err != nil {
		p.logger.WarnContext(ctx, "failed to remove processed upload",
			slog.String("storage_key", payload.StorageKey),
			slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "purchase import completed",
		slog.String("job_id", payload.JobID),
		slog.Int("rows_read", report.RowsRead),
		slog.Int("imported", report.Imported),
		slog.Int("failed", len(report.Failed)))

	return nil
}

func (p *PurchaseImportProcessor) importRow(ctx context.Context, principal domain.Principal, payload ports.PurchaseImportPayload, row ImportRow) error {
	if row.Err != nil {
		return row.Err
	}

	medicine, err := p.medicines.FindMedicineByApprovalNumber(ctx, row.ApprovalNumber)
	if err != nil {
		return err
	}
	if medicine == nil {
		return fmt.Errorf("no medicine with approval number %q", row.ApprovalNumber)
	}

	line := &domain.PurchaseLine{
		LineBase:    domain.LineBase{Quantity: row.Quantity},
		MedicineID:  medicine.ID,
		BatchNumber: row.BatchNumber,
		ProduceDate: row.ProduceDate,
		ExpiryDate:  row.ExpiryDate,
		UnitPrice:   row.UnitPrice,
	}
	_, err = p.orders.AddLineItem(ctx, principal, domain.KindPurchase, payload.OrderID, line)
	return err
}

// writeResult stores the report with the task. Tasks built outside a server
// have no result writer.
func (p *PurchaseImportProcessor) writeResult(t *asynq.Task, report ImportReport) error {
	rw := t.ResultWriter()
	if rw == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = rw.Write(data)
	return err
}

func parseUpload(format ports.ImportFormat, data []byte) ([]ImportRow, error) {
	switch format {
	case ports.ImportXLSX:
		return ParseXLSX(data)
	case ports.ImportPDF:
		return ParsePDF(data)
	}
	return nil, fmt.Errorf("unsupported import format %q", format)
}
