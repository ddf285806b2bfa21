// internal/handlers/import.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/adapters/storage"
	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// TaskInspector reads the state of a queued task. *asynq.Inspector satisfies it.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

// ImportHandler accepts purchase line uploads and queues them for the worker
type ImportHandler struct {
	responder
	orders      ports.OrderService
	authz       ports.Authorizer
	storage     ports.FileStorage
	queue       ports.TaskQueue
	inspector   TaskInspector
	clock       ports.Clock
	maxFileSize int64
	timeout     time.Duration
}

// ImportConfig holds the upload limits of the import handler
type ImportConfig struct {
	MaxFileSize       int64
	ProcessingTimeout time.Duration
}

// NewImportHandler creates a new import handler
func NewImportHandler(
	orders ports.OrderService,
	authz ports.Authorizer,
	store ports.FileStorage,
	queue ports.TaskQueue,
	inspector TaskInspector,
	clock ports.Clock,
	cfg ImportConfig,
	logger *slog.Logger,
) *ImportHandler {
	return &ImportHandler{
		responder:   responder{logger: logger.With(slog.String("handler", "import"))},
		orders:      orders,
		authz:       authz,
		storage:     store,
		queue:       queue,
		inspector:   inspector,
		clock:       clock,
		maxFileSize: cfg.MaxFileSize,
		timeout:     cfg.ProcessingTimeout,
	}
}

// ImportAccepted is the 202 body of a queued import
type ImportAccepted struct {
	JobID      string             `json:"job_id"`
	OrderID    uuid.UUID          `json:"order_id"`
	Format     ports.ImportFormat `json:"format"`
	StorageKey string             `json:"storage_key"`
	Status     string             `json:"status"`
}

// ImportStatus is the body of GET /imports/{jobId}
type ImportStatus struct {
	JobID       string          `json:"job_id"`
	State       string          `json:"state"`
	Retried     int             `json:"retried"`
	LastError   string          `json:"last_error,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// ImportPurchaseLines handles POST /api/v1/orders/purchase/{id}/import.
// The multipart "file" field holds an .xlsx sheet or a supplier invoice .pdf.
func (h *ImportHandler) ImportPurchaseLines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := principal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	orderID, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.authz.IsAuthorized(ctx, p, ports.ActionOrderEdit, domain.KindPurchase) {
		h.respondError(w, r, domain.ErrForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondMessage(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
			return
		}
		h.respondError(w, r, invalid("failed to parse form data"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, invalid("file is required"))
		return
	}
	defer file.Close()

	format, contentType, err := detectFormat(header)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	order, err := h.orders.GetOrder(ctx, p, domain.KindPurchase, orderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if order.Status != domain.StatusPending {
		h.respondError(w, r, invalid("only pending orders accept imported lines, order is %s", order.Status))
		return
	}

	now := h.clock.Now()
	key := storage.ImportKey(orderID, header.Filename, now)
	if _, err := h.storage.Upload(ctx, key, file, contentType); err != nil {
		h.respondError(w, r, err)
		return
	}

	jobID := uuid.NewString()
	task, err := ports.NewTask(ports.TypePurchaseImport, ports.PurchaseImportPayload{
		JobID:      jobID,
		OrderID:    orderID,
		StorageKey: key,
		Format:     format,
		EmployeeID: p.EmployeeID,
		Username:   p.Username,
		Position:   string(p.Position),
		UploadedAt: now,
	})
	if err == nil {
		_, err = h.queue.EnqueueContext(ctx, task,
			asynq.TaskID(jobID),
			asynq.Queue(ports.QueueCritical),
			asynq.MaxRetry(3),
			asynq.Timeout(h.timeout),
			asynq.Retention(24*time.Hour))
	}
	if err != nil {
		if delErr := h.storage.Delete(ctx, key); delErr != nil {
			h.logger.WarnContext(ctx, "failed to remove orphaned upload",
				slog.String("storage_key", key),
				slog.String("error", delErr.Error()))
		}
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "purchase import queued",
		slog.String("job_id", jobID),
		slog.String("order_id", orderID.String()),
		slog.String("format", string(format)),
		slog.Int64("size", header.Size))

	h.respondJSON(w, http.StatusAccepted, ImportAccepted{
		JobID:      jobID,
		OrderID:    orderID,
		Format:     format,
		StorageKey: key,
		Status:     "queued",
	})
}

// GetImportStatus handles GET /api/v1/imports/{jobId}
func (h *ImportHandler) GetImportStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		h.respondError(w, r, err)
		return
	}
	jobID := r.PathValue("jobId")

	info, err := h.inspector.GetTaskInfo(ports.QueueCritical, jobID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			h.respondError(w, r, errors.Join(errors.New("import job "+jobID), domain.ErrNotFound))
			return
		}
		h.respondError(w, r, err)
		return
	}

	status := ImportStatus{
		JobID:     jobID,
		State:     info.State.String(),
		Retried:   info.Retried,
		LastError: info.LastErr,
	}
	if !info.CompletedAt.IsZero() {
		completed := info.CompletedAt
		status.CompletedAt = &completed
	}
	if json.Valid(info.Result) {
		status.Result = info.Result
	}

	h.respondJSON(w, http.StatusOK, status)
}

// detectFormat picks the parser from the file extension, falling back to the
// declared content type
func detectFormat(header *multipart.FileHeader) (ports.ImportFormat, string, error) {
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		return ports.ImportXLSX, contentTypeXLSX, nil
	case ".pdf":
		return ports.ImportPDF, contentTypePDF, nil
	}
	switch header.Header.Get("Content-Type") {
	case contentTypeXLSX:
		return ports.ImportXLSX, contentTypeXLSX, nil
	case contentTypePDF:
		return ports.ImportPDF, contentTypePDF, nil
	}
	return "", "", invalid("only .xlsx and .pdf files can be imported")
}
