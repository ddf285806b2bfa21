// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/handlers/middleware"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

// errUnauthenticated is returned when a route that needs a caller has none
var errUnauthenticated = errors.New("unauthenticated")

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// InsufficientStockResponse is the 409 body of a rejected approval
type InsufficientStockResponse struct {
	Error       string    `json:"error"`
	Code        string    `json:"code"`
	InventoryID uuid.UUID `json:"inventory_id"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// responder holds the JSON helpers shared by every handler
type responder struct {
	logger *slog.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h responder) respondMessage(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}

// respondError maps a service error onto its HTTP status
func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if shortage, ok := domain.IsInsufficientStock(err); ok {
		h.respondJSON(w, http.StatusConflict, InsufficientStockResponse{
			Error:       "insufficient stock",
			Code:        "insufficient_stock",
			InventoryID: shortage.InventoryID,
			Requested:   shortage.Requested,
			Available:   shortage.Available,
		})
		return
	}

	var dup *domain.DuplicateBatchError
	if errors.As(err, &dup) {
		h.respondJSON(w, http.StatusConflict, ErrorResponse{Error: dup.Error(), Code: "duplicate_batch"})
		return
	}

	var integrity *domain.DataIntegrityError
	if errors.As(err, &integrity) {
		h.logger.ErrorContext(ctx, "data integrity violation",
			slog.String("entity", integrity.Entity),
			slog.String("id", integrity.ID),
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: integrity.Error(), Code: "data_integrity"})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidStatus):
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case errors.Is(err, domain.ErrNotFound):
		h.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, domain.ErrForbidden):
		h.respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Code: "forbidden"})
	case errors.Is(err, errUnauthenticated):
		h.respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Code: "unauthenticated"})
	default:
		h.logger.ErrorContext(ctx, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		h.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// principal returns the caller put into the context by the auth middleware
func principal(r *http.Request) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return domain.Principal{}, errUnauthenticated
	}
	return p, nil
}

func invalid(format string, args ...any) error {
	return &domain.ValidationError{Message: fmt.Sprintf(format, args...)}
}

// decodeJSON reads a single JSON document into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalid("invalid request body: %s", err.Error())
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, invalid("invalid %s format", name)
	}
	return id, nil
}

func pathKind(r *http.Request) (domain.OrderKind, error) {
	return domain.ParseOrderKind(r.PathValue("kind"))
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalid("invalid %s format", name)
	}
	return &id, nil
}

func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalid("%s must be an integer", name)
	}
	return &v, nil
}

// queryDate accepts 2006-01-02 or RFC 3339
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, invalid("%s must be a date (YYYY-MM-DD)", name)
	}
	return &t, nil
}

// pagination reads page and limit and returns limit and offset
func pagination(r *http.Request) (int, int) {
	limit, page := defaultPageSize, 1

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxPageSize)
	}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	return limit, (page - 1) * limit
}
