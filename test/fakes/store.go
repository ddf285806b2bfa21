// test/fakes/store.go

// Package fakes provides an in-memory stand-in for the Postgres repositories.
// Row locks behave like SELECT ... FOR UPDATE: they are taken inside a
// transaction, are re-entrant for that transaction and are held until it
// commits or rolls back. Rollback replays an undo log.
package fakes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

// ErrNoTransaction is returned by lock methods called outside WithinTransaction
var ErrNoTransaction = errors.New("row lock requested outside a transaction")

type txKey struct{}

type tx struct {
	held map[string]*sync.Mutex
	undo []func()
}

type storedLine struct {
	kind domain.OrderKind
	seq  int
	line domain.Line
}

// Store implements ports.Transactor, ports.InventoryRepository and
// ports.OrderRepository in memory.
type Store struct {
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	inventory map[uuid.UUID]*domain.InventoryRecord
	byKey     map[domain.StockKey]uuid.UUID
	movements []*domain.StockMovement
	headers   map[uuid.UUID]*domain.Order
	lines     map[uuid.UUID]*storedLine
	seq       int
	faults    map[string]error

	Commits   int
	Rollbacks int
}

var (
	_ ports.Transactor          = (*Store)(nil)
	_ ports.InventoryRepository = (*Store)(nil)
	_ ports.OrderRepository     = (*Store)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		locks:     make(map[string]*sync.Mutex),
		inventory: make(map[uuid.UUID]*domain.InventoryRecord),
		byKey:     make(map[domain.StockKey]uuid.UUID),
		headers:   make(map[uuid.UUID]*domain.Order),
		lines:     make(map[uuid.UUID]*storedLine),
		faults:    make(map[string]error),
	}
}

// FailNext makes the next call of op return err. op is a method name such as
// "RecordMovement".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// WithinTransaction runs fn in a transaction, joining one already in ctx
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	t := &tx{held: make(map[string]*sync.Mutex)}
	defer func() {
		if p := recover(); p != nil {
			s.finish(t, false)
			panic(p)
		}
		s.finish(t, err == nil)
	}()

	return fn(context.WithValue(ctx, txKey{}, t))
}

func (s *Store) finish(t *tx, commit bool) {
	s.mu.Lock()
	if commit {
		s.Commits++
	} else {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		s.Rollbacks++
	}
	s.mu.Unlock()

	for _, m := range t.held {
		m.Unlock()
	}
}

// lock takes the named row lock for the transaction in ctx
func (s *Store) lock(ctx context.Context, name string) error {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok {
		return ErrNoTransaction
	}
	if _, held := t.held[name]; held {
		return nil
	}

	s.mu.Lock()
	m, exists := s.locks[name]
	if !exists {
		m = &sync.Mutex{}
		s.locks[name] = m
	}
	s.mu.Unlock()

	m.Lock()
	t.held[name] = m
	return nil
}

// record registers an undo step; outside a transaction writes are final.
// Callers hold s.mu.
func (s *Store) record(ctx context.Context, undo func()) {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		t.undo = append(t.undo, undo)
	}
}

func invLock(id uuid.UUID) string      { return "inventory:" + id.String() }
func keyLock(k domain.StockKey) string { return "inventory_key:" + k.String() }
func orderLock(id uuid.UUID) string    { return "order:" + id.String() }

func copyRecord(r *domain.InventoryRecord) *domain.InventoryRecord {
	c := *r
	return &c
}

// Seed inserts an inventory record directly, outside any transaction
func (s *Store) Seed(rec *domain.InventoryRecord) *domain.InventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	s.inventory[rec.ID] = copyRecord(rec)
	s.byKey[rec.Key()] = rec.ID
	return rec
}

// Quantity returns the committed-or-not quantity of a record, -1 if missing
func (s *Store) Quantity(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.inventory[id]; ok {
		return r.Quantity
	}
	return -1
}

// Movements returns every recorded stock movement
func (s *Store) Movements() []*domain.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

// Inventory repository

func (s *Store) Create(ctx context.Context, rec *domain.InventoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("Create"); err != nil {
		return err
	}
	if _, dup := s.byKey[rec.Key()]; dup {
		return &domain.DuplicateBatchError{MedicineID: rec.MedicineID, BatchNumber: rec.BatchNumber}
	}
	s.inventory[rec.ID] = copyRecord(rec)
	s.byKey[rec.Key()] = rec.ID
	id, key := rec.ID, rec.Key()
	s.record(ctx, func() {
		delete(s.inventory, id)
		delete(s.byKey, key)
	})
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("FindByID"); err != nil {
		return nil, err
	}
	if r, ok := s.inventory[id]; ok {
		return copyRecord(r), nil
	}
	return nil, nil
}

func (s *Store) FindByKey(ctx context.Context, key domain.StockKey) (*domain.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[key]; ok {
		return copyRecord(s.inventory[id]), nil
	}
	return nil, nil
}

func (s *Store) LockByID(ctx context.Context, id uuid.UUID) (*domain.InventoryRecord, error) {
	if err := s.lock(ctx, invLock(id)); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *Store) LockByKey(ctx context.Context, key domain.StockKey) (*domain.InventoryRecord, error) {
	rec, err := s.FindByKey(ctx, key)
	if err != nil || rec == nil {
		return rec, err
	}
	return s.LockByID(ctx, rec.ID)
}

func (s *Store) EnsureExists(ctx context.Context, key domain.StockKey, expiry, now time.Time) error {
	// A concurrent insert of the same key waits here, as ON CONFLICT does.
	if err := s.lock(ctx, keyLock(key)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("EnsureExists"); err != nil {
		return err
	}
	if _, ok := s.byKey[key]; ok {
		return nil
	}
	rec := &domain.InventoryRecord{
		ID: uuid.New(), MedicineID: key.MedicineID, BatchNumber: key.BatchNumber,
		ExpiryDate: expiry, CreatedAt: now, UpdatedAt: now,
	}
	s.inventory[rec.ID] = rec
	s.byKey[key] = rec.ID
	s.record(ctx, func() {
		delete(s.inventory, rec.ID)
		delete(s.byKey, key)
	})
	return nil
}

func (s *Store) AddQuantity(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	if _, inTx := ctx.Value(txKey{}).(*tx); inTx {
		if err := s.lock(ctx, invLock(id)); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("AddQuantity"); err != nil {
		return 0, err
	}
	r, ok := s.inventory[id]
	if !ok {
		return 0, fmt.Errorf("inventory %s: %w", id, domain.ErrNotFound)
	}
	if r.Quantity+delta < 0 {
		return 0, fmt.Errorf("quantity check constraint violated for %s", id)
	}
	prev := r.Quantity
	r.Quantity += delta
	s.record(ctx, func() { r.Quantity = prev })
	return r.Quantity, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.inventory[id]
	if !ok {
		return fmt.Errorf("inventory %s: %w", id, domain.ErrNotFound)
	}
	delete(s.inventory, id)
	delete(s.byKey, r.Key())

	// inventory_id is ON DELETE SET NULL on every line table
	for _, sl := range s.lines {
		switch l := sl.line.(type) {
		case *domain.SalesLine:
			if l.InventoryID != nil && *l.InventoryID == id {
				l.InventoryID = nil
			}
		case *domain.PurchaseReturnLine:
			if l.InventoryID != nil && *l.InventoryID == id {
				l.InventoryID = nil
			}
		case *domain.SalesReturnLine:
			if l.InventoryID != nil && *l.InventoryID == id {
				l.InventoryID = nil
			}
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context, params ports.InventoryListParams) ([]*domain.InventoryRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.InventoryRecord
	for _, r := range s.inventory {
		if params.MedicineID != nil && r.MedicineID != *params.MedicineID {
			continue
		}
		if params.BatchNumber != "" && !strings.Contains(r.BatchNumber, params.BatchNumber) {
			continue
		}
		if params.MaxQuantity != nil && r.Quantity > *params.MaxQuantity {
			continue
		}
		if params.ExpiresBefore != nil && !r.ExpiryDate.Before(*params.ExpiresBefore) {
			continue
		}
		out = append(out, copyRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	total := int64(len(out))
	return page(out, params.Limit, params.Offset), total, nil
}

func (s *Store) RecordMovement(ctx context.Context, m *domain.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("RecordMovement"); err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	c := *m
	s.movements = append(s.movements, &c)
	n := len(s.movements) - 1
	s.record(ctx, func() { s.movements = s.movements[:n] })
	return nil
}

func (s *Store) ListMovements(ctx context.Context, inventoryID uuid.UUID, limit int) ([]*domain.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.StockMovement
	for i := len(s.movements) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.movements[i].InventoryID == inventoryID {
			c := *s.movements[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *Store) DeleteMovementsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.movements[:0]
	var n int64
	for _, m := range s.movements {
		if m.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, m)
	}
	s.movements = kept
	return n, nil
}

// Order repository

func (s *Store) CreateHeader(ctx context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *o
	s.headers[o.ID] = &c
	s.record(ctx, func() { delete(s.headers, c.ID) })
	return nil
}

func (s *Store) GetHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.headers[id]; ok && h.Kind == kind {
		c := *h
		return &c, nil
	}
	return nil, nil
}

func (s *Store) LockHeader(ctx context.Context, kind domain.OrderKind, id uuid.UUID) (*domain.Order, error) {
	if err := s.lock(ctx, orderLock(id)); err != nil {
		return nil, err
	}
	return s.GetHeader(ctx, kind, id)
}

func (s *Store) UpdateStatus(ctx context.Context, kind domain.OrderKind, id uuid.UUID, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("UpdateStatus"); err != nil {
		return err
	}
	h, ok := s.headers[id]
	if !ok || h.Kind != kind {
		return fmt.Errorf("%s order %s: %w", kind, id, domain.ErrNotFound)
	}
	prev := h.Status
	h.Status = status
	s.record(ctx, func() { h.Status = prev })
	return nil
}

func (s *Store) UpdateTotal(ctx context.Context, kind domain.OrderKind, id uuid.UUID, total decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.headers[id]
	if !ok || h.Kind != kind {
		return fmt.Errorf("%s order %s: %w", kind, id, domain.ErrNotFound)
	}
	prev := h.TotalAmount
	h.TotalAmount = total
	s.record(ctx, func() { h.TotalAmount = prev })
	return nil
}

func (s *Store) SumSubtotals(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, sl := range s.lines {
		if sl.kind == kind && sl.line.Base().OrderID == orderID {
			total = total.Add(sl.line.Base().Subtotal)
		}
	}
	return total, nil
}

func (s *Store) ListHeaders(ctx context.Context, params ports.OrderListParams) ([]*domain.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Order
	for _, h := range s.headers {
		if h.Kind != params.Kind {
			continue
		}
		if params.Status != "" && h.Status != params.Status {
			continue
		}
		if params.CounterpartyID != nil && h.CounterpartyID != *params.CounterpartyID {
			continue
		}
		c := *h
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	total := int64(len(out))
	return page(out, params.Limit, params.Offset), total, nil
}

func (s *Store) InsertLine(ctx context.Context, line domain.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("InsertLine"); err != nil {
		return err
	}
	id := line.Base().ID
	s.seq++
	s.lines[id] = &storedLine{kind: line.Kind(), seq: s.seq, line: cloneLine(line)}
	s.record(ctx, func() { delete(s.lines, id) })
	return nil
}

func (s *Store) UpdateLine(ctx context.Context, line domain.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := line.Base().ID
	sl, ok := s.lines[id]
	if !ok || sl.kind != line.Kind() {
		return fmt.Errorf("%s line %s: %w", line.Kind(), id, domain.ErrNotFound)
	}
	prev := sl.line
	sl.line = cloneLine(line)
	s.record(ctx, func() { sl.line = prev })
	return nil
}

func (s *Store) DeleteLine(ctx context.Context, kind domain.OrderKind, lineID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.lines[lineID]
	if !ok || sl.kind != kind {
		return fmt.Errorf("%s line %s: %w", kind, lineID, domain.ErrNotFound)
	}
	delete(s.lines, lineID)
	s.record(ctx, func() { s.lines[lineID] = sl })
	return nil
}

func (s *Store) GetLine(ctx context.Context, kind domain.OrderKind, lineID uuid.UUID) (domain.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.lines[lineID]; ok && sl.kind == kind {
		return cloneLine(sl.line), nil
	}
	return nil, nil
}

func (s *Store) ListLines(ctx context.Context, kind domain.OrderKind, orderID uuid.UUID) ([]domain.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []*storedLine
	for _, sl := range s.lines {
		if sl.kind == kind && sl.line.Base().OrderID == orderID {
			found = append(found, sl)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })
	out := make([]domain.Line, 0, len(found))
	for _, sl := range found {
		out = append(out, cloneLine(sl.line))
	}
	return out, nil
}

func cloneLine(l domain.Line) domain.Line {
	switch v := l.(type) {
	case *domain.PurchaseLine:
		c := *v
		return &c
	case *domain.SalesLine:
		c := *v
		c.InventoryID = cloneID(v.InventoryID)
		return &c
	case *domain.PurchaseReturnLine:
		c := *v
		c.InventoryID = cloneID(v.InventoryID)
		return &c
	case *domain.SalesReturnLine:
		c := *v
		c.InventoryID = cloneID(v.InventoryID)
		return &c
	}
	panic(fmt.Sprintf("fakes: unknown line type %T", l))
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
