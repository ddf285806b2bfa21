// internal/adapters/db/catalog_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
)

var addressColumns = []string{"province", "city", "district", "street", "detail_address", "zip_code"}

type addressRow struct {
	Province      string `db:"province"`
	City          string `db:"city"`
	District      string `db:"district"`
	Street        string `db:"street"`
	DetailAddress string `db:"detail_address"`
	ZipCode       string `db:"zip_code"`
}

func (a addressRow) toDomain() domain.Address {
	return domain.Address(a)
}

func addressValues(a domain.Address) []interface{} {
	return []interface{}{a.Province, a.City, a.District, a.Street, a.DetailAddress, a.ZipCode}
}

type medicineRow struct {
	ID             uuid.UUID       `db:"id"`
	CommonName     string          `db:"common_name"`
	Specification  string          `db:"specification"`
	Manufacturer   string          `db:"manufacturer"`
	ApprovalNumber string          `db:"approval_number"`
	BuyPrice       decimal.Decimal `db:"buy_price"`
	SellPrice      decimal.Decimal `db:"sell_price"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type supplierRow struct {
	ID            uuid.UUID `db:"id"`
	Name          string    `db:"name"`
	ContactPerson string    `db:"contact_person"`
	LicenseNo     string    `db:"license_no"`
	addressRow
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type phoneRow struct {
	ID         uuid.UUID `db:"id"`
	SupplierID uuid.UUID `db:"supplier_id"`
	Number     string    `db:"number"`
	Type       string    `db:"type"`
	Note       string    `db:"note"`
}

type customerRow struct {
	ID    uuid.UUID `db:"id"`
	Name  string    `db:"name"`
	Type  string    `db:"type"`
	Phone string    `db:"phone"`
	addressRow
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type employeeRow struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	RealName  string    `db:"real_name"`
	Mobile    string    `db:"mobile"`
	Position  string    `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

var (
	medicineColumns = []string{
		"id", "common_name", "specification", "manufacturer", "approval_number",
		"buy_price", "sell_price", "created_at", "updated_at",
	}
	supplierColumns = append(append([]string{"id", "name", "contact_person", "license_no"}, addressColumns...),
		"created_at", "updated_at")
	customerColumns = append(append([]string{"id", "name", "type", "phone"}, addressColumns...),
		"created_at", "updated_at")
	employeeColumns = []string{"id", "username", "real_name", "mobile", "position", "created_at"}
)

// CatalogRepository implements ports.CatalogRepository
type CatalogRepository struct {
	db      *Database
	builder squirrel.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *Database, logger *slog.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:  logger.With(slog.String("repository", "catalog")),
	}
}

func (r *CatalogRepository) exec(ctx context.Context, qb squirrel.Sqlizer, what string) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.db.querier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to %s: %w", what, translateError(err))
	}
	return nil
}

// get scans one row into dst and reports whether it existed
func (r *CatalogRepository) get(ctx context.Context, dst interface{}, qb squirrel.SelectBuilder) (bool, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.db.querier(ctx), dst, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// list runs a paged select and its count
func (r *CatalogRepository) list(ctx context.Context, dst interface{}, table string, columns []string,
	filter squirrel.Sqlizer, orderBy string, limit, offset int) (int64, error) {
	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(table).Where(filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.db.querier(ctx), &total, countSQL, countArgs...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	qb := r.builder.Select(columns...).From(table).Where(filter).OrderBy(orderBy)
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	if offset > 0 {
		qb = qb.Offset(uint64(offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.db.querier(ctx), dst, query, args...); err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return total, nil
}

func searchFilter(search string, columns ...string) squirrel.Sqlizer {
	if search == "" {
		return squirrel.And{}
	}
	or := squirrel.Or{}
	for _, c := range columns {
		or = append(or, squirrel.ILike{c: "%" + search + "%"})
	}
	return or
}

// CreateMedicine inserts a medicine
func (r *CatalogRepository) CreateMedicine(ctx context.Context, m *domain.Medicine) error {
	return r.exec(ctx, r.builder.Insert("medicines").
		Columns(medicineColumns...).
		Values(m.ID, m.CommonName, m.Specification, m.Manufacturer, m.ApprovalNumber,
			m.BuyPrice, m.SellPrice, m.CreatedAt, m.UpdatedAt),
		"insert medicine")
}

// FindMedicine retrieves a medicine by ID
func (r *CatalogRepository) FindMedicine(ctx context.Context, id uuid.UUID) (*domain.Medicine, error) {
	return r.findMedicine(ctx, squirrel.Eq{"id": id})
}

// FindMedicineByApprovalNumber retrieves a medicine by its regulatory approval number
func (r *CatalogRepository) FindMedicineByApprovalNumber(ctx context.Context, approvalNumber string) (*domain.Medicine, error) {
	return r.findMedicine(ctx, squirrel.Eq{"approval_number": approvalNumber})
}

func (r *CatalogRepository) findMedicine(ctx context.Context, where squirrel.Sqlizer) (*domain.Medicine, error) {
	var row medicineRow
	ok, err := r.get(ctx, &row, r.builder.Select(medicineColumns...).From("medicines").Where(where))
	if err != nil {
		return nil, fmt.Errorf("failed to find medicine: %w", err)
	}
	if !ok {
		return nil, nil
	}
	m := domain.Medicine(row)
	return &m, nil
}

// ListMedicines lists medicines matching search on name, manufacturer or approval number
func (r *CatalogRepository) ListMedicines(ctx context.Context, search string, limit, offset int) ([]*domain.Medicine, int64, error) {
	var rows []*medicineRow
	total, err := r.list(ctx, &rows, "medicines", medicineColumns,
		searchFilter(search, "common_name", "manufacturer", "approval_number"), "common_name, id", limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Medicine, 0, len(rows))
	for _, row := range rows {
		m := domain.Medicine(*row)
		out = append(out, &m)
	}
	return out, total, nil
}

// CreateSupplier inserts a supplier together with its phones
func (r *CatalogRepository) CreateSupplier(ctx context.Context, s *domain.Supplier) error {
	return r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		values := append(append([]interface{}{s.ID, s.Name, s.ContactPerson, s.LicenseNo}, addressValues(s.Address)...),
			s.CreatedAt, s.UpdatedAt)
		if err := r.exec(ctx, r.builder.Insert("suppliers").Columns(supplierColumns...).Values(values...), "insert supplier"); err != nil {
			return err
		}

		if len(s.Phones) == 0 {
			return nil
		}
		ins := r.builder.Insert("supplier_phones").Columns("id", "supplier_id", "number", "type", "note")
		for _, p := range s.Phones {
			ins = ins.Values(p.ID, s.ID, p.Number, string(p.Type), p.Note)
		}
		return r.exec(ctx, ins, "insert supplier phones")
	})
}

// FindSupplier retrieves a supplier and its phones
func (r *CatalogRepository) FindSupplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	var row supplierRow
	ok, err := r.get(ctx, &row, r.builder.Select(supplierColumns...).From("suppliers").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	if !ok {
		return nil, nil
	}

	phones, err := r.supplierPhones(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}

	s := supplierFromRow(&row)
	s.Phones = phones[id]
	return s, nil
}

// ListSuppliers lists suppliers with their phones
func (r *CatalogRepository) ListSuppliers(ctx context.Context, search string, limit, offset int) ([]*domain.Supplier, int64, error) {
	var rows []*supplierRow
	total, err := r.list(ctx, &rows, "suppliers", supplierColumns,
		searchFilter(search, "name", "contact_person"), "name, id", limit, offset)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	phones, err := r.supplierPhones(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Supplier, 0, len(rows))
	for _, row := range rows {
		s := supplierFromRow(row)
		s.Phones = phones[row.ID]
		out = append(out, s)
	}
	return out, total, nil
}

func (r *CatalogRepository) supplierPhones(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID][]domain.SupplierPhone, error) {
	out := make(map[uuid.UUID][]domain.SupplierPhone, len(supplierIDs))
	if len(supplierIDs) == 0 {
		return out, nil
	}

	query, args, err := r.builder.Select("id", "supplier_id", "number", "type", "note").
		From("supplier_phones").
		Where(squirrel.Eq{"supplier_id": supplierIDs}).
		OrderBy("supplier_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []*phoneRow
	if err := pgxscan.Select(ctx, r.db.querier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query supplier phones: %w", err)
	}
	for _, p := range rows {
		out[p.SupplierID] = append(out[p.SupplierID], domain.SupplierPhone{
			ID: p.ID, SupplierID: p.SupplierID, Number: p.Number, Type: domain.PhoneType(p.Type), Note: p.Note,
		})
	}
	return out, nil
}

func supplierFromRow(row *supplierRow) *domain.Supplier {
	return &domain.Supplier{
		ID:            row.ID,
		Name:          row.Name,
		ContactPerson: row.ContactPerson,
		LicenseNo:     row.LicenseNo,
		Address:       row.addressRow.toDomain(),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// CreateCustomer inserts a customer
func (r *CatalogRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	values := append(append([]interface{}{c.ID, c.Name, string(c.Type), c.Phone}, addressValues(c.Address)...),
		c.CreatedAt, c.UpdatedAt)
	return r.exec(ctx, r.builder.Insert("customers").Columns(customerColumns...).Values(values...), "insert customer")
}

// FindCustomer retrieves a customer by ID
func (r *CatalogRepository) FindCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var row customerRow
	ok, err := r.get(ctx, &row, r.builder.Select(customerColumns...).From("customers").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return customerFromRow(&row), nil
}

// ListCustomers lists customers matching search on name or phone
func (r *CatalogRepository) ListCustomers(ctx context.Context, search string, limit, offset int) ([]*domain.Customer, int64, error) {
	var rows []*customerRow
	total, err := r.list(ctx, &rows, "customers", customerColumns,
		searchFilter(search, "name", "phone"), "name, id", limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, customerFromRow(row))
	}
	return out, total, nil
}

func customerFromRow(row *customerRow) *domain.Customer {
	return &domain.Customer{
		ID:        row.ID,
		Name:      row.Name,
		Type:      domain.CustomerType(row.Type),
		Phone:     row.Phone,
		Address:   row.addressRow.toDomain(),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// CreateEmployee inserts an employee
func (r *CatalogRepository) CreateEmployee(ctx context.Context, e *domain.Employee) error {
	return r.exec(ctx, r.builder.Insert("employees").
		Columns(employeeColumns...).
		Values(e.ID, e.Username, e.RealName, e.Mobile, string(e.Position), e.CreatedAt),
		"insert employee")
}

// FindEmployee retrieves an employee by ID
func (r *CatalogRepository) FindEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	var row employeeRow
	ok, err := r.get(ctx, &row, r.builder.Select(employeeColumns...).From("employees").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return employeeFromRow(&row), nil
}

// ListEmployees lists employees by username
func (r *CatalogRepository) ListEmployees(ctx context.Context, limit, offset int) ([]*domain.Employee, int64, error) {
	var rows []*employeeRow
	total, err := r.list(ctx, &rows, "employees", employeeColumns, squirrel.And{}, "username", limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, employeeFromRow(row))
	}
	return out, total, nil
}

// DeleteEmployee removes an employee; order headers keep a NULL employee_id
func (r *CatalogRepository) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.builder.Delete("employees").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	tag, err := r.db.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %s: %w", id, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "employee deleted", slog.String("employee_id", id.String()))
	return nil
}

func employeeFromRow(row *employeeRow) *domain.Employee {
	return &domain.Employee{
		ID:        row.ID,
		Username:  row.Username,
		RealName:  row.RealName,
		Mobile:    row.Mobile,
		Position:  domain.Position(row.Position),
		CreatedAt: row.CreatedAt,
	}
}
