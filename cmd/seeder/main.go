// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/pharmacy-be/internal/adapters/auth"
	redis_a "github.com/ammerola/pharmacy-be/internal/adapters/redis_adapter"
	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/pkg/logger"
)

// seedNamespace derives stable ids from natural keys so reseeding is idempotent
var seedNamespace = uuid.MustParse("5f0c6c1e-3a52-4c55-9d0e-7d0b3c2a9e41")

func seedID(kind, key string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+key))
}

// Dataset is everything the seeder writes
type Dataset struct {
	Medicines []*domain.Medicine
	Suppliers []*domain.Supplier
	Customers []*domain.Customer
	Employees []*domain.Employee
	Stock     []*domain.InventoryRecord
}

func (d *Dataset) counts() []any {
	return []any{
		slog.Int("medicines", len(d.Medicines)),
		slog.Int("suppliers", len(d.Suppliers)),
		slog.Int("customers", len(d.Customers)),
		slog.Int("employees", len(d.Employees)),
		slog.Int("inventory", len(d.Stock)),
	}
}

func main() {
	// Parse flags
	var (
		workbook  = flag.String("workbook", "./seed.xlsx", "Workbook with Medicines, Suppliers, Customers, Employees and Inventory sheets")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Preview changes without modifying database")
		printKeys = flag.Bool("tokens", false, "Print a bearer token for every seeded employee")
		flush     = flag.Bool("flush-cache", true, "Drop cached inventory levels after seeding")
	)
	flag.Parse()

	log := logger.SetupLogger(*logLevel, "text", "pharmacy-seeder", "", getEnv("APP_ENV", "development")).Logger

	data := demoDataset()
	if _, err := os.Stat(*workbook); err == nil {
		loaded, err := LoadWorkbook(*workbook)
		if err != nil {
			log.Error("failed to read workbook", slog.String("path", *workbook), slog.String("error", err.Error()))
			os.Exit(1)
		}
		data = loaded
		log.Info("workbook loaded", append([]any{slog.String("path", *workbook)}, data.counts()...)...)
	} else {
		log.Info("no workbook found, using demo dataset", data.counts()...)
	}

	if !*dryRun {
		// Database connection
		dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			getEnv("DB_USER", "pharmacy"),
			getEnv("DB_PASSWORD", "pharmacy_dev"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "pharmacy"),
			getEnv("DB_SSL_MODE", "disable"),
		)

		ctx := context.Background()
		db, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()

		if err := Save(ctx, db, data); err != nil {
			log.Error("failed to seed database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("seed operation completed", data.counts()...)

		if *flush {
			flushLevelCache(ctx, log)
		}
	} else {
		fmt.Println("[DRY RUN] No changes were made to the database")
	}

	if *printKeys {
		tokens := auth.NewTokenService(auth.JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "pharmacy-be"),
			TTL:    12 * time.Hour,
		})
		if getEnv("JWT_SECRET", "") == "" {
			log.Warn("JWT_SECRET is empty, tokens will not validate against a configured API")
		}
		for _, e := range data.Employees {
			token, expires, err := tokens.Issue(e)
			if err != nil {
				log.Error("failed to issue token", slog.String("username", e.Username), slog.String("error", err.Error()))
				continue
			}
			fmt.Printf("%-12s %-10s %s (expires %s)\n", e.Username, e.Position, token, expires.Format(time.RFC3339))
		}
	}
}

// Save writes the dataset in one transaction. Existing rows are left as they are.
func Save(ctx context.Context, db *pgxpool.Pool, data *Dataset) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, m := range data.Medicines {
		batch.Queue(`
			INSERT INTO medicines (id, common_name, specification, manufacturer, approval_number, buy_price, sell_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT DO NOTHING`,
			m.ID, m.CommonName, m.Specification, m.Manufacturer, m.ApprovalNumber, m.BuyPrice, m.SellPrice)
	}
	for _, s := range data.Suppliers {
		batch.Queue(`
			INSERT INTO suppliers (id, name, contact_person, license_no, province, city, district, street, detail_address, zip_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT DO NOTHING`,
			s.ID, s.Name, s.ContactPerson, s.LicenseNo, s.Address.Province, s.Address.City,
			s.Address.District, s.Address.Street, s.Address.DetailAddress, s.Address.ZipCode)
		for _, p := range s.Phones {
			batch.Queue(`
				INSERT INTO supplier_phones (id, supplier_id, number, type, note)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT DO NOTHING`,
				p.ID, s.ID, p.Number, p.Type, p.Note)
		}
	}
	for _, c := range data.Customers {
		batch.Queue(`
			INSERT INTO customers (id, name, type, phone, province, city, district, street, detail_address, zip_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT DO NOTHING`,
			c.ID, c.Name, c.Type, c.Phone, c.Address.Province, c.Address.City,
			c.Address.District, c.Address.Street, c.Address.DetailAddress, c.Address.ZipCode)
	}
	for _, e := range data.Employees {
		batch.Queue(`
			INSERT INTO employees (id, username, real_name, mobile, position)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING`,
			e.ID, e.Username, e.RealName, e.Mobile, e.Position)
	}
	for _, r := range data.Stock {
		batch.Queue(`
			INSERT INTO inventory (id, medicine_id, batch_number, expiry_date, quantity)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING`,
			r.ID, r.MedicineID, r.BatchNumber, r.ExpiryDate, r.Quantity)
	}

	// Execute batch
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert seed row %d: %w", i+1, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadWorkbook reads a dataset from a workbook. Each sheet is optional; its
// first row names the columns.
func LoadWorkbook(path string) (*Dataset, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	data := &Dataset{}
	medicineByApproval := map[string]uuid.UUID{}

	if err := eachRecord(file, "Medicines", func(r record) error {
		m := &domain.Medicine{
			CommonName:     r.get("common_name"),
			Specification:  r.get("specification"),
			Manufacturer:   r.get("manufacturer"),
			ApprovalNumber: r.get("approval_number"),
			BuyPrice:       r.decimal("buy_price"),
			SellPrice:      r.decimal("sell_price"),
		}
		m.ID = seedID("medicine", m.ApprovalNumber)
		if err := m.Validate(); err != nil {
			return err
		}
		medicineByApproval[m.ApprovalNumber] = m.ID
		data.Medicines = append(data.Medicines, m)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachRecord(file, "Suppliers", func(r record) error {
		s := &domain.Supplier{
			Name:          r.get("name"),
			ContactPerson: r.get("contact_person"),
			LicenseNo:     r.get("license_no"),
			Address:       r.address(),
		}
		s.ID = seedID("supplier", s.Name)
		if phone := r.get("phone"); phone != "" {
			s.Phones = []domain.SupplierPhone{{
				ID: seedID("supplier_phone", s.Name+phone), SupplierID: s.ID, Number: phone, Type: domain.PhoneOffice,
			}}
		}
		if err := s.Validate(); err != nil {
			return err
		}
		data.Suppliers = append(data.Suppliers, s)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachRecord(file, "Customers", func(r record) error {
		c := &domain.Customer{
			Name:    r.get("name"),
			Type:    domain.CustomerType(strings.ToLower(r.get("type"))),
			Phone:   r.get("phone"),
			Address: r.address(),
		}
		c.ID = seedID("customer", c.Name)
		if err := c.Validate(); err != nil {
			return err
		}
		data.Customers = append(data.Customers, c)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachRecord(file, "Employees", func(r record) error {
		e := &domain.Employee{
			Username: r.get("username"),
			RealName: r.get("real_name"),
			Mobile:   r.get("mobile"),
			Position: domain.Position(strings.ToLower(r.get("position"))),
		}
		e.ID = seedID("employee", e.Username)
		if err := e.Validate(); err != nil {
			return err
		}
		data.Employees = append(data.Employees, e)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachRecord(file, "Inventory", func(r record) error {
		medicineID, ok := medicineByApproval[r.get("approval_number")]
		if !ok {
			return fmt.Errorf("unknown approval number %q", r.get("approval_number"))
		}
		expiry, err := time.Parse(time.DateOnly, r.get("expiry_date"))
		if err != nil {
			return fmt.Errorf("invalid expiry_date %q", r.get("expiry_date"))
		}
		qty, err := strconv.Atoi(r.get("quantity"))
		if err != nil || qty < 0 {
			return fmt.Errorf("invalid quantity %q", r.get("quantity"))
		}
		batchNumber := r.get("batch_number")
		data.Stock = append(data.Stock, &domain.InventoryRecord{
			ID:          seedID("inventory", medicineID.String()+batchNumber),
			MedicineID:  medicineID,
			BatchNumber: batchNumber,
			ExpiryDate:  expiry,
			Quantity:    qty,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	return data, nil
}

type record map[string]string

func (r record) get(col string) string { return r[col] }

func (r record) decimal(col string) decimal.Decimal {
	d, err := decimal.NewFromString(r[col])
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (r record) address() domain.Address {
	return domain.Address{
		Province:      r.get("province"),
		City:          r.get("city"),
		District:      r.get("district"),
		Street:        r.get("street"),
		DetailAddress: r.get("detail_address"),
		ZipCode:       r.get("zip_code"),
	}
}

// eachRecord calls fn for every non-blank row of the named sheet
func eachRecord(file *xlsx.File, sheetName string, fn func(record) error) error {
	sheet, ok := file.Sheet[sheetName]
	if !ok {
		return nil
	}

	var header []string
	err := sheet.ForEachRow(func(row *xlsx.Row) error {
		values := make([]string, sheet.MaxCol)
		blank := true
		for i := range values {
			values[i] = strings.TrimSpace(row.GetCell(i).String())
			if values[i] != "" {
				blank = false
			}
		}
		if header == nil {
			header = make([]string, len(values))
			for i, v := range values {
				header[i] = strings.ReplaceAll(strings.ToLower(v), " ", "_")
			}
			return nil
		}
		if blank {
			return nil
		}

		rec := record{}
		for i, col := range header {
			rec[col] = values[i]
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("%s row %d: %w", sheetName, row.GetCoordinate()+1, err)
		}
		return nil
	})
	return err
}

func demoDataset() *Dataset {
	medicines := []*domain.Medicine{
		{CommonName: "Amoxicillin Capsules", Specification: "0.25g x 24", Manufacturer: "North China Pharmaceutical",
			ApprovalNumber: "H13023964", BuyPrice: decimal.RequireFromString("12.50"), SellPrice: decimal.RequireFromString("18.00")},
		{CommonName: "Ibuprofen Sustained-release Capsules", Specification: "0.3g x 20", Manufacturer: "Tianjin Smith Kline",
			ApprovalNumber: "H10900089", BuyPrice: decimal.RequireFromString("9.80"), SellPrice: decimal.RequireFromString("15.50")},
		{CommonName: "Metformin Hydrochloride Tablets", Specification: "0.5g x 48", Manufacturer: "Sino-American Shanghai Squibb",
			ApprovalNumber: "H20023370", BuyPrice: decimal.RequireFromString("21.00"), SellPrice: decimal.RequireFromString("29.90")},
	}
	for _, m := range medicines {
		m.ID = seedID("medicine", m.ApprovalNumber)
	}

	supplier := &domain.Supplier{
		Name: "Northern Pharma Distribution Co.", ContactPerson: "Li Wei", LicenseNo: "JY11101020001",
		Address: domain.Address{Province: "Hebei", City: "Shijiazhuang", Street: "Huaian Road", DetailAddress: "No. 88", ZipCode: "050000"},
	}
	supplier.ID = seedID("supplier", supplier.Name)
	supplier.Phones = []domain.SupplierPhone{{
		ID: seedID("supplier_phone", supplier.Name), SupplierID: supplier.ID, Number: "0311-86001234", Type: domain.PhoneOffice,
	}}

	customers := []*domain.Customer{
		{Name: "Riverside Community Clinic", Type: domain.CustomerWholesale, Phone: "0311-86005678"},
		{Name: "Walk-in Customer", Type: domain.CustomerRetail},
	}
	for _, c := range customers {
		c.ID = seedID("customer", c.Name)
	}

	employees := []*domain.Employee{
		{Username: "manager", RealName: "Zhang Min", Position: domain.PositionManager},
		{Username: "purchaser", RealName: "Wang Fang", Position: domain.PositionPurchaser},
		{Username: "warehouse", RealName: "Liu Yang", Position: domain.PositionWarehouse},
		{Username: "sales", RealName: "Chen Jing", Position: domain.PositionSales},
		{Username: "finance", RealName: "Zhao Lei", Position: domain.PositionFinance},
	}
	for _, e := range employees {
		e.ID = seedID("employee", e.Username)
	}

	expiry := time.Now().UTC().AddDate(2, 0, 0).Truncate(24 * time.Hour)
	var stock []*domain.InventoryRecord
	for i, m := range medicines {
		batch := fmt.Sprintf("SEED-%03d", i+1)
		stock = append(stock, &domain.InventoryRecord{
			ID:          seedID("inventory", m.ID.String()+batch),
			MedicineID:  m.ID,
			BatchNumber: batch,
			ExpiryDate:  expiry,
			Quantity:    100 * (i + 1),
		})
	}

	return &Dataset{
		Medicines: medicines,
		Suppliers: []*domain.Supplier{supplier},
		Customers: customers,
		Employees: employees,
		Stock:     stock,
	}
}

// flushLevelCache drops cached inventory levels the seed may have changed.
// An unreachable Redis is only a warning since the cache expires on its own.
func flushLevelCache(ctx context.Context, log *slog.Logger) {
	client, err := redis_a.NewClient(ctx, redis_a.ClientConfig{
		Addr:        getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		Password:    getEnv("REDIS_PASSWORD", ""),
		PoolSize:    1,
		DialTimeout: 2 * time.Second,
	}, log)
	if err != nil {
		log.Warn("skipping cache flush", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	if err := redis_a.NewCache(client, 0, log).DeletePattern(ctx, redis_a.InventoryLevelPattern); err != nil {
		log.Warn("failed to flush inventory level cache", slog.String("error", err.Error()))
		return
	}
	log.Info("inventory level cache flushed")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
