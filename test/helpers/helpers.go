// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/pharmacy-be/internal/adapters/db"
	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

// TestDB is a migrated Postgres running in a throwaway container
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	URL      string
}

// TestRedis is an in-process Redis; close Server to simulate an outage
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger logs to stdout, at debug level only under go test -v
func TestLogger() *slog.Logger {
	level := slog.LevelError
	if testing.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// FixedClock always reports the same instant
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return c.T }

// DefaultNow is the instant FixedClock-based tests start from
var DefaultNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

// AllowAll authorizes every action
type AllowAll struct{}

// IsAuthorized always returns true
func (AllowAll) IsAuthorized(context.Context, domain.Principal, ports.Action, domain.OrderKind) bool {
	return true
}

// DenyAll refuses every action
type DenyAll struct{}

// IsAuthorized always returns false
func (DenyAll) IsAuthorized(context.Context, domain.Principal, ports.Action, domain.OrderKind) bool {
	return false
}

// Principal returns a caller holding the given position
func Principal(pos domain.Position) domain.Principal {
	return domain.Principal{
		EmployeeID: uuid.New(),
		Username:   "test-" + string(pos),
		Position:   pos,
	}
}

// SetupTestDB starts postgres:16-alpine, connects and applies every
// migration. The container is purged when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env:        []string{"POSTGRES_USER=test", "POSTGRES_PASSWORD=test", "POSTGRES_DB=test_pharmacy"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	cfg := db.DefaultConfig()
	cfg.Port = resource.GetPort("5432/tcp")
	cfg.User, cfg.Password, cfg.Database = "test", "test", "test_pharmacy"
	cfg.MaxConnections, cfg.MinConnections = 20, 1
	cfg.StatementTimeout = 10 * time.Second
	cfg.EnableQueryLogging = testing.Verbose()

	var database *db.Database
	err = pool.Retry(func() error {
		var err error
		database, err = db.NewDatabase(context.Background(), cfg, TestLogger())
		return err
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	url := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	err = db.RunMigrationsWithRetry(context.Background(), &db.MigrationConfig{DatabaseURL: url}, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{PgxPool: database.Pool(), Database: database, URL: url}
}

// SetupTestRedis starts a miniredis server with a client bound to it
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return &TestRedis{Client: client, Server: mr}
}

// LoadTestConfig returns a configuration that passes validation outside
// production and keeps uploads on local disk.
func LoadTestConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "pharmacy-test", Environment: "test", LogLevel: "debug", LogFormat: "text"},
		Database: config.DatabaseConfig{Host: "localhost", Port: "5432", Name: "test_pharmacy", MaxConnections: 10, MinConnections: 2},
		Redis:    config.RedisConfig{Host: "localhost", Port: "6379", PoolSize: 10},
		Storage:  config.StorageConfig{Driver: "local", LocalDir: os.TempDir()},
		Import:   config.ImportConfig{MaxUploadMB: 5, ProcessingTimeout: time.Minute, UploadRetention: 24 * time.Hour},
		Inventory: config.InventoryConfig{
			LevelCacheTTL:     time.Minute,
			LowStockThreshold: 10,
			MovementRetention: 30 * 24 * time.Hour,
		},
		Notification: config.NotificationConfig{
			FromAddress:        "noreply@pharmacy.test",
			LowStockRecipients: []string{"stock@pharmacy.test"},
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-test-secret-test-secret",
			JWTIssuer:         "pharmacy-be-test",
			JWTExpiration:     time.Hour,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
		},
		Server: config.ServerConfig{Host: "localhost", Port: "8080"},
	}
}

// CreateTestMedicine creates a test medicine
func CreateTestMedicine(overrides ...func(*domain.Medicine)) *domain.Medicine {
	m := &domain.Medicine{
		ID:             uuid.New(),
		CommonName:     "Amoxicillin Capsules",
		Specification:  "0.25g x 24",
		Manufacturer:   "North China Pharmaceutical",
		ApprovalNumber: "H" + uuid.NewString()[:8],
		BuyPrice:       decimal.RequireFromString("12.50"),
		SellPrice:      decimal.RequireFromString("18.00"),
		CreatedAt:      DefaultNow,
		UpdatedAt:      DefaultNow,
	}

	for _, override := range overrides {
		override(m)
	}

	return m
}

// CreateTestInventoryRecord creates a test inventory record
func CreateTestInventoryRecord(overrides ...func(*domain.InventoryRecord)) *domain.InventoryRecord {
	rec := &domain.InventoryRecord{
		ID:          uuid.New(),
		MedicineID:  uuid.New(),
		BatchNumber: "B2024-001",
		ExpiryDate:  DefaultNow.AddDate(2, 0, 0).Truncate(24 * time.Hour),
		Quantity:    100,
		CreatedAt:   DefaultNow,
		UpdatedAt:   DefaultNow,
	}

	for _, override := range overrides {
		override(rec)
	}

	return rec
}

// CreateTestOrder creates a pending order header of the given kind
func CreateTestOrder(kind domain.OrderKind, overrides ...func(*domain.Order)) *domain.Order {
	o := &domain.Order{
		ID:             uuid.New(),
		Kind:           kind,
		CounterpartyID: uuid.New(),
		OrderDate:      DefaultNow,
		Status:         domain.StatusPending,
		TotalAmount:    decimal.Zero,
		CreatedAt:      DefaultNow,
		UpdatedAt:      DefaultNow,
	}

	for _, override := range overrides {
		override(o)
	}

	return o
}

// NewPurchaseLine builds a purchase line for a batch that may not exist yet
func NewPurchaseLine(medicineID uuid.UUID, batch string, qty int, price string) *domain.PurchaseLine {
	return &domain.PurchaseLine{
		LineBase:    domain.LineBase{Quantity: qty},
		MedicineID:  medicineID,
		BatchNumber: batch,
		ProduceDate: DefaultNow.AddDate(0, -1, 0).Truncate(24 * time.Hour),
		ExpiryDate:  DefaultNow.AddDate(2, 0, 0).Truncate(24 * time.Hour),
		UnitPrice:   decimal.RequireFromString(price),
	}
}

// NewSalesLine builds a sales line drawing from an inventory record
func NewSalesLine(inventoryID uuid.UUID, qty int, price string) *domain.SalesLine {
	id := inventoryID
	return &domain.SalesLine{
		LineBase:    domain.LineBase{Quantity: qty},
		InventoryID: &id,
		ActualPrice: decimal.RequireFromString(price),
	}
}

// NewPurchaseReturnLine builds a line sending stock back to the supplier
func NewPurchaseReturnLine(inventoryID uuid.UUID, qty int, price string) *domain.PurchaseReturnLine {
	id := inventoryID
	return &domain.PurchaseReturnLine{
		LineBase:    domain.LineBase{Quantity: qty},
		InventoryID: &id,
		UnitPrice:   decimal.RequireFromString(price),
		Reason:      "damaged packaging",
	}
}

// NewSalesReturnLine builds a line taking stock back from a customer
func NewSalesReturnLine(medicineID uuid.UUID, batch string, qty int, price string) *domain.SalesReturnLine {
	return &domain.SalesReturnLine{
		LineBase:    domain.LineBase{Quantity: qty},
		MedicineID:  medicineID,
		BatchNumber: batch,
		ExpiryDate:  DefaultNow.AddDate(1, 0, 0).Truncate(24 * time.Hour),
		RefundPrice: decimal.RequireFromString(price),
		Reason:      "customer changed prescription",
	}
}

// TruncateAllTables empties the ledger and catalog between tests.
// Children are listed before parents although CASCADE would cope either way.
func TruncateAllTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `TRUNCATE TABLE
		stock_movements,
		purchase_lines, sales_lines, purchase_return_lines, sales_return_lines,
		purchase_orders, sales_orders, purchase_return_orders, sales_return_orders,
		inventory, supplier_phones, suppliers, customers, employees, medicines
		CASCADE`)
	require.NoError(t, err, "Failed to truncate tables")
}
