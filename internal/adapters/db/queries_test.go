package db

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

func TestInventoryOrderBy(t *testing.T) {
	tests := []struct {
		sortBy, sortOrder string
		expected          string
	}{
		{"expiry_date", "asc", "expiry_date ASC, id"},
		{"quantity", "desc", "quantity DESC, id"},
		{"batch_number", "", "batch_number ASC, id"},
		{"updated", "desc", "updated_at DESC, id"},
		{"", "", "medicine_id ASC, batch_number ASC"},
		{"quantity; DROP TABLE inventory", "desc", "medicine_id DESC, batch_number DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy+"_"+tt.sortOrder, func(t *testing.T) {
			assert.Equal(t, tt.expected, inventoryOrderBy(tt.sortBy, tt.sortOrder))
		})
	}
}

func TestTablesFor(t *testing.T) {
	for _, kind := range []domain.OrderKind{domain.KindPurchase, domain.KindSale, domain.KindPurchaseReturn, domain.KindSaleReturn} {
		tables, err := tablesFor(kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, tables.header)
		assert.NotEmpty(t, tables.lines)
		assert.Equal(t, kind.CounterpartyIsSupplier(), tables.counterparty == "supplier_id")
	}

	_, err := tablesFor("transfer")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func TestLineValues(t *testing.T) {
	orderID := uuid.New()
	expiry := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	lines := []domain.Line{
		&domain.PurchaseLine{LineBase: domain.LineBase{Quantity: 5}, MedicineID: uuid.New(), BatchNumber: "B1",
			ExpiryDate: expiry, UnitPrice: decimal.RequireFromString("2.50")},
		&domain.SalesLine{LineBase: domain.LineBase{Quantity: 2}, InventoryID: uuidPtr(uuid.New()),
			ActualPrice: decimal.RequireFromString("9.90")},
		&domain.PurchaseReturnLine{LineBase: domain.LineBase{Quantity: 1}, InventoryID: uuidPtr(uuid.New()),
			UnitPrice: decimal.RequireFromString("2.50")},
		&domain.SalesReturnLine{LineBase: domain.LineBase{Quantity: 1}, MedicineID: uuid.New(), BatchNumber: "B1",
			ExpiryDate: expiry, RefundPrice: decimal.RequireFromString("9.90")},
	}

	for _, line := range lines {
		t.Run(string(line.Kind()), func(t *testing.T) {
			b := line.Base()
			b.ID, b.OrderID = uuid.New(), orderID
			domain.ComputeSubtotal(line)

			columns, values, err := lineValues(line)
			require.NoError(t, err)
			require.Len(t, values, len(columns))
			assert.Equal(t, lineColumns[line.Kind()], columns)
			assert.Equal(t, b.ID, values[0])
			assert.Equal(t, orderID, values[1])
			assert.Equal(t, "subtotal", columns[len(columns)-1])
			assert.True(t, b.Subtotal.Equal(values[len(values)-1].(decimal.Decimal)))
		})
	}
}

func TestLineValues_SalesReturnWithoutExpiryStoresNull(t *testing.T) {
	line := &domain.SalesReturnLine{LineBase: domain.LineBase{Quantity: 1}, MedicineID: uuid.New(), BatchNumber: "B1"}

	columns, values, err := lineValues(line)
	require.NoError(t, err)

	for i, c := range columns {
		if c == "expiry_date" {
			assert.Nil(t, values[i].(*time.Time))
		}
	}
}

func TestBuildPoolConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConnections = 7
	cfg.MinConnections = 2

	poolCfg, err := buildPoolConfig(cfg, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, int32(7), poolCfg.MaxConns)
	assert.Equal(t, int32(2), poolCfg.MinConns)
	assert.Equal(t, "pharmacy", poolCfg.ConnConfig.Database)
	assert.Nil(t, poolCfg.ConnConfig.Tracer)
	assert.Equal(t, pgx.QueryExecModeCacheDescribe, poolCfg.ConnConfig.DefaultQueryExecMode)
	assert.Equal(t, "pharmacy-be", poolCfg.ConnConfig.RuntimeParams["application_name"])

	cfg.StatementCacheMode = "simple"
	cfg.Password = ""
	poolCfg, err = buildPoolConfig(cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, pgx.QueryExecModeSimpleProtocol, poolCfg.ConnConfig.DefaultQueryExecMode)

	cfg.EnableQueryLogging = true
	poolCfg, err = buildPoolConfig(cfg, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, poolCfg.ConnConfig.Tracer)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.DatabaseConfig{
		Host:             "db.internal",
		Port:             "6432",
		Name:             "pharmacy_prod",
		SSLMode:          "require",
		MaxConnections:   40,
		StatementTimeout: 5 * time.Second,
	})

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "6432", cfg.Port)
	assert.Equal(t, "pharmacy_prod", cfg.Database)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Equal(t, int32(40), cfg.MaxConnections)
	assert.Equal(t, 5*time.Second, cfg.StatementTimeout)
}
