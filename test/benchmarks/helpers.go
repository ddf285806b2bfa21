// test/benchmarks/helpers.go
package benchmarks

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/core/services"
	"github.com/ammerola/pharmacy-be/test/fakes"
	"github.com/ammerola/pharmacy-be/test/helpers"
)

var benchManager = domain.Principal{
	EmployeeID: uuid.New(),
	Username:   "bench-manager",
	Position:   domain.PositionManager,
}

// benchLogger discards everything below error so logging stays out of the numbers
func benchLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// newBenchOrderService wires an order service over the in-memory store
func newBenchOrderService(store *fakes.Store) *services.OrderService {
	logger := benchLogger()
	clock := helpers.FixedClock{T: helpers.DefaultNow}
	engine := services.NewStockEngine(services.NewLedger(store, store, clock, logger), store, store, clock, logger)
	return services.NewOrderService(store, store, store, engine, helpers.AllowAll{}, clock, nil, nil, logger)
}

// placeBenchOrder creates a pending order of kind holding lines
func placeBenchOrder(b *testing.B, svc *services.OrderService, kind domain.OrderKind, lines ...domain.Line) uuid.UUID {
	b.Helper()
	ctx := context.Background()

	id, err := svc.CreateOrderHeader(ctx, benchManager, ports.CreateOrderInput{Kind: kind, CounterpartyID: uuid.New()})
	if err != nil {
		b.Fatal(err)
	}
	for _, l := range lines {
		if _, err := svc.AddLineItem(ctx, benchManager, kind, id, l); err != nil {
			b.Fatal(err)
		}
	}
	return id
}

// invoiceText builds the extracted text of a supplier invoice with n purchase lines
func invoiceText(n int) []string {
	lines := []string{
		"PHARMA DISTRIBUTION CO. INVOICE #2024-0315",
		"Approval No.  Batch  Produced  Expires  Qty  Price",
		"-----------------------------------------------------",
	}
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("H%08d B2024-%04d 2024-01-%02d 2026-01-%02d %d %.2f",
			i, i, i%28+1, i%28+1, 10+i%90, 1.5+float64(i%40)))
	}
	return append(lines, "", "TOTAL DUE")
}

// purchaseWorkbook builds an .xlsx purchase sheet with n rows
func purchaseWorkbook(b *testing.B, n int) []byte {
	b.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Purchase")
	if err != nil {
		b.Fatal(err)
	}
	header := sheet.AddRow()
	for _, h := range []string{"Approval Number", "Batch Number", "Produce Date", "Expiry Date", "Quantity", "Unit Price"} {
		header.AddCell().SetString(h)
	}
	for i := 0; i < n; i++ {
		row := sheet.AddRow()
		row.AddCell().SetString(fmt.Sprintf("H%08d", i))
		row.AddCell().SetString(fmt.Sprintf("B2024-%04d", i))
		row.AddCell().SetString("2024-01-15")
		row.AddCell().SetString("2026-01-15")
		row.AddCell().SetInt(10 + i%90)
		row.AddCell().SetString(strconv.FormatFloat(1.5+float64(i%40), 'f', 2, 64))
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		b.Fatal(err)
	}
	return buf.Bytes()
}
