package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/core/services"
	"github.com/ammerola/pharmacy-be/internal/workers"
	"github.com/ammerola/pharmacy-be/test/fakes"
	"github.com/ammerola/pharmacy-be/test/helpers"
)

func BenchmarkOrderApproval(b *testing.B) {
	ctx := context.Background()

	b.Run("Purchase", func(b *testing.B) {
		store := fakes.NewStore()
		svc := newBenchOrderService(store)
		medicineID := uuid.New()

		ids := make([]uuid.UUID, b.N)
		for i := range ids {
			ids[i] = placeBenchOrder(b, svc, domain.KindPurchase,
				helpers.NewPurchaseLine(medicineID, fmt.Sprintf("B-%d", i%50), 10, "12.50"))
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := svc.SetOrderStatus(ctx, benchManager, domain.KindPurchase, ids[i], domain.StatusApproved); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Sale", func(b *testing.B) {
		store := fakes.NewStore()
		svc := newBenchOrderService(store)
		rec := store.Seed(helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) { r.Quantity = b.N }))

		ids := make([]uuid.UUID, b.N)
		for i := range ids {
			ids[i] = placeBenchOrder(b, svc, domain.KindSale, helpers.NewSalesLine(rec.ID, 1, "18.00"))
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := svc.SetOrderStatus(ctx, benchManager, domain.KindSale, ids[i], domain.StatusApproved); err != nil {
				b.Fatal(err)
			}
		}
	})

	// Every approval contends for the same batch row
	b.Run("ParallelSalesOneBatch", func(b *testing.B) {
		store := fakes.NewStore()
		svc := newBenchOrderService(store)
		rec := store.Seed(helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) { r.Quantity = b.N }))

		ids := make(chan uuid.UUID, b.N)
		for i := 0; i < b.N; i++ {
			ids <- placeBenchOrder(b, svc, domain.KindSale, helpers.NewSalesLine(rec.ID, 1, "18.00"))
		}
		close(ids)

		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				if err := svc.SetOrderStatus(ctx, benchManager, domain.KindSale, <-ids, domain.StatusApproved); err != nil {
					b.Error(err)
				}
			}
		})
		b.StopTimer()

		if got := store.Quantity(rec.ID); got != 0 {
			b.Fatalf("batch left with %d units, want 0", got)
		}
	})
}

func BenchmarkLineEdits(b *testing.B) {
	ctx := context.Background()
	store := fakes.NewStore()
	svc := newBenchOrderService(store)
	orderID := placeBenchOrder(b, svc, domain.KindPurchase)
	medicineID := uuid.New()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		line := helpers.NewPurchaseLine(medicineID, fmt.Sprintf("B-%d", i), 1+i%20, "3.75")
		if _, err := svc.AddLineItem(ctx, benchManager, domain.KindPurchase, orderID, line); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStockEngine(b *testing.B) {
	ctx := context.Background()
	store := fakes.NewStore()
	logger := benchLogger()
	clock := helpers.FixedClock{T: helpers.DefaultNow}
	engine := services.NewStockEngine(services.NewLedger(store, store, clock, logger), store, store, clock, logger)

	rec := store.Seed(helpers.CreateTestInventoryRecord(func(r *domain.InventoryRecord) { r.Quantity = 1 << 30 }))
	order := helpers.CreateTestOrder(domain.KindSale)
	lines := []domain.Line{helpers.NewSalesLine(rec.ID, 1, "18.00")}
	lines[0].Base().ID = uuid.New()
	lines[0].Base().OrderID = order.ID

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Apply(ctx, order, lines); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkImportParsing(b *testing.B) {
	b.Run("InvoiceText", func(b *testing.B) {
		lines := invoiceText(200)

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			rows := workers.ParseInvoiceLines(lines)
			if len(rows) != 200 {
				b.Fatalf("parsed %d rows, want 200", len(rows))
			}
		}
	})

	b.Run("Workbook", func(b *testing.B) {
		data := purchaseWorkbook(b, 200)

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			rows, err := workers.ParseXLSX(data)
			if err != nil {
				b.Fatal(err)
			}
			if len(rows) != 200 {
				b.Fatalf("parsed %d rows, want 200", len(rows))
			}
		}
	})
}

func BenchmarkTotals(b *testing.B) {
	lines := make([]domain.Line, 100)
	for i := range lines {
		lines[i] = helpers.NewSalesLine(uuid.New(), 1+i%7, "18.35")
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(domain.ComputeSubtotal(l))
		}
		_ = total
	}
}
