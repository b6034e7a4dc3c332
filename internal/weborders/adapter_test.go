package weborders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/enum"
	"github.com/pasos-retail/api/internal/rollup"
)

func TestToSalesMapsStatusAndPayment(t *testing.T) {
	storeID := uuid.New()
	orders := []Order{
		{
			ID:            "WEB-1001",
			Status:        "delivered",
			Total:         "45990",
			PaymentMethod: "webpay",
			CreatedAt:     "2024-06-15T13:05:00Z",
			Items: []OrderItem{
				{ID: "it-1", SKU: "ZAP-010", Name: "Zapatilla urbana", Quantity: 1, UnitPrice: "45990"},
			},
		},
		{
			ID:            "WEB-1002",
			Status:        "awaiting_payment",
			Total:         "19990",
			PaymentMethod: "efectivo",
			CreatedAt:     "2024-06-15T14:00:00Z",
		},
	}

	sales, skipped := ToSales(orders, storeID)

	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped orders: %v", skipped)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}

	if sales[0].Status != enum.SaleStatusPaid {
		t.Errorf("status: got %s, want PAID", sales[0].Status)
	}
	if sales[0].PaymentMethod != enum.PaymentMethodCredit {
		t.Errorf("payment: got %s, want CREDIT for webpay", sales[0].PaymentMethod)
	}
	if !sales[0].Total.Equal(decimal.RequireFromString("45990")) {
		t.Errorf("total: got %s", sales[0].Total)
	}
	if sales[0].StoreID != storeID {
		t.Errorf("store ID not assigned")
	}

	if sales[1].Status != enum.SaleStatusPending {
		t.Errorf("unsettled order status: got %s, want PENDING", sales[1].Status)
	}
	if sales[1].PaymentMethod != enum.PaymentMethodCash {
		t.Errorf("payment: got %s, want CASH for efectivo", sales[1].PaymentMethod)
	}
}

func TestToSalesSkipsBadTimestampsAndContinues(t *testing.T) {
	orders := []Order{
		{ID: "WEB-1", Status: "paid", Total: "10000", CreatedAt: "not-a-timestamp"},
		{ID: "WEB-2", Status: "paid", Total: "20000", CreatedAt: "2024-06-15T10:00:00Z"},
		{ID: "WEB-3", Status: "paid", Total: "abc", CreatedAt: "2024-06-15T11:00:00Z"},
	}

	sales, skipped := ToSales(orders, uuid.New())

	if len(sales) != 1 {
		t.Fatalf("expected 1 usable sale, got %d", len(sales))
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped orders, got %d", len(skipped))
	}
	if !sales[0].Total.Equal(decimal.RequireFromString("20000")) {
		t.Errorf("wrong sale survived: total %s", sales[0].Total)
	}
}

func TestToSalesRefundsBecomeCancellations(t *testing.T) {
	orders := []Order{
		{
			ID:            "WEB-2001",
			Status:        "refunded",
			Total:         "60000",
			PaymentMethod: "credit",
			CreatedAt:     "2024-06-15T12:00:00Z",
			Items: []OrderItem{
				{ID: "it-1", SKU: "ZAP-020", Quantity: 2, UnitPrice: "30000"},
			},
			Refunds: []OrderRefund{
				{ItemID: "it-1", Quantity: 2},
				{ItemID: "missing", Quantity: 1},
			},
		},
	}

	sales, skipped := ToSales(orders, uuid.New())
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped orders: %v", skipped)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales))
	}

	s := sales[0]
	if s.Return == nil {
		t.Fatal("expected a return")
	}
	if len(s.Return.Cancellations) != 1 {
		t.Fatalf("expected 1 cancellation (unknown item dropped), got %d", len(s.Return.Cancellations))
	}
	if s.Return.Cancellations[0].ItemID != s.Items[0].ID {
		t.Error("cancellation does not reference the sale item")
	}

	// Fully refunded and cancelled: nets to zero and stays out of the resume
	if !rollup.NetAmount(s).IsZero() {
		t.Errorf("net amount: got %s, want 0", rollup.NetAmount(s))
	}
}

func TestToSalesDeterministicIdentifiers(t *testing.T) {
	order := Order{ID: "WEB-3001", Status: "paid", Total: "5000", CreatedAt: "2024-06-15T10:00:00Z"}

	first, _ := ToSales([]Order{order}, uuid.Nil)
	second, _ := ToSales([]Order{order}, uuid.Nil)

	if first[0].ID != second[0].ID {
		t.Error("mirrored order IDs must be stable across fetches to avoid double counting")
	}
	if first[0].CreatedAt.UTC() != (time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created at: got %v", first[0].CreatedAt)
	}
}
