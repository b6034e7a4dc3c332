package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/enum"
	"github.com/pasos-retail/api/internal/rollup"
	"github.com/pasos-retail/api/internal/service"
	"github.com/pasos-retail/api/internal/weborders"
)

// --- Mocks ---

type mockSummarySales struct {
	sales []domain.Sale
	err   error
	from  time.Time
	to    time.Time
}

func (m *mockSummarySales) ListSales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]domain.Sale, error) {
	m.from, m.to = from, to
	if m.err != nil {
		return nil, m.err
	}
	return m.sales, nil
}

type mockWebOrders struct {
	orders []weborders.Order
	err    error
}

func (m *mockWebOrders) OrdersBetween(ctx context.Context, from, to time.Time) ([]weborders.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

type memoryResumeCache struct {
	resumes map[string]rollup.Summary
	sets    int
}

func newMemoryResumeCache() *memoryResumeCache {
	return &memoryResumeCache{resumes: make(map[string]rollup.Summary)}
}

func (c *memoryResumeCache) Get(_ context.Context, storeID uuid.UUID, day string) (*rollup.Summary, bool, error) {
	resume, ok := c.resumes[storeID.String()+day]
	if !ok {
		return nil, false, nil
	}
	return &resume, true, nil
}

func (c *memoryResumeCache) Set(_ context.Context, storeID uuid.UUID, day string, resume *rollup.Summary, _ time.Duration) error {
	c.resumes[storeID.String()+day] = *resume
	c.sets++
	return nil
}

// --- Helpers ---

func santiagoDay(day, hour int) time.Time {
	return time.Date(2024, time.June, day, hour, 0, 0, 0, rollup.Location())
}

func paidSale(storeID uuid.UUID, method, total string, createdAt time.Time) domain.Sale {
	return domain.Sale{
		ID:            uuid.New(),
		StoreID:       storeID,
		Total:         decimal.RequireFromString(total),
		PaymentMethod: method,
		Status:        enum.SaleStatusPaid,
		CreatedAt:     createdAt,
	}
}

// --- Tests ---

func TestResumeInvalidDate(t *testing.T) {
	svc := service.NewSummaryService(&mockSummarySales{}, nil, newMemoryResumeCache())

	_, _, err := svc.Resume(context.Background(), uuid.New(), "15-06-2024")
	if !errors.Is(err, service.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestResumeWithoutCachedCopy(t *testing.T) {
	storeID := uuid.New()
	store := &mockSummarySales{sales: []domain.Sale{
		paidSale(storeID, enum.PaymentMethodCash, "10000", santiagoDay(15, 10)),
		paidSale(storeID, enum.PaymentMethodCredit, "20000", santiagoDay(14, 16)),
	}}
	resumeCache := newMemoryResumeCache()
	svc := service.NewSummaryService(store, nil, resumeCache)

	resume, patch, err := svc.Resume(context.Background(), storeID, "2024-06-15")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if patch.Applied {
		t.Error("no cached copy, nothing to patch")
	}

	if resume.Today.Total.Count != 1 || !resume.Today.Total.Amount.Equal(decimal.RequireFromString("10000")) {
		t.Errorf("today: got %+v", resume.Today.Total)
	}
	if resume.Yesterday.Total.Count != 1 {
		t.Errorf("yesterday: got %+v", resume.Yesterday.Total)
	}
	if resume.Last7.Total.Count != 2 {
		t.Errorf("last7: got %+v", resume.Last7.Total)
	}
	if resumeCache.sets != 1 {
		t.Errorf("expected resume to be cached, sets = %d", resumeCache.sets)
	}

	// The fetch window must cover both the month-to-date and last7 buckets
	monthStart := time.Date(2024, time.June, 1, 0, 0, 0, 0, rollup.Location())
	if store.from.After(monthStart) {
		t.Errorf("fetch window starts %v, must not start after %v", store.from, monthStart)
	}
}

func TestResumeReconcilesStaleCachedCopy(t *testing.T) {
	storeID := uuid.New()

	// Local ground truth for today: 5 paid cash sales of 10000 each.
	var sales []domain.Sale
	for i := 0; i < 5; i++ {
		sales = append(sales, paidSale(storeID, enum.PaymentMethodCash, "10000", santiagoDay(15, 9+i)))
	}
	store := &mockSummarySales{sales: sales}

	// Cached backend copy missed one sale: today 4/40000, already baked into
	// month and last7.
	staleToday := rollup.Breakdown{
		Total: rollup.Totals{Count: 4, Amount: decimal.RequireFromString("40000")},
		Cash:  rollup.Totals{Count: 4, Amount: decimal.RequireFromString("40000")},
	}
	stale := rollup.Summary{
		Today:     staleToday,
		Yesterday: rollup.Breakdown{Total: rollup.Totals{Count: 2, Amount: decimal.RequireFromString("30000")}, Cash: rollup.Totals{Count: 2, Amount: decimal.RequireFromString("30000")}},
		Last7:     rollup.Breakdown{Total: rollup.Totals{Count: 6, Amount: decimal.RequireFromString("70000")}, Cash: rollup.Totals{Count: 6, Amount: decimal.RequireFromString("70000")}},
		Month:     rollup.Breakdown{Total: rollup.Totals{Count: 10, Amount: decimal.RequireFromString("120000")}, Cash: rollup.Totals{Count: 10, Amount: decimal.RequireFromString("120000")}},
	}
	resumeCache := newMemoryResumeCache()
	resumeCache.resumes[storeID.String()+"2024-06-15"] = stale

	svc := service.NewSummaryService(store, nil, resumeCache)

	resume, patch, err := svc.Resume(context.Background(), storeID, "2024-06-15")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !patch.Applied {
		t.Fatal("expected stale copy to be patched")
	}

	// today replaced with local ground truth
	if resume.Today.Total.Count != 5 || !resume.Today.Total.Amount.Equal(decimal.RequireFromString("50000")) {
		t.Errorf("today: got %+v", resume.Today.Total)
	}
	// month and last7 pick up +1 / +10000
	if resume.Month.Total.Count != 11 || !resume.Month.Total.Amount.Equal(decimal.RequireFromString("130000")) {
		t.Errorf("month: got %+v", resume.Month.Total)
	}
	if resume.Last7.Total.Count != 7 || !resume.Last7.Total.Amount.Equal(decimal.RequireFromString("80000")) {
		t.Errorf("last7: got %+v", resume.Last7.Total)
	}
	// yesterday stays as the backend reported it
	if resume.Yesterday.Total.Count != 2 {
		t.Errorf("yesterday: got %+v", resume.Yesterday.Total)
	}

	// A second request now sees the patched cached copy and finds no diff.
	_, secondPatch, err := svc.Resume(context.Background(), storeID, "2024-06-15")
	if err != nil {
		t.Fatalf("second resume: %v", err)
	}
	if secondPatch.Applied {
		t.Error("second reconciliation should find nothing to patch")
	}
}

func TestResumeMergesWebOrders(t *testing.T) {
	storeID := uuid.New()
	store := &mockSummarySales{sales: []domain.Sale{
		paidSale(storeID, enum.PaymentMethodCash, "10000", santiagoDay(15, 10)),
	}}
	web := &mockWebOrders{orders: []weborders.Order{
		{
			ID:            "WEB-1",
			Status:        "paid",
			Total:         "25000",
			PaymentMethod: "webpay",
			CreatedAt:     santiagoDay(15, 11).Format(time.RFC3339),
		},
		{
			// Unparseable timestamp: skipped, the rest still counts
			ID:        "WEB-2",
			Status:    "paid",
			Total:     "5000",
			CreatedAt: "yesterday-ish",
		},
	}}

	svc := service.NewSummaryService(store, web, newMemoryResumeCache())

	resume, _, err := svc.Resume(context.Background(), storeID, "2024-06-15")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}

	if resume.Today.Total.Count != 2 {
		t.Errorf("today count: got %d, want 2 (local + web)", resume.Today.Total.Count)
	}
	if !resume.Today.Total.Amount.Equal(decimal.RequireFromString("35000")) {
		t.Errorf("today amount: got %s, want 35000", resume.Today.Total.Amount)
	}
	if resume.Today.Cash.Count != 1 || resume.Today.Card.Count != 1 {
		t.Errorf("splits: efectivo %+v, debitoCredito %+v", resume.Today.Cash, resume.Today.Card)
	}
}

func TestResumeDegradesWhenWebOrdersFail(t *testing.T) {
	storeID := uuid.New()
	store := &mockSummarySales{sales: []domain.Sale{
		paidSale(storeID, enum.PaymentMethodCash, "10000", santiagoDay(15, 10)),
	}}
	web := &mockWebOrders{err: errors.New("connection refused")}

	svc := service.NewSummaryService(store, web, newMemoryResumeCache())

	resume, _, err := svc.Resume(context.Background(), storeID, "2024-06-15")
	if err != nil {
		t.Fatalf("resume should not fail on web order errors: %v", err)
	}
	if resume.Today.Total.Count != 1 {
		t.Errorf("today count: got %d, want 1 (local only)", resume.Today.Total.Count)
	}
}

func TestResumeStoreErrorPropagates(t *testing.T) {
	store := &mockSummarySales{err: errors.New("db down")}
	svc := service.NewSummaryService(store, nil, newMemoryResumeCache())

	_, _, err := svc.Resume(context.Background(), uuid.New(), "2024-06-15")
	if err == nil {
		t.Fatal("expected error when the sale list cannot be fetched")
	}
}
