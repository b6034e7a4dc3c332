package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/database"
	"github.com/pasos-retail/api/internal/rollup"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Store.
type ReportsStore interface {
	GetDailySales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]database.DailySalesRow, error)
	GetPaymentSummary(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]database.PaymentSummaryRow, error)
}

// ReportsHandler handles back-office report endpoints.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers store-scoped report endpoints.
// Expected to be mounted inside a store-scoped subrouter: /stores/{sid}/reports
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/daily-sales", h.DailySales)
	r.Get("/payment-summary", h.PaymentSummary)
}

// --- Response types ---

type dailySalesRow struct {
	Date         string `json:"date"`
	TicketCount  int64  `json:"ticket_count"`
	GrossRevenue string `json:"gross_revenue"`
}

type paymentSummaryRow struct {
	PaymentMethod string `json:"payment_method"`
	TicketCount   int64  `json:"ticket_count"`
	TotalAmount   string `json:"total_amount"`
}

// --- Handlers ---

// DailySales returns per-day ticket counts and gross revenue for a date range.
func (h *ReportsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	storeID, from, to, ok := parseReportScope(w, r)
	if !ok {
		return
	}

	rows, err := h.store.GetDailySales(r.Context(), storeID, from, to)
	if err != nil {
		log.Printf("ERROR: daily sales report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]dailySalesRow, len(rows))
	for i, row := range rows {
		resp[i] = dailySalesRow{
			Date:         row.SaleDate.Format("2006-01-02"),
			TicketCount:  row.TicketCount,
			GrossRevenue: reportAmount(row.GrossRevenue),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PaymentSummary returns per-method ticket counts and revenue for a date range.
func (h *ReportsHandler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	storeID, from, to, ok := parseReportScope(w, r)
	if !ok {
		return
	}

	rows, err := h.store.GetPaymentSummary(r.Context(), storeID, from, to)
	if err != nil {
		log.Printf("ERROR: payment summary report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]paymentSummaryRow, len(rows))
	for i, row := range rows {
		resp[i] = paymentSummaryRow{
			PaymentMethod: row.PaymentMethod,
			TicketCount:   row.TicketCount,
			TotalAmount:   reportAmount(row.TotalAmount),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// parseReportScope extracts the store ID and Santiago civil date range from
// the request. Defaults to the last 30 days ending today.
func parseReportScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, time.Time, time.Time, bool) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	loc := rollup.Location()
	now := time.Now().In(loc)
	toDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	fromDay := toDay.AddDate(0, 0, -29)

	if v := r.URL.Query().Get("from"); v != "" {
		fromDay, err = time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid from date, expected YYYY-MM-DD"})
			return uuid.Nil, time.Time{}, time.Time{}, false
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		toDay, err = time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid to date, expected YYYY-MM-DD"})
			return uuid.Nil, time.Time{}, time.Time{}, false
		}
	}
	if toDay.Before(fromDay) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to date must not precede from date"})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	// Ranges are inclusive of the to day: [from midnight, to+1 midnight)
	return storeID, fromDay, toDay.AddDate(0, 0, 1), true
}

func reportAmount(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return d.StringFixed(2)
}
