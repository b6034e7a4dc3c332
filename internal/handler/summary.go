package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pasos-retail/api/internal/rollup"
	"github.com/pasos-retail/api/internal/service"
)

// SummaryProvider defines the service methods needed by summary handlers.
// Satisfied by *service.SummaryService.
type SummaryProvider interface {
	Resume(ctx context.Context, storeID uuid.UUID, day string) (rollup.Summary, rollup.Patch, error)
}

// SummaryHandler handles the dashboard resume endpoints.
type SummaryHandler struct {
	provider SummaryProvider
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(provider SummaryProvider) *SummaryHandler {
	return &SummaryHandler{provider: provider}
}

// --- Response types ---

type totalsResponse struct {
	Count  int64  `json:"count"`
	Amount string `json:"amount"`
}

type breakdownResponse struct {
	Total totalsResponse `json:"total"`
	Cash  totalsResponse `json:"efectivo"`
	Card  totalsResponse `json:"debitoCredito"`
}

type resumeResponse struct {
	Date      string            `json:"date"`
	Today     breakdownResponse `json:"today"`
	Yesterday breakdownResponse `json:"yesterday"`
	Last7     breakdownResponse `json:"last7"`
	Month     breakdownResponse `json:"month"`
	Patched   bool              `json:"patched"`
	Clamped   bool              `json:"clamped,omitempty"`
}

// --- Handlers ---

// StoreResume returns the reconciled resume for the store in the URL.
func (h *SummaryHandler) StoreResume(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	h.resume(w, r, storeID)
}

// AllStoresResume returns the reconciled resume across every store.
func (h *SummaryHandler) AllStoresResume(w http.ResponseWriter, r *http.Request) {
	h.resume(w, r, uuid.Nil)
}

func (h *SummaryHandler) resume(w http.ResponseWriter, r *http.Request, storeID uuid.UUID) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = time.Now().In(rollup.Location()).Format("2006-01-02")
	}

	resume, patch, err := h.provider.Resume(r.Context(), storeID, day)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: resume for store %s: %v", storeID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resumeResponse{
		Date:      day,
		Today:     toBreakdownResponse(resume.Today),
		Yesterday: toBreakdownResponse(resume.Yesterday),
		Last7:     toBreakdownResponse(resume.Last7),
		Month:     toBreakdownResponse(resume.Month),
		Patched:   patch.Applied,
		Clamped:   patch.Clamped,
	})
}

func toBreakdownResponse(b rollup.Breakdown) breakdownResponse {
	return breakdownResponse{
		Total: totalsResponse{Count: b.Total.Count, Amount: decimalString(b.Total.Amount)},
		Cash:  totalsResponse{Count: b.Cash.Count, Amount: decimalString(b.Cash.Amount)},
		Card:  totalsResponse{Count: b.Card.Count, Amount: decimalString(b.Card.Amount)},
	}
}
