package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pasos-retail/api/internal/cache"
	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/rollup"
	"github.com/pasos-retail/api/internal/weborders"
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// resumeTTL is how long a reconciled resume stays cached. Returns recorded
// within this window are what makes the cached copy stale, which is exactly
// what the reconciliation patch corrects on the next request.
const resumeTTL = 15 * time.Minute

// SummarySales defines the DB methods needed by the summary service.
// Satisfied by *database.Store.
type SummarySales interface {
	ListSales(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]domain.Sale, error)
}

// WebOrderSource supplies e-commerce orders to mirror into the resume.
// Satisfied by *weborders.Client.
type WebOrderSource interface {
	OrdersBetween(ctx context.Context, from, to time.Time) ([]weborders.Order, error)
}

// SummaryService produces the reconciled dashboard resume for a store scope
// and civil date.
type SummaryService struct {
	store SummarySales
	web   WebOrderSource // nil when no e-commerce integration is configured
	cache cache.ResumeCache
}

func NewSummaryService(store SummarySales, web WebOrderSource, resumeCache cache.ResumeCache) *SummaryService {
	return &SummaryService{store: store, web: web, cache: resumeCache}
}

// Resume recomputes the resume from the raw sale list on every call, merges
// mirrored web orders, and reconciles the result against the cached
// backend copy whose today bucket may be stale. The civil date selects the
// reference day; storeID may be uuid.Nil for an all-stores resume.
func (s *SummaryService) Resume(ctx context.Context, storeID uuid.UUID, day string) (rollup.Summary, rollup.Patch, error) {
	ref, err := time.ParseInLocation("2006-01-02", day, rollup.Location())
	if err != nil {
		return rollup.Summary{}, rollup.Patch{}, ErrInvalidDate
	}

	// Widest window any bucket can need: start of the civil month or six
	// days back, whichever is earlier, through the end of the reference day.
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, rollup.Location())
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, rollup.Location())
	if last7Start := dayStart.AddDate(0, 0, -6); last7Start.Before(from) {
		from = last7Start
	}
	to := dayStart.AddDate(0, 0, 1)

	var (
		wg         sync.WaitGroup
		localSales []domain.Sale
		localErr   error
		webOrders  []weborders.Order
		webErr     error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		localSales, localErr = s.store.ListSales(ctx, storeID, from, to)
	}()

	if s.web != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			webOrders, webErr = s.web.OrdersBetween(ctx, from, to)
		}()
	}
	wg.Wait()

	if localErr != nil {
		return rollup.Summary{}, rollup.Patch{}, localErr
	}
	if webErr != nil {
		// A broken e-commerce integration degrades to a local-only resume
		log.Printf("ERROR: fetch web orders: %v", webErr)
		webOrders = nil
	}

	webSales, skipped := weborders.ToSales(webOrders, storeID)
	for _, skipErr := range skipped {
		log.Printf("ERROR: skipping web order: %v", skipErr)
	}

	local := rollup.Compute(localSales, ref).Add(rollup.Compute(webSales, ref))

	backend, found, err := s.cache.Get(ctx, storeID, day)
	if err != nil {
		log.Printf("ERROR: read cached resume: %v", err)
		found = false
	}

	resume := local
	var patch rollup.Patch
	if found {
		resume, patch = rollup.Reconcile(*backend, local)
		if patch.Clamped {
			log.Printf("ERROR: resume reconciliation clamped negative bucket for store %s on %s (diff %+v)",
				storeID, day, patch.Diff)
		}
	}

	if err := s.cache.Set(ctx, storeID, day, &resume, resumeTTL); err != nil {
		log.Printf("ERROR: write cached resume: %v", err)
	}

	return resume, patch, nil
}
