// Package rollup computes the multi-period sales resume shown on the
// back-office dashboard: today / yesterday / trailing-7-days / month-to-date
// totals split into cash (efectivo) and debit+credit (debitoCredito).
//
// Everything here is pure computation over immutable inputs. Timestamps are
// normalized to the store civil timezone (America/Santiago) before any
// comparison, so servers running in other timezones agree on what "today"
// means for the stores.
package rollup

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/enum"
)

// Totals is a count/amount pair for one payment split of one bucket.
type Totals struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Add returns the component-wise sum of two Totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{Count: t.Count + o.Count, Amount: t.Amount.Add(o.Amount)}
}

// Sub returns the component-wise difference of two Totals.
func (t Totals) Sub(o Totals) Totals {
	return Totals{Count: t.Count - o.Count, Amount: t.Amount.Sub(o.Amount)}
}

// IsZero reports whether both count and amount are zero.
func (t Totals) IsZero() bool {
	return t.Count == 0 && t.Amount.IsZero()
}

// clampZero floors negative components at zero. The second return reports
// whether anything had to be clamped.
func (t Totals) clampZero() (Totals, bool) {
	clamped := false
	if t.Count < 0 {
		t.Count = 0
		clamped = true
	}
	if t.Amount.Sign() < 0 {
		t.Amount = decimal.Zero
		clamped = true
	}
	return t, clamped
}

// Breakdown holds the three payment splits of one bucket. Total is always
// Cash + Card; the engine maintains that by incrementing exactly one of the
// two method splits alongside Total for every included sale.
type Breakdown struct {
	Total Totals `json:"total"`
	Cash  Totals `json:"efectivo"`
	Card  Totals `json:"debitoCredito"`
}

// Add returns the component-wise sum of two Breakdowns.
func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{
		Total: b.Total.Add(o.Total),
		Cash:  b.Cash.Add(o.Cash),
		Card:  b.Card.Add(o.Card),
	}
}

// Sub returns the component-wise difference of two Breakdowns.
func (b Breakdown) Sub(o Breakdown) Breakdown {
	return Breakdown{
		Total: b.Total.Sub(o.Total),
		Cash:  b.Cash.Sub(o.Cash),
		Card:  b.Card.Sub(o.Card),
	}
}

func (b *Breakdown) bump(amount decimal.Decimal, cash bool) {
	b.Total.Count++
	b.Total.Amount = b.Total.Amount.Add(amount)
	if cash {
		b.Cash.Count++
		b.Cash.Amount = b.Cash.Amount.Add(amount)
	} else {
		b.Card.Count++
		b.Card.Amount = b.Card.Amount.Add(amount)
	}
}

// Summary is the four-bucket sales resume.
type Summary struct {
	Today     Breakdown `json:"today"`
	Yesterday Breakdown `json:"yesterday"`
	Last7     Breakdown `json:"last7"`
	Month     Breakdown `json:"month"`
}

// Add returns the component-wise sum of two Summaries. Adding the summaries
// of two disjoint sale lists equals the summary of their concatenation, which
// is how local and mirrored web sales are merged.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Today:     s.Today.Add(o.Today),
		Yesterday: s.Yesterday.Add(o.Yesterday),
		Last7:     s.Last7.Add(o.Last7),
		Month:     s.Month.Add(o.Month),
	}
}

// Compute folds a sale list into a Summary relative to the reference
// instant. A sale typically lands in several buckets at once (a sale made
// today counts in today, last7 and month). The fold is deterministic and
// never fails: an empty input yields an all-zero summary with the full
// bucket/split structure intact.
func Compute(sales []domain.Sale, ref time.Time) Summary {
	today, yesterday, last7, month := bucketWindows(ref)

	var sum Summary
	for _, s := range sales {
		net, ok := contribution(s)
		if !ok {
			continue
		}
		// Unknown payment labels count as non-cash; the split is strictly
		// cash vs everything-else.
		cash := s.PaymentMethod == enum.PaymentMethodCash

		if today.contains(s.CreatedAt) {
			sum.Today.bump(net, cash)
		}
		if yesterday.contains(s.CreatedAt) {
			sum.Yesterday.bump(net, cash)
		}
		if last7.contains(s.CreatedAt) {
			sum.Last7.bump(net, cash)
		}
		if month.contains(s.CreatedAt) {
			sum.Month.bump(net, cash)
		}
	}
	return sum
}
