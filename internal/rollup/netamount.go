package rollup

import (
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/enum"
)

// NetAmount returns the monetary value a sale still represents after its
// cancellations: the sale total minus returnedQty × unitPrice summed over
// every cancelled line. A sale without a Return nets its full total.
func NetAmount(s domain.Sale) decimal.Decimal {
	if s.Return == nil || len(s.Return.Cancellations) == 0 {
		return s.Total
	}

	prices := make(map[string]decimal.Decimal, len(s.Items))
	for _, item := range s.Items {
		prices[item.ID.String()] = item.UnitPrice
	}

	cancelled := decimal.Zero
	for _, c := range s.Return.Cancellations {
		price, ok := prices[c.ItemID.String()]
		if !ok {
			// Cancellation referencing an unknown line has no monetary impact
			continue
		}
		cancelled = cancelled.Add(price.Mul(decimal.NewFromInt(int64(c.Quantity))))
	}

	return s.Total.Sub(cancelled)
}

// contribution decides whether a sale counts toward the summary at all and,
// if so, with which net amount.
//
// PENDING sales have not settled and never count. A CANCELLED sale whose net
// is zero or negative is a full cancellation and is dropped outright so it
// does not pollute ticket counts. A PAID sale always counts, even at a zero
// net, because its count still matters for ticket analytics.
func contribution(s domain.Sale) (decimal.Decimal, bool) {
	switch s.Status {
	case enum.SaleStatusPaid:
		return NetAmount(s), true
	case enum.SaleStatusCancelled:
		net := NetAmount(s)
		if net.Sign() <= 0 {
			return decimal.Zero, false
		}
		return net, true
	default:
		return decimal.Zero, false
	}
}
