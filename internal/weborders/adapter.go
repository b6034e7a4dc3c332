package weborders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/enum"
)

// ToSales converts external orders into the local sale shape so they can run
// through the rollup engine alongside point-of-sale transactions.
//
// Orders with an unparseable timestamp or total are skipped, not fatal: a
// reporting request should produce a partial-but-correct resume rather than
// fail outright. The returned error slice carries one entry per skipped
// order for the caller to log.
func ToSales(orders []Order, storeID uuid.UUID) ([]domain.Sale, []error) {
	sales := make([]domain.Sale, 0, len(orders))
	var skipped []error

	for _, o := range orders {
		sale, err := toSale(o, storeID)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("order %s: %w", o.ID, err))
			continue
		}
		sales = append(sales, sale)
	}
	return sales, skipped
}

func toSale(o Order, storeID uuid.UUID) (domain.Sale, error) {
	createdAt, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("invalid timestamp %q: %w", o.CreatedAt, err)
	}

	total, err := decimal.NewFromString(o.Total)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("invalid total %q: %w", o.Total, err)
	}

	sale := domain.Sale{
		ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte("weborder:"+o.ID)),
		StoreID:       storeID,
		Total:         total,
		PaymentMethod: mapPaymentMethod(o.PaymentMethod),
		Status:        mapStatus(o.Status),
		CreatedAt:     createdAt,
	}

	itemIDs := make(map[string]uuid.UUID, len(o.Items))
	for _, item := range o.Items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return domain.Sale{}, fmt.Errorf("item %s: invalid unit price %q: %w", item.ID, item.UnitPrice, err)
		}
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("weborder-item:"+o.ID+":"+item.ID))
		itemIDs[item.ID] = id
		sale.Items = append(sale.Items, domain.SaleItem{
			ID:          id,
			SKU:         item.SKU,
			Description: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   price,
		})
	}

	if len(o.Refunds) > 0 {
		ret := &domain.Return{
			Reason:    enum.ReturnReasonOther,
			CreatedAt: createdAt,
		}
		for _, refund := range o.Refunds {
			id, ok := itemIDs[refund.ItemID]
			if !ok {
				// Refund pointing at an unknown line has no monetary impact
				continue
			}
			ret.Cancellations = append(ret.Cancellations, domain.ItemCancellation{
				ItemID:   id,
				Quantity: refund.Quantity,
			})
		}
		if len(ret.Cancellations) > 0 {
			sale.Return = ret
		}
	}

	return sale, nil
}

// mapStatus folds the order system's lifecycle onto the sale lifecycle.
// Anything not clearly settled or cancelled is treated as pending and stays
// out of the resume.
func mapStatus(status string) string {
	switch strings.ToUpper(status) {
	case "PAID", "COMPLETED", "DELIVERED", "SHIPPED":
		return enum.SaleStatusPaid
	case "CANCELLED", "REFUNDED":
		return enum.SaleStatusCancelled
	default:
		return enum.SaleStatusPending
	}
}

// mapPaymentMethod folds the order system's payment labels onto the local
// set. The resume only splits cash vs everything-else, so any card-like or
// unknown label maps to CREDIT.
func mapPaymentMethod(method string) string {
	switch strings.ToUpper(method) {
	case "CASH", "EFECTIVO":
		return enum.PaymentMethodCash
	case "DEBIT", "DEBITO":
		return enum.PaymentMethodDebit
	default:
		return enum.PaymentMethodCredit
	}
}
