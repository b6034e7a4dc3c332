package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasos-retail/api/internal/domain"
	"github.com/pasos-retail/api/internal/enum"
)

// Errors returned by the sale service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidUnitPrice     = errors.New("invalid unit_price")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidItemID        = errors.New("invalid item_id")
	ErrEmptyCancellations   = errors.New("cancellations are required")
	ErrReturnExists         = errors.New("sale already has a return")
	ErrReturnNotAllowed     = errors.New("only paid sales can be returned")
	ErrUnknownItem          = errors.New("item does not belong to sale")
	ErrReturnQuantity       = errors.New("returned quantity exceeds quantity sold")
)

// SaleStore defines the DB methods needed by the sale service.
// Satisfied by *database.Store.
type SaleStore interface {
	CreateSale(ctx context.Context, sale domain.Sale) (domain.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (domain.Sale, error)
	AttachReturn(ctx context.Context, saleID uuid.UUID, ret domain.Return, newStatus string) error
}

// CreateSaleRequest is the validated input for recording a sale.
type CreateSaleRequest struct {
	StoreID       uuid.UUID
	PaymentMethod string
	Status        string // empty means PAID; PENDING is allowed for layaway
	Items         []CreateSaleItemRequest
}

// CreateSaleItemRequest is a single line of the sale.
type CreateSaleItemRequest struct {
	SKU         string
	Description string
	Quantity    int32
	UnitPrice   string
}

// ReturnRequest is the validated input for attaching a return to a sale.
type ReturnRequest struct {
	Reason        string
	Note          string
	Cancellations []ReturnItemRequest
}

// ReturnItemRequest cancels part or all of one sale line.
type ReturnItemRequest struct {
	ItemID   string
	Quantity int32
}

// SaleService owns sale creation and the cancellation workflow.
type SaleService struct {
	store SaleStore
	now   func() time.Time
}

func NewSaleService(store SaleStore) *SaleService {
	return &SaleService{store: store, now: time.Now}
}

// CreateSale validates the request, computes the transaction total and
// persists the sale with its items.
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (domain.Sale, error) {
	if len(req.Items) == 0 {
		return domain.Sale{}, ErrEmptyItems
	}

	switch req.PaymentMethod {
	case enum.PaymentMethodCash, enum.PaymentMethodDebit, enum.PaymentMethodCredit:
	default:
		return domain.Sale{}, ErrInvalidPaymentMethod
	}

	status := req.Status
	switch status {
	case "":
		status = enum.SaleStatusPaid
	case enum.SaleStatusPaid, enum.SaleStatusPending:
	default:
		return domain.Sale{}, ErrInvalidStatus
	}

	sale := domain.Sale{
		ID:            uuid.New(),
		StoreID:       req.StoreID,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		CreatedAt:     s.now(),
		Total:         decimal.Zero,
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Sale{}, ErrInvalidQuantity
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || price.Sign() < 0 {
			return domain.Sale{}, ErrInvalidUnitPrice
		}
		sale.Items = append(sale.Items, domain.SaleItem{
			ID:          uuid.New(),
			SKU:         item.SKU,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   price,
		})
		sale.Total = sale.Total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return s.store.CreateSale(ctx, sale)
}

// RegisterReturn attaches a return to a paid sale. Each cancellation must
// reference a line of the sale and may not hand back more units than were
// sold. A return covering every unit of every line flips the sale to
// CANCELLED; a partial return leaves it PAID.
func (s *SaleService) RegisterReturn(ctx context.Context, saleID uuid.UUID, req ReturnRequest) (domain.Sale, error) {
	if len(req.Cancellations) == 0 {
		return domain.Sale{}, ErrEmptyCancellations
	}

	sale, err := s.store.GetSale(ctx, saleID)
	if err != nil {
		return domain.Sale{}, err
	}

	if sale.Return != nil {
		return domain.Sale{}, ErrReturnExists
	}
	if sale.Status != enum.SaleStatusPaid {
		return domain.Sale{}, ErrReturnNotAllowed
	}

	soldQty := make(map[uuid.UUID]int32, len(sale.Items))
	for _, item := range sale.Items {
		soldQty[item.ID] = item.Quantity
	}

	ret := domain.Return{
		Reason:    req.Reason,
		Note:      req.Note,
		CreatedAt: s.now(),
	}
	if ret.Reason == "" {
		ret.Reason = enum.ReturnReasonOther
	}

	returnedQty := make(map[uuid.UUID]int32, len(req.Cancellations))
	for _, c := range req.Cancellations {
		itemID, err := uuid.Parse(c.ItemID)
		if err != nil {
			return domain.Sale{}, ErrInvalidItemID
		}
		sold, ok := soldQty[itemID]
		if !ok {
			return domain.Sale{}, ErrUnknownItem
		}
		if c.Quantity <= 0 {
			return domain.Sale{}, ErrInvalidQuantity
		}
		if returnedQty[itemID]+c.Quantity > sold {
			return domain.Sale{}, ErrReturnQuantity
		}
		returnedQty[itemID] += c.Quantity
		ret.Cancellations = append(ret.Cancellations, domain.ItemCancellation{
			ItemID:   itemID,
			Quantity: c.Quantity,
		})
	}

	newStatus := enum.SaleStatusPaid
	if isFullReturn(sale.Items, returnedQty) {
		newStatus = enum.SaleStatusCancelled
	}

	if err := s.store.AttachReturn(ctx, saleID, ret, newStatus); err != nil {
		return domain.Sale{}, err
	}

	return s.store.GetSale(ctx, saleID)
}

func isFullReturn(items []domain.SaleItem, returnedQty map[uuid.UUID]int32) bool {
	for _, item := range items {
		if returnedQty[item.ID] != item.Quantity {
			return false
		}
	}
	return true
}
