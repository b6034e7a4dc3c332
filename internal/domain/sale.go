package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a point-of-sale transaction. It is immutable once created; the only
// later mutation is attaching a Return through the cancellation workflow.
type Sale struct {
	ID            uuid.UUID       `json:"id"`
	StoreID       uuid.UUID       `json:"store_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []SaleItem      `json:"items"`
	Return        *Return         `json:"return,omitempty"`
}

// SaleItem is a single line of a sale.
type SaleItem struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Return records a partial or total cancellation of a sale. A sale carries at
// most one Return.
type Return struct {
	Reason        string             `json:"reason"`
	Note          string             `json:"note"`
	CreatedAt     time.Time          `json:"created_at"`
	Cancellations []ItemCancellation `json:"cancellations"`
}

// ItemCancellation references a sale item and the quantity handed back.
// Quantity never exceeds the quantity originally sold on that line.
type ItemCancellation struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int32     `json:"quantity"`
}

// Store is a physical retail location.
type Store struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a back-office or cashier account.
type User struct {
	ID             uuid.UUID `json:"id"`
	StoreID        uuid.UUID `json:"store_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
