package sale

import (
	"errors"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
)

var ErrNotFound = errors.New("sale not found")

// LineItem is a denormalized snapshot taken at sale time. ItemName is copied
// from the catalog and does not track later renames of the source item.
type LineItem struct {
	ItemID       string  `json:"itemId"`
	ItemName     string  `json:"itemName"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	TotalPrice   float64 `json:"totalPrice"`
}

// Sale is one completed transaction. TotalAmount always equals the sum of
// the line totals; it is recomputed on every create and edit, never set
// directly.
type Sale struct {
	ID            string
	UserID        string
	TotalAmount   float64
	Items         []LineItem
	PaymentMethod string
	CustomerName  string
	CustomerPhone string
	CreatedAt     time.Time
	SyncStatus    syncstatus.Status
}
