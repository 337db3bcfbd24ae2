package expense

import (
	"errors"
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
)

var ErrNotFound = errors.New("expense not found")

// Category is the closed set of expense buckets used for reporting.
type Category string

const (
	CategoryPurchase    Category = "purchase"
	CategoryDailyWages  Category = "daily_wages"
	CategoryBills       Category = "bills"
	CategoryRent        Category = "rent"
	CategoryElectricity Category = "electricity"
	CategoryTransport   Category = "transport"
	CategoryOther       Category = "other"
)

// Categories lists every valid expense category.
func Categories() []Category {
	return []Category{
		CategoryPurchase,
		CategoryDailyWages,
		CategoryBills,
		CategoryRent,
		CategoryElectricity,
		CategoryTransport,
		CategoryOther,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryPurchase, CategoryDailyWages, CategoryBills, CategoryRent,
		CategoryElectricity, CategoryTransport, CategoryOther:
		return true
	}

	return false
}

// Expense is a single spend record. ImageURI optionally points at a captured
// receipt; the file itself is outside this layer.
type Expense struct {
	ID          string
	UserID      string
	Category    Category
	Description string
	Amount      float64
	ImageURI    string
	CreatedAt   time.Time
	SyncStatus  syncstatus.Status
}
