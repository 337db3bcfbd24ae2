package item

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("item not found")

// Category distinguishes physical stock from billable services.
type Category string

const (
	CategoryProduct Category = "product"
	CategoryService Category = "service"
)

// Item is a catalog entry. Items are never hard-deleted: "delete" flips
// Active off so historical sales keep a valid reference, and every selection
// read filters on Active.
type Item struct {
	ID             string
	Name           string
	Category       Category
	ReferencePrice *float64 // optional price hint per unit
	Unit           string   // free-form label: "pc", "kg", "ltr", ...
	Active         bool
	CreatedAt      time.Time
	CreatedBy      string
}
