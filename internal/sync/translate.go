package sync

import (
	"time"

	"github.com/shopkeeperpro/shopkeeper/internal/expense"
	"github.com/shopkeeperpro/shopkeeper/internal/item"
	"github.com/shopkeeperpro/shopkeeper/internal/remote"
	"github.com/shopkeeperpro/shopkeeper/internal/sale"
	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
	"github.com/shopkeeperpro/shopkeeper/internal/user"
)

// Translation between local rows and remote documents. The storeID is
// denormalized onto every store-scoped document so collection-group queries
// on the remote side can tell stores apart. The local reference_price column
// maps to the historical remote field name pricePerKg.

func (s *Service) docFromItem(it *item.Item) remote.Document {
	doc := remote.Document{
		"storeId":   s.storeID,
		"name":      it.Name,
		"category":  string(it.Category),
		"unit":      it.Unit,
		"isActive":  it.Active,
		"createdAt": it.CreatedAt.UnixMilli(),
		"createdBy": it.CreatedBy,
		"updatedAt": remote.ServerTimestamp(),
	}

	if it.ReferencePrice != nil {
		doc["pricePerKg"] = *it.ReferencePrice
	}

	return doc
}

func (s *Service) docFromSale(sl *sale.Sale) remote.Document {
	items := make([]map[string]any, 0, len(sl.Items))
	for _, li := range sl.Items {
		items = append(items, map[string]any{
			"itemId":       li.ItemID,
			"itemName":     li.ItemName,
			"quantity":     li.Quantity,
			"pricePerUnit": li.PricePerUnit,
			"totalPrice":   li.TotalPrice,
		})
	}

	return remote.Document{
		"storeId":       s.storeID,
		"userId":        sl.UserID,
		"totalAmount":   sl.TotalAmount,
		"items":         items,
		"paymentMethod": sl.PaymentMethod,
		"customerName":  sl.CustomerName,
		"customerPhone": sl.CustomerPhone,
		"createdAt":     sl.CreatedAt.UnixMilli(),
		"updatedAt":     remote.ServerTimestamp(),
	}
}

func (s *Service) docFromExpense(e *expense.Expense) remote.Document {
	return remote.Document{
		"storeId":     s.storeID,
		"userId":      e.UserID,
		"category":    string(e.Category),
		"description": e.Description,
		"amount":      e.Amount,
		"imageUri":    e.ImageURI,
		"createdAt":   e.CreatedAt.UnixMilli(),
		"updatedAt":   remote.ServerTimestamp(),
	}
}

func (s *Service) docFromUser(u *user.User) remote.Document {
	return remote.Document{
		"storeId":     s.storeID,
		"username":    u.Username,
		"displayName": u.FullName,
		"role":        string(u.Role),
		"isActive":    u.Active,
		"createdAt":   u.CreatedAt.UnixMilli(),
		"updatedAt":   remote.ServerTimestamp(),
	}
}

// itemFromDoc hydrates a pulled document. Remote documents written by older
// clients miss optional fields, so every read falls back to a sane default.
func itemFromDoc(id string, doc remote.Document) *item.Item {
	it := &item.Item{
		ID:        id,
		Name:      asString(doc["name"], ""),
		Category:  item.Category(asString(doc["category"], string(item.CategoryProduct))),
		Unit:      asString(doc["unit"], "pc"),
		Active:    asBool(doc["isActive"], true),
		CreatedAt: asTime(doc["createdAt"]),
		CreatedBy: asString(doc["createdBy"], ""),
	}

	if price, ok := doc["pricePerKg"]; ok {
		p := asFloat(price, 0)
		it.ReferencePrice = &p
	}

	return it
}

func userFromDoc(id string, doc remote.Document) *user.User {
	return &user.User{
		ID:        id,
		Username:  asString(doc["username"], ""),
		FullName:  asString(doc["displayName"], ""),
		Role:      user.Role(asString(doc["role"], string(user.RoleUser))),
		Active:    asBool(doc["isActive"], true),
		CreatedAt: asTime(doc["createdAt"]),
	}
}

// saleItemsFromDoc reads a pulled sale's line items, tolerating both the
// structured array and the legacy delimited-text form.
func saleItemsFromDoc(doc remote.Document) []sale.LineItem {
	switch v := doc["items"].(type) {
	case string:
		return sale.ParseItems(v)
	case []any:
		out := make([]sale.LineItem, 0, len(v))

		for _, raw := range v {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}

			out = append(out, sale.LineItem{
				ItemID:       asString(m["itemId"], ""),
				ItemName:     asString(m["itemName"], ""),
				Quantity:     asFloat(m["quantity"], 0),
				PricePerUnit: asFloat(m["pricePerUnit"], 0),
				TotalPrice:   asFloat(m["totalPrice"], 0),
			})
		}

		return out
	}

	return nil
}

// saleFromDoc hydrates a pulled sale. Used by tests to assert the round
// trip; pulled sales are not written back locally.
func saleFromDoc(id string, doc remote.Document) *sale.Sale {
	return &sale.Sale{
		ID:            id,
		UserID:        asString(doc["userId"], ""),
		TotalAmount:   asFloat(doc["totalAmount"], 0),
		Items:         saleItemsFromDoc(doc),
		PaymentMethod: asString(doc["paymentMethod"], "cash"),
		CustomerName:  asString(doc["customerName"], ""),
		CustomerPhone: asString(doc["customerPhone"], ""),
		CreatedAt:     asTime(doc["createdAt"]),
		SyncStatus:    syncstatus.Synced,
	}
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}

	return def
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}

	return def
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}

	return def
}

func asTime(v any) time.Time {
	millis := int64(asFloat(v, 0))
	if millis == 0 {
		return time.Time{}
	}

	return time.UnixMilli(millis)
}
